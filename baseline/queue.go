package baseline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RewriteDirEnv overrides where the rewrite queue file is written.
// It defaults to the system temp directory.
const RewriteDirEnv = "MQL_REWRITE_DIR"

// queueFileName is the JSON-lines file pending rewrites accumulate in
const queueFileName = "mqlconform_rewrites.jsonl"

// Entry is one pending baseline rewrite: the source location of an
// AssertMQL call whose expected literal should become MQL.
type Entry struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Test string `json:"test"`
	MQL  string `json:"mql"`
}

// QueuePath returns the path of the rewrite queue file
func QueuePath() string {
	dir := os.Getenv(RewriteDirEnv)
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, queueFileName)
}

// Enqueue appends an entry to the rewrite queue file
func Enqueue(entry Entry) error {
	return enqueueTo(QueuePath(), entry)
}

func enqueueTo(path string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal rewrite entry: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open rewrite queue: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append rewrite entry: %w", err)
	}
	return nil
}

// ReadQueue loads all pending rewrite entries from a queue file.
// A missing file is an empty queue.
func ReadQueue(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open rewrite queue: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("malformed rewrite entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rewrite queue: %w", err)
	}
	return entries, nil
}

// ClearQueue removes the rewrite queue file
func ClearQueue(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove rewrite queue: %w", err)
	}
	return nil
}
