package baseline

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeT records assertion failures without failing the real test
type fakeT struct {
	name     string
	failures []string
	logs     []string
}

func (f *fakeT) Helper()      {}
func (f *fakeT) Name() string { return f.name }

func (f *fakeT) Errorf(format string, args ...any) {
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func (f *fakeT) Logf(format string, args ...any) {
	f.logs = append(f.logs, fmt.Sprintf(format, args...))
}

func TestAssertMQLMatch(t *testing.T) {
	ft := &fakeT{name: "TestMatch"}

	ok := AssertMQL(ft, `db.customers.find({})`, `db.customers.find({})`)
	assert.True(t, ok)
	assert.Empty(t, ft.failures)
}

func TestAssertMQLMismatchFailsWithDiff(t *testing.T) {
	ft := &fakeT{name: "TestMismatch"}

	ok := AssertMQL(ft,
		`db.customers.find({"city":"Berlin"})`,
		`db.customers.find({"city":"Paris"})`)
	assert.False(t, ok)
	require.Len(t, ft.failures, 1)
	assert.Contains(t, ft.failures[0], "-db.customers.find({\"city\":\"Paris\"})")
	assert.Contains(t, ft.failures[0], "+db.customers.find({\"city\":\"Berlin\"})")
	assert.Contains(t, ft.failures[0], "TestMismatch")
}

func TestAssertMQLQueuesRewriteWhenResetEnabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(RewriteDirEnv, dir)
	t.Setenv(ResetEnv, "1")

	ft := &fakeT{name: "TestQueued"}
	ok := AssertMQL(ft, `db.orders.aggregate([])`, ``)
	assert.False(t, ok, "mismatch still fails even when a rewrite is queued")

	entries, err := ReadQueue(QueuePath())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "TestQueued", entries[0].Test)
	assert.Equal(t, `db.orders.aggregate([])`, entries[0].MQL)
	assert.True(t, strings.HasSuffix(entries[0].File, "assert_test.go"), "entry should point at the call site, got %s", entries[0].File)
	assert.Greater(t, entries[0].Line, 0)
}

func TestResetEnabled(t *testing.T) {
	t.Setenv(ResetEnv, "")
	assert.False(t, ResetEnabled())

	t.Setenv(ResetEnv, "1")
	assert.True(t, ResetEnabled())
}

func TestDiffShowsLineChanges(t *testing.T) {
	expected := "db.orders.aggregate([\n    {\"$skip\":1}\n])"
	actual := "db.orders.aggregate([\n    {\"$skip\":2}\n])"

	diff := Diff(expected, actual)
	assert.Contains(t, diff, `-    {"$skip":1}`)
	assert.Contains(t, diff, `+    {"$skip":2}`)
}

func TestQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, queueFileName)

	entries := []Entry{
		{File: "a_test.go", Line: 10, Test: "TestA", MQL: "db.a.find({})"},
		{File: "b_test.go", Line: 20, Test: "TestB", MQL: "db.b.aggregate([\n    {\"$limit\":1}\n])"},
	}
	for _, e := range entries {
		require.NoError(t, enqueueTo(path, e))
	}

	got, err := ReadQueue(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	require.NoError(t, ClearQueue(path))
	got, err = ReadQueue(path)
	require.NoError(t, err)
	assert.Empty(t, got)

	// Clearing an already-missing queue is fine
	require.NoError(t, ClearQueue(path))
}
