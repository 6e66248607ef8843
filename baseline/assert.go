// Package baseline compares emitted MQL against expected baseline strings
// and maintains those baselines in test source files.
package baseline

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// ResetEnv enables baseline rewriting when set to a non-empty value.
// Mismatching assertions then queue a rewrite of their expected literal
// instead of only failing.
const ResetEnv = "MQL_RESET_BASELINES"

// TestingT is the subset of *testing.T the assertions need
type TestingT interface {
	Helper()
	Name() string
	Errorf(format string, args ...any)
	Logf(format string, args ...any)
}

// AssertMQL compares actual against the expected baseline line for line.
// On mismatch it fails with a unified diff; with ResetEnv set it also
// queues a rewrite of the call site's expected literal.
func AssertMQL(t TestingT, actual, expected string) bool {
	t.Helper()
	return assertMQL(t, 2, actual, expected)
}

// AssertMQLSkip is AssertMQL for wrapping helpers: skip is the number of
// stack frames between the baseline literal's call site and this call.
func AssertMQLSkip(t TestingT, skip int, actual, expected string) bool {
	t.Helper()
	return assertMQL(t, skip+1, actual, expected)
}

func assertMQL(t TestingT, skip int, actual, expected string) bool {
	t.Helper()

	if actual == expected {
		return true
	}

	diff := Diff(expected, actual)

	if ResetEnabled() {
		file, line, ok := callerSite(skip + 1)
		if !ok {
			t.Errorf("MQL baseline mismatch and caller site unavailable:\n%s", diff)
			return false
		}
		if err := Enqueue(Entry{File: file, Line: line, Test: t.Name(), MQL: actual}); err != nil {
			t.Errorf("MQL baseline mismatch; failed to queue rewrite: %v\n%s", err, diff)
			return false
		}
		t.Logf("queued baseline rewrite for %s at %s:%d", t.Name(), file, line)
		t.Errorf("MQL baseline mismatch (rewrite queued):\n%s", diff)
		return false
	}

	t.Errorf("MQL baseline mismatch for %s:\n%s\nactual MQL:\n%s", t.Name(), diff, indent(actual))
	return false
}

// ResetEnabled reports whether baseline rewriting is requested
func ResetEnabled() bool {
	return os.Getenv(ResetEnv) != ""
}

// Diff returns a unified diff between an expected and an actual baseline
func Diff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("(diff unavailable: %v)", err)
	}
	return diff
}

func callerSite(skip int) (string, int, bool) {
	_, file, line, ok := runtime.Caller(skip)
	return file, line, ok
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}
