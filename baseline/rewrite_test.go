package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readInput(t *testing.T) []byte {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("testdata", "queries_input.go"))
	require.NoError(t, err)
	return src
}

func countEntry(line int) Entry {
	return Entry{
		File: "queries_input.go",
		Line: line,
		Test: "TestOrderCount",
		MQL: `db.orders.aggregate([
    {"$count":"orderCount"}
])`,
	}
}

func TestApplySourceSplicesBaseline(t *testing.T) {
	src := readInput(t)

	out, n, err := applySource(src, []Entry{countEntry(12)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "applied", out)
}

func TestApplySourceIsIdempotent(t *testing.T) {
	src := readInput(t)

	first, n, err := applySource(src, []Entry{countEntry(12)})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	second, n, err := applySource(first, []Entry{countEntry(12)})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, string(first), string(second))
}

func TestApplySourceLeavesOtherLiteralsAlone(t *testing.T) {
	src := readInput(t)

	out, _, err := applySource(src, []Entry{countEntry(12)})
	require.NoError(t, err)
	assert.Contains(t, string(out), "`db.customers.find({\"city\":\"Paris\"})`")
}

func TestApplySourceNoMatchingCall(t *testing.T) {
	src := readInput(t)

	out, n, err := applySource(src, []Entry{countEntry(3)})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, string(src), string(out))
}

func TestApplySourceMalformed(t *testing.T) {
	_, _, err := applySource([]byte("package {"), []Entry{countEntry(1)})
	assert.Error(t, err)
}

func TestResetSourceBlanksAllBaselines(t *testing.T) {
	src := readInput(t)

	out, n, err := resetSource(src)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "already-empty baselines are not counted")

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "reset", out)
}

func TestApplyWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queries_test.go")
	require.NoError(t, os.WriteFile(path, readInput(t), 0o644))

	entry := countEntry(12)
	entry.File = path

	n, err := Apply([]Entry{entry})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(rewritten), `{"$count":"orderCount"}`)
}

func TestQuoteBaseline(t *testing.T) {
	assert.Equal(t, "`abc`", quoteBaseline("abc"))
	assert.Equal(t, "\"a`b\"", quoteBaseline("a`b"))
}
