package baseline

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"strconv"
	"strings"
)

// Apply rewrites the expected baseline literals named by the entries.
// Entries are grouped per source file so each file is parsed and printed
// once; entry line numbers refer to the file before rewriting.
// It returns the number of literals spliced.
func Apply(entries []Entry) (int, error) {
	byFile := make(map[string][]Entry)
	for _, e := range entries {
		byFile[e.File] = append(byFile[e.File], e)
	}

	total := 0
	for path, fileEntries := range byFile {
		n, err := applyFile(path, fileEntries)
		if err != nil {
			return total, fmt.Errorf("%s: %w", path, err)
		}
		total += n
	}
	return total, nil
}

func applyFile(path string, entries []Entry) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	out, n, err := applySource(src, entries)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, err
	}
	return n, nil
}

// applySource splices new baseline literals into Go source. For each entry
// it locates the baseline assertion call spanning the entry's line and
// replaces the call's last string-literal argument. Only that literal
// changes; the file is reprinted with gofmt.
func applySource(src []byte, entries []Entry) ([]byte, int, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse source: %w", err)
	}

	pending := make(map[int]string, len(entries))
	for _, e := range entries {
		pending[e.Line] = e.MQL
	}

	count := 0
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !isBaselineCall(call) {
			return true
		}

		start := fset.Position(call.Pos()).Line
		end := fset.Position(call.End()).Line
		for line, text := range pending {
			if line < start || line > end {
				continue
			}
			lit := lastStringArg(call)
			if lit == nil {
				continue
			}
			lit.Value = quoteBaseline(text)
			delete(pending, line)
			count++
		}
		return true
	})

	if count == 0 {
		return src, 0, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, 0, fmt.Errorf("failed to print rewritten source: %w", err)
	}
	return buf.Bytes(), count, nil
}

// ResetFile blanks every baseline literal in a source file so the next
// reset run regenerates them all.
func ResetFile(path string) (int, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	out, n, err := resetSource(src)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if n == 0 {
		return 0, nil
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, err
	}
	return n, nil
}

func resetSource(src []byte) ([]byte, int, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse source: %w", err)
	}

	count := 0
	ast.Inspect(file, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || !isBaselineCall(call) {
			return true
		}
		if lit := lastStringArg(call); lit != nil && lit.Value != "``" {
			lit.Value = "``"
			count++
		}
		return true
	})

	if count == 0 {
		return src, 0, nil
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, 0, fmt.Errorf("failed to print rewritten source: %w", err)
	}
	return buf.Bytes(), count, nil
}

// isBaselineCall reports whether a call is a baseline assertion. Both the
// package-level AssertMQL variants and suite-level assertMQL helpers count.
func isBaselineCall(call *ast.CallExpr) bool {
	var name string
	switch fn := call.Fun.(type) {
	case *ast.Ident:
		name = fn.Name
	case *ast.SelectorExpr:
		name = fn.Sel.Name
	default:
		return false
	}
	return strings.Contains(strings.ToLower(name), "assertmql")
}

// lastStringArg returns the last string-literal argument of a call
func lastStringArg(call *ast.CallExpr) *ast.BasicLit {
	for i := len(call.Args) - 1; i >= 0; i-- {
		if lit, ok := call.Args[i].(*ast.BasicLit); ok && lit.Kind == token.STRING {
			return lit
		}
	}
	return nil
}

// quoteBaseline renders a baseline as a raw string literal when possible
func quoteBaseline(text string) string {
	if !strings.Contains(text, "`") {
		return "`" + text + "`"
	}
	return strconv.Quote(text)
}
