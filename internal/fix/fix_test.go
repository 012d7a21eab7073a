package fix

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/rules"
	"cstrict/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestApplyReplacesSpan(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.c", []byte("int x;\n"))

	d := diag.Diagnostic{
		Severity: diag.SevShould,
		Code:     diag.NamingLocalCase,
		Primary:  span(fid, 4, 5),
	}
	d = d.WithFix("rename", diag.TextEdit{Span: span(fid, 4, 5), NewText: "count", OldText: "x"})

	res, err := Apply(fs, []diag.Diagnostic{d})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := string(res.Buffers[fid]); got != "int count;\n" {
		t.Fatalf("buffer = %q", got)
	}
	if len(res.Applied) != 1 || res.Applied[0].EditCount != 1 {
		t.Fatalf("applied = %+v", res.Applied)
	}
	if !res.Fixed(diag.NamingLocalCase, span(fid, 4, 5)) {
		t.Fatalf("Fixed lookup failed")
	}
}

func TestApplyMultiEditDescending(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.c", []byte("strcpy(dst, src);"))

	d := diag.Diagnostic{
		Severity: diag.SevShould,
		Code:     diag.SecDiscouragedAPI,
		Primary:  span(fid, 0, 6),
	}
	d = d.WithFix("use bounded copy",
		diag.TextEdit{Span: span(fid, 0, 16), NewText: "strncpy(dst, src, sizeof(dst) - 1)", OldText: "strcpy(dst, src)"},
		diag.TextEdit{Span: span(fid, 17, 17), NewText: " dst[sizeof(dst) - 1] = '\\0';"},
	)

	res, err := Apply(fs, []diag.Diagnostic{d})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := "strncpy(dst, src, sizeof(dst) - 1); dst[sizeof(dst) - 1] = '\\0';"
	if got := string(res.Buffers[fid]); got != want {
		t.Fatalf("buffer = %q, want %q", got, want)
	}
}

func TestOverlapMustWins(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.c", []byte("abcdef"))

	should := diag.Diagnostic{Severity: diag.SevShould, Code: diag.StyleNullComparison, Primary: span(fid, 0, 4)}
	should = should.WithFix("lower", diag.TextEdit{Span: span(fid, 0, 4), NewText: "XXXX", OldText: "abcd"})
	must := diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI, Primary: span(fid, 2, 6)}
	must = must.WithFix("upper", diag.TextEdit{Span: span(fid, 2, 6), NewText: "YYYY", OldText: "cdef"})

	// SHOULD comes first in the input; severity must still decide.
	res, err := Apply(fs, []diag.Diagnostic{should, must})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := string(res.Buffers[fid]); got != "abYYYY" {
		t.Fatalf("buffer = %q", got)
	}
	if len(res.Applied) != 1 || res.Applied[0].Code != diag.SecBannedAPI {
		t.Fatalf("applied = %+v", res.Applied)
	}
	if len(res.Dropped) != 1 || res.Dropped[0].Reason != "overlaps a higher-priority edit" {
		t.Fatalf("dropped = %+v", res.Dropped)
	}
}

func TestGuardMismatchDiscardsFile(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.c", []byte("hello world"))

	bad := diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI, Primary: span(fid, 0, 5)}
	bad = bad.WithFix("bad", diag.TextEdit{Span: span(fid, 0, 5), NewText: "HELLO", OldText: "nope!"})
	good := diag.Diagnostic{Severity: diag.SevShould, Code: diag.StyleNullComparison, Primary: span(fid, 6, 11)}
	good = good.WithFix("good", diag.TextEdit{Span: span(fid, 6, 11), NewText: "WORLD", OldText: "world"})

	res, err := Apply(fs, []diag.Diagnostic{bad, good})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if _, ok := res.Buffers[fid]; ok {
		t.Fatalf("file was rewritten despite failed guard")
	}
	// Both fixes share the file and the whole set is discarded.
	if len(res.Dropped) != 2 {
		t.Fatalf("dropped = %+v", res.Dropped)
	}
}

func TestDiscardIsPerFile(t *testing.T) {
	fs := source.NewFileSet()
	fidA := fs.AddVirtual("a.c", []byte("alpha"))
	fidB := fs.AddVirtual("b.c", []byte("beta"))

	bad := diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI, Primary: span(fidA, 0, 5)}
	bad = bad.WithFix("bad", diag.TextEdit{Span: span(fidA, 0, 5), NewText: "ALPHA", OldText: "wrong"})
	good := diag.Diagnostic{Severity: diag.SevShould, Code: diag.StyleNullComparison, Primary: span(fidB, 0, 4)}
	good = good.WithFix("good", diag.TextEdit{Span: span(fidB, 0, 4), NewText: "BETA", OldText: "beta"})

	res, err := Apply(fs, []diag.Diagnostic{bad, good})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := res.Buffers[fidA]; ok {
		t.Fatalf("a.c was rewritten despite failed guard")
	}
	if got := string(res.Buffers[fidB]); got != "BETA" {
		t.Fatalf("b.c buffer = %q", got)
	}
}

func TestNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.c", []byte("x"))
	d := diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI, Primary: span(fid, 0, 1)}
	if _, err := Apply(fs, []diag.Diagnostic{d}); !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
}

// Applying the fixer to already-fixed output must be a no-op.
func TestIdempotence(t *testing.T) {
	src := "void Mod_Copy(char *src)\n" +
		"{\n" +
		"    char dst[16];\n" +
		"    if (src) {\n" +
		"        strcpy(dst, src);\n" +
		"    }\n" +
		"}\n"

	fs := source.NewFileSet()
	fid := fs.AddVirtual("mod.c", []byte(src))

	first := runAndFix(t, fs, fid)
	if first == nil {
		t.Fatalf("first pass applied no fixes")
	}
	fs.ReplaceContent(fid, first)

	second := runAndFix(t, fs, fid)
	if second != nil {
		t.Fatalf("second pass still rewrote the buffer:\n%s", second)
	}

	if !bytes.Contains(first, []byte("src != NULL")) {
		t.Fatalf("null comparison not rewritten:\n%s", first)
	}
	if !bytes.Contains(first, []byte("strncpy(dst, src, sizeof(dst) - 1)")) {
		t.Fatalf("strcpy not rewritten:\n%s", first)
	}
}

// runAndFix analyzes the file and applies every fix, returning the new
// buffer or nil when nothing was fixable.
func runAndFix(t *testing.T, fs *source.FileSet, fid source.FileID) []byte {
	t.Helper()
	bag := diag.NewBag(200)
	opts := rules.Options{Limits: rules.DefaultLimits()}
	if err := rules.Analyze(context.Background(), fs.Get(fid), rules.Default(), opts, diag.BagReporter{Bag: bag}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	res, err := Apply(fs, bag.Items())
	if errors.Is(err, ErrNoFixes) {
		return nil
	}
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return res.Buffers[fid]
}
