package report

import (
	"bytes"
	"strings"
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

func testFile(t *testing.T, name, content string) (*source.FileSet, source.FileID) {
	t.Helper()
	fs := source.NewFileSet()
	return fs, fs.AddVirtual(name, []byte(content))
}

func TestVerdictPerCategory(t *testing.T) {
	fs, fid := testFile(t, "a.c", "int main(void)\n{\n    return 0;\n}\n")

	bag := diag.NewBag(50)
	bag.Add(diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI,
		Primary: source.Span{File: fid, Start: 4, End: 8}, Message: "gets is banned"})
	bag.Add(diag.Diagnostic{Severity: diag.SevShould, Code: diag.NamingLocalCase,
		Primary: source.Span{File: fid, Start: 0, End: 3}, Message: "case"})
	bag.Add(diag.Diagnostic{Severity: diag.SevInfo, Code: diag.ErrAnalysisIncomplete,
		Primary: source.Span{File: fid, Start: 0, End: 3}, Message: "incomplete"})

	fr := BuildFile(fs, fid, bag, nil)

	if fr.Pass {
		t.Fatalf("file passed with an open MUST finding")
	}
	if fr.Verdicts[diag.CatSecurity].Pass || fr.Verdicts[diag.CatSecurity].Must != 1 {
		t.Fatalf("security verdict = %+v", fr.Verdicts[diag.CatSecurity])
	}
	if !fr.Verdicts[diag.CatNaming].Pass || fr.Verdicts[diag.CatNaming].Should != 1 {
		t.Fatalf("naming verdict = %+v", fr.Verdicts[diag.CatNaming])
	}
	// Info findings never affect a verdict.
	if !fr.Verdicts[diag.CatErrorHandling].Pass {
		t.Fatalf("info finding failed a category")
	}
	if len(fr.Findings) != 3 {
		t.Fatalf("findings = %d", len(fr.Findings))
	}
}

func TestFixedMustDoesNotFail(t *testing.T) {
	fs, fid := testFile(t, "a.c", "gets(buf);\n")
	sp := source.Span{File: fid, Start: 0, End: 4}

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{Severity: diag.SevMust, Code: diag.SecBannedAPI, Primary: sp, Message: "banned"})

	fr := BuildFile(fs, fid, bag, func(code diag.Code, span source.Span) bool {
		return code == diag.SecBannedAPI && span == sp
	})
	if !fr.Pass {
		t.Fatalf("fixed MUST finding still failed the file")
	}
	if !fr.Findings[0].Fixed {
		t.Fatalf("finding not marked fixed")
	}
	if fr.Verdicts[diag.CatSecurity].Must != 1 {
		t.Fatalf("fixed finding dropped from the tally")
	}
}

func TestMergeOrdersByPath(t *testing.T) {
	a := Merge([]FileReport{{Path: "z.c", Pass: true}, {Path: "a.c", Pass: false}})
	if a.Files[0].Path != "a.c" || a.Files[1].Path != "z.c" {
		t.Fatalf("order = %s, %s", a.Files[0].Path, a.Files[1].Path)
	}
	if a.Pass {
		t.Fatalf("overall passed with a failing file")
	}
}

// Identical diagnostics in any insertion order must render byte-identically.
func TestReportDeterminism(t *testing.T) {
	build := func(reversed bool) Audit {
		fs, fid := testFile(t, "a.c", "int x;\nint y;\n")
		items := []diag.Diagnostic{
			{Severity: diag.SevMust, Code: diag.SecBannedAPI,
				Primary: source.Span{File: fid, Start: 0, End: 3}, Message: "one"},
			{Severity: diag.SevShould, Code: diag.StyleLineTooLong,
				Primary: source.Span{File: fid, Start: 7, End: 10}, Message: "two"},
			{Severity: diag.SevShould, Code: diag.NamingLocalCase,
				Primary: source.Span{File: fid, Start: 4, End: 5}, Message: "three"},
		}
		bag := diag.NewBag(10)
		if reversed {
			for i := len(items) - 1; i >= 0; i-- {
				bag.Add(items[i])
			}
		} else {
			for _, d := range items {
				bag.Add(d)
			}
		}
		return Merge([]FileReport{BuildFile(fs, fid, bag, nil)})
	}

	var json1, json2, txt1, txt2 bytes.Buffer
	a1, a2 := build(false), build(true)
	if err := WriteJSON(&json1, a1); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := WriteJSON(&json2, a2); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !bytes.Equal(json1.Bytes(), json2.Bytes()) {
		t.Fatalf("json output depends on insertion order")
	}

	opts := PrettyOpts{ShowFindings: true}
	Pretty(&txt1, a1, opts)
	Pretty(&txt2, a2, opts)
	if !bytes.Equal(txt1.Bytes(), txt2.Bytes()) {
		t.Fatalf("pretty output depends on insertion order")
	}
}

func TestPrettyChecklist(t *testing.T) {
	fs, fid := testFile(t, "mod.c", "int x;\n")
	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{Severity: diag.SevMust, Code: diag.SystemMissingGuard,
		Primary: source.Span{File: fid, Start: 0, End: 3}, Message: "unchecked system call"})

	var buf bytes.Buffer
	Pretty(&buf, Merge([]FileReport{BuildFile(fs, fid, bag, nil)}), PrettyOpts{ShowFindings: true})
	out := buf.String()

	for _, want := range []string{
		"mod.c:1:1: MUST CS3501: unchecked system call",
		"[FAIL] system() usage",
		"[PASS] Naming",
		"overall: FAIL",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
