package report

import (
	"sort"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

// Finding is one diagnostic prepared for reporting: resolved to a
// line/column position and annotated with whether a fix was applied.
type Finding struct {
	Code     diag.Code
	Severity diag.Severity
	Span     source.Span
	Line     uint32
	Col      uint32
	Message  string
	Fixed    bool
}

// Verdict is one audit-checklist line. A category fails when at least one
// MUST finding in it was not fixed.
type Verdict struct {
	Category diag.Category
	Must     int
	Should   int
	Pass     bool
}

// FileReport is the audit outcome for a single file.
type FileReport struct {
	Path     string
	Findings []Finding
	Verdicts [diag.CategoryCount]Verdict
	Pass     bool
}

// Audit is a whole-run report: per-file reports in path order plus the
// overall verdict.
type Audit struct {
	Files []FileReport
	Pass  bool
}

// FixedFunc reports whether the diagnostic identified by code and primary
// span had a fix applied. A nil FixedFunc means nothing was fixed.
type FixedFunc func(code diag.Code, span source.Span) bool

// BuildFile turns one file's diagnostics into a FileReport. The bag is
// sorted and deduplicated first so the output is deterministic regardless
// of rule scheduling. Fixed MUST findings still appear in the listing but
// no longer fail their category.
func BuildFile(fs *source.FileSet, id source.FileID, bag *diag.Bag, fixed FixedFunc) FileReport {
	bag.Sort()
	bag.Dedup()

	file := fs.Get(id)
	fr := FileReport{Path: file.FormatPath("relative", fs.BaseDir())}

	for c := diag.Category(0); c < diag.CategoryCount; c++ {
		fr.Verdicts[c] = Verdict{Category: c, Pass: true}
	}

	for _, d := range bag.Items() {
		start, _ := fs.Resolve(d.Primary)
		f := Finding{
			Code:     d.Code,
			Severity: d.Severity,
			Span:     d.Primary,
			Line:     start.Line,
			Col:      start.Col,
			Message:  d.Message,
		}
		if fixed != nil {
			f.Fixed = fixed(d.Code, d.Primary)
		}
		fr.Findings = append(fr.Findings, f)

		v := &fr.Verdicts[d.Category()]
		switch d.Severity {
		case diag.SevMust:
			v.Must++
			if !f.Fixed {
				v.Pass = false
			}
		case diag.SevShould:
			v.Should++
		}
	}

	fr.Pass = true
	for i := range fr.Verdicts {
		if !fr.Verdicts[i].Pass {
			fr.Pass = false
			break
		}
	}
	return fr
}

// Merge combines per-file reports into one audit, ordered by path.
func Merge(files []FileReport) Audit {
	sorted := append([]FileReport(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	a := Audit{Files: sorted, Pass: true}
	for i := range sorted {
		if !sorted[i].Pass {
			a.Pass = false
			break
		}
	}
	return a
}
