package report

import (
	"encoding/json"
	"io"

	"cstrict/internal/diag"
)

// FindingJSON is one finding in machine-readable output.
type FindingJSON struct {
	Code     string `json:"code"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Line     uint32 `json:"line"`
	Col      uint32 `json:"col"`
	Message  string `json:"message"`
	Fixed    bool   `json:"fixed,omitempty"`
}

// VerdictJSON is one checklist line in machine-readable output.
type VerdictJSON struct {
	Category string `json:"category"`
	Verdict  string `json:"verdict"`
	Must     int    `json:"must,omitempty"`
	Should   int    `json:"should,omitempty"`
}

// FileJSON is the per-file section of the JSON report.
type FileJSON struct {
	Path      string        `json:"path"`
	Verdict   string        `json:"verdict"`
	Checklist []VerdictJSON `json:"checklist"`
	Findings  []FindingJSON `json:"findings"`
}

// AuditJSON is the root of the JSON report.
type AuditJSON struct {
	Verdict string     `json:"verdict"`
	Files   []FileJSON `json:"files"`
}

func verdictWord(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

// BuildJSON shapes an audit into its JSON form without serializing it.
func BuildJSON(a Audit) AuditJSON {
	out := AuditJSON{Verdict: verdictWord(a.Pass), Files: make([]FileJSON, 0, len(a.Files))}
	for _, fr := range a.Files {
		fj := FileJSON{
			Path:      fr.Path,
			Verdict:   verdictWord(fr.Pass),
			Checklist: make([]VerdictJSON, 0, len(fr.Verdicts)),
			Findings:  make([]FindingJSON, 0, len(fr.Findings)),
		}
		for _, v := range fr.Verdicts {
			fj.Checklist = append(fj.Checklist, VerdictJSON{
				Category: v.Category.String(),
				Verdict:  verdictWord(v.Pass),
				Must:     v.Must,
				Should:   v.Should,
			})
		}
		for _, f := range fr.Findings {
			fj.Findings = append(fj.Findings, FindingJSON{
				Code:     f.Code.ID(),
				Category: diag.CategoryOf(f.Code).String(),
				Severity: f.Severity.String(),
				Line:     f.Line,
				Col:      f.Col,
				Message:  f.Message,
				Fixed:    f.Fixed,
			})
		}
		out.Files = append(out.Files, fj)
	}
	return out
}

// WriteJSON serializes the audit with stable two-space indentation.
func WriteJSON(w io.Writer, a Audit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSON(a))
}
