package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cstrict/internal/diag"
)

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color        bool
	ShowFindings bool
	MaxFindings  int // 0 means unlimited
}

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	sevColor  = map[diag.Severity]*color.Color{
		diag.SevMust:   color.New(color.FgRed),
		diag.SevShould: color.New(color.FgYellow),
		diag.SevInfo:   color.New(color.FgCyan),
	}
	pathColor  = color.New(color.Bold)
	fixedColor = color.New(color.FgGreen)
)

// Pretty renders the audit as the standard's checklist: per file, the
// findings (optional), then one verdict line per audit category, then the
// file verdict. Output is deterministic for a given audit.
func Pretty(w io.Writer, a Audit, opts PrettyOpts) {
	catWidth := 0
	for c := diag.Category(0); c < diag.CategoryCount; c++ {
		if cw := runewidth.StringWidth(c.String()); cw > catWidth {
			catWidth = cw
		}
	}

	for i := range a.Files {
		fr := &a.Files[i]
		fmt.Fprintf(w, "%s\n", paint(opts.Color, pathColor, fr.Path))

		if opts.ShowFindings {
			writeFindings(w, fr, opts)
		}

		for _, v := range fr.Verdicts {
			name := runewidth.FillRight(v.Category.String(), catWidth)
			fmt.Fprintf(w, "  [%s] %s", verdictCell(opts.Color, v.Pass), name)
			if v.Must > 0 || v.Should > 0 {
				fmt.Fprintf(w, "  %d must, %d should", v.Must, v.Should)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "  => %s\n\n", verdictCell(opts.Color, fr.Pass))
	}

	fmt.Fprintf(w, "overall: %s\n", verdictCell(opts.Color, a.Pass))
}

func writeFindings(w io.Writer, fr *FileReport, opts PrettyOpts) {
	shown := 0
	for _, f := range fr.Findings {
		if opts.MaxFindings > 0 && shown == opts.MaxFindings {
			fmt.Fprintf(w, "  ... and %d more\n", len(fr.Findings)-shown)
			break
		}
		sev := f.Severity.String()
		if c, ok := sevColor[f.Severity]; ok {
			sev = paint(opts.Color, c, sev)
		}
		fmt.Fprintf(w, "  %s:%d:%d: %s %s: %s", fr.Path, f.Line, f.Col, sev, f.Code.ID(), f.Message)
		if f.Fixed {
			fmt.Fprintf(w, " %s", paint(opts.Color, fixedColor, "[fixed]"))
		}
		fmt.Fprintln(w)
		shown++
	}
}

func verdictCell(colored bool, pass bool) string {
	if pass {
		return paint(colored, passColor, "PASS")
	}
	return paint(colored, failColor, "FAIL")
}

func paint(colored bool, c *color.Color, s string) string {
	if !colored {
		return s
	}
	return c.Sprint(s)
}
