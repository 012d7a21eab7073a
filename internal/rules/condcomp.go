package rules

import (
	"fmt"
	"strings"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
)

// CondCompRule keeps conditional compilation legible: nesting stays
// under the configured ceiling and no `#if 0` graveyards linger.
type CondCompRule struct{}

func (CondCompRule) Code() diag.Code { return diag.CondNestingDepth }
func (CondCompRule) Codes() []diag.Code {
	return []diag.Code{diag.CondNestingDepth, diag.CondIfZero}
}
func (CondCompRule) Name() string { return "cond-comp" }
func (CondCompRule) Needs() Needs { return NeedsSkeleton }

func (CondCompRule) Check(rc *Context) {
	limit := rc.Limits.CondDepth
	for _, d := range rc.Unit.Directives {
		switch d.Kind {
		case parser.DirIf, parser.DirIfdef, parser.DirIfndef:
			if limit > 0 && d.Depth+1 > limit {
				diag.ReportShould(rc.R, diag.CondNestingDepth, d.Span,
					fmt.Sprintf("conditional compilation nested %d deep (limit %d)",
						d.Depth+1, limit)).Emit()
			}
			if d.Kind == parser.DirIf && strings.TrimSpace(d.Cond) == "0" {
				diag.ReportShould(rc.R, diag.CondIfZero, d.Span,
					"dead `#if 0` block; delete the code instead of disabling it").Emit()
			}
		}
	}
}
