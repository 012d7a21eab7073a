package rules

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/token"
)

// NullComparisonRule flags pointers tested in a boolean context and
// offers the explicit comparison rewrite.
type NullComparisonRule struct{}

func (NullComparisonRule) Code() diag.Code    { return diag.StyleNullComparison }
func (NullComparisonRule) Codes() []diag.Code { return []diag.Code{diag.StyleNullComparison} }
func (NullComparisonRule) Name() string       { return "null-comparison" }
func (NullComparisonRule) Needs() Needs {
	return NeedsTokens | NeedsSkeleton | NeedsSymbols
}

func (NullComparisonRule) Check(rc *Context) {
	for _, fn := range rc.Unit.Funcs {
		pointers := pointerNames(rc, fn)
		for i := range fn.Body {
			s := &fn.Body[i]
			if s.Kind != parser.StmtCond && s.Kind != parser.StmtLoop {
				continue
			}
			if s.Head != token.KwIf && s.Head != token.KwWhile {
				continue
			}
			checkBoolContext(rc, s, pointers)
		}
	}
}

func pointerNames(rc *Context, fn *parser.Function) map[string]bool {
	out := make(map[string]bool)
	for _, sym := range rc.Table.LocalsOf(fn.Decl.Name) {
		if sym.IsPointer() {
			out[sym.Name] = true
		}
	}
	return out
}

// checkBoolContext matches `( p )` and `( ! p )` condition shapes.
func checkBoolContext(rc *Context, s *parser.Stmt, pointers map[string]bool) {
	toks := rc.Tokens
	lp := -1
	for i := s.First; i <= s.Last; i++ {
		if toks[i].Kind == token.LParen {
			lp = i
			break
		}
	}
	if lp < 0 {
		return
	}
	rp := matchParen(toks, lp)
	if rp < 0 || rp > s.Last {
		return
	}

	var inner []int
	for i := lp + 1; i < rp; i++ {
		if !toks[i].IsComment() {
			inner = append(inner, i)
		}
	}

	switch len(inner) {
	case 1:
		id := inner[0]
		if toks[id].Kind != token.Ident || !pointers[toks[id].Text] {
			return
		}
		sp := toks[id].Span
		diag.ReportShould(rc.R, diag.StyleNullComparison, sp,
			fmt.Sprintf("pointer %q tested implicitly; compare against NULL", toks[id].Text)).
			WithFix("make NULL comparison explicit", diag.TextEdit{
				Span:    sp,
				OldText: toks[id].Text,
				NewText: toks[id].Text + " != NULL",
			}).Emit()
	case 2:
		bang, id := inner[0], inner[1]
		if toks[bang].Kind != token.Bang || toks[id].Kind != token.Ident || !pointers[toks[id].Text] {
			return
		}
		sp := toks[bang].Span.Cover(toks[id].Span)
		diag.ReportShould(rc.R, diag.StyleNullComparison, sp,
			fmt.Sprintf("pointer %q tested implicitly; compare against NULL", toks[id].Text)).
			WithFix("make NULL comparison explicit", diag.TextEdit{
				Span:    sp,
				OldText: rc.Text(sp),
				NewText: toks[id].Text + " == NULL",
			}).Emit()
	}
}
