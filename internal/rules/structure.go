package rules

import (
	"fmt"
	"strings"

	"cstrict/internal/cfg"
	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/source"
	"cstrict/internal/symbols"
	"cstrict/internal/token"

	"github.com/mattn/go-runewidth"
)

// UnreachableRule flags statements no path from a function's entry
// reaches.
type UnreachableRule struct{}

func (UnreachableRule) Code() diag.Code    { return diag.FuncUnreachableBlock }
func (UnreachableRule) Codes() []diag.Code { return []diag.Code{diag.FuncUnreachableBlock} }
func (UnreachableRule) Name() string       { return "unreachable" }
func (UnreachableRule) Needs() Needs       { return NeedsCFG }

func (UnreachableRule) Check(rc *Context) {
	for i := range rc.Unit.Funcs {
		g := rc.Graph(i)
		if g == nil {
			continue
		}
		for _, b := range g.Unreachable() {
			diag.ReportShould(rc.R, diag.FuncUnreachableBlock, g.BlockSpan(b),
				"code is unreachable from the function entry").Emit()
		}
	}
}

// SingleReturnRule flags extra return statements. Two shapes the
// standard endorses are exempt: a leading run of guard-clause early
// returns, and the single return of a goto-cleanup exit block.
type SingleReturnRule struct{}

func (SingleReturnRule) Code() diag.Code    { return diag.FuncMultipleReturn }
func (SingleReturnRule) Codes() []diag.Code { return []diag.Code{diag.FuncMultipleReturn} }
func (SingleReturnRule) Name() string       { return "single-return" }
func (SingleReturnRule) Needs() Needs       { return NeedsSkeleton | NeedsCFG }

func (SingleReturnRule) Check(rc *Context) {
	for fi, fn := range rc.Unit.Funcs {
		g := rc.Graph(fi)
		checkSingleReturn(rc, fn, g)
	}
}

func checkSingleReturn(rc *Context, fn *parser.Function, g *cfg.Graph) {
	prologue := guardPrologueEnd(fn)

	cleanupReturns := make(map[int]bool)
	if g != nil {
		for _, b := range g.Blocks {
			if !b.Cleanup {
				continue
			}
			for _, idx := range b.Stmts {
				if fn.Body[idx].Kind == parser.StmtReturn {
					cleanupReturns[idx] = true
				}
			}
		}
	}

	var extra []int
	last := -1
	for i := range fn.Body {
		if fn.Body[i].Kind == parser.StmtReturn {
			last = i
		}
	}
	for i := range fn.Body {
		s := &fn.Body[i]
		if s.Kind != parser.StmtReturn || i < prologue || i == last || cleanupReturns[i] {
			continue
		}
		extra = append(extra, i)
	}
	for _, i := range extra {
		diag.ReportShould(rc.R, diag.FuncMultipleReturn, fn.Body[i].Span,
			fmt.Sprintf("function %q returns in the middle of its body; prefer a single exit or goto-cleanup",
				fn.Decl.Name)).Emit()
	}
}

// guardPrologueEnd returns the statement index ending the leading run of
// guard clauses: conditionals whose bodies only return.
func guardPrologueEnd(fn *parser.Function) int {
	i := 0
	if i < len(fn.Body) && fn.Body[i].Kind == parser.StmtBlockStart {
		i++
	}
	for i < len(fn.Body) {
		s := &fn.Body[i]
		if s.Kind == parser.StmtDecl {
			i++
			continue
		}
		if s.Kind != parser.StmtCond {
			break
		}
		end, ok := guardBodyEnd(fn, i+1)
		if !ok {
			break
		}
		i = end
	}
	return i
}

// guardBodyEnd accepts either `return ...;` or `{ return ...; }` as a
// guard body and returns the index just past it.
func guardBodyEnd(fn *parser.Function, i int) (int, bool) {
	if i < len(fn.Body) && fn.Body[i].Kind == parser.StmtReturn {
		return i + 1, true
	}
	if i+2 < len(fn.Body) &&
		fn.Body[i].Kind == parser.StmtBlockStart &&
		fn.Body[i+1].Kind == parser.StmtReturn &&
		fn.Body[i+2].Kind == parser.StmtBlockEnd {
		return i + 3, true
	}
	return 0, false
}

// IncludeGuardRule requires headers to open with the #ifndef/#define
// pair and close with #endif, and the guard macro to be UPPER_SNAKE.
type IncludeGuardRule struct{}

func (IncludeGuardRule) Code() diag.Code { return diag.HeaderMissingGuard }
func (IncludeGuardRule) Codes() []diag.Code {
	return []diag.Code{diag.HeaderMissingGuard, diag.HeaderGuardShape}
}
func (IncludeGuardRule) Name() string { return "include-guard" }
func (IncludeGuardRule) Needs() Needs { return NeedsSkeleton }

func (IncludeGuardRule) Check(rc *Context) {
	if !rc.File.IsHeader() {
		return
	}
	dirs := rc.Unit.Directives
	if len(dirs) < 3 {
		reportMissingGuard(rc)
		return
	}
	first := dirs[0]
	second := dirs[1]
	lastD := dirs[len(dirs)-1]
	if first.Kind != parser.DirIfndef || second.Kind != parser.DirDefine || lastD.Kind != parser.DirEndif {
		reportMissingGuard(rc)
		return
	}
	guard := firstWord(first.Cond)
	defined := firstWord(strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(second.Text, "#"), "define")))
	if guard == "" || guard != defined {
		diag.ReportShould(rc.R, diag.HeaderGuardShape, second.Span,
			fmt.Sprintf("include guard defines %q but tests %q", defined, guard)).Emit()
		return
	}
	if !isUpperSnake(guard) {
		diag.ReportShould(rc.R, diag.HeaderGuardShape, first.Span,
			fmt.Sprintf("include-guard macro %q should be UPPER_WITH_UNDERSCORES", guard)).Emit()
	}
}

func reportMissingGuard(rc *Context) {
	sp := source.Span{File: rc.File.ID, Start: 0, End: 0}
	diag.ReportMust(rc.R, diag.HeaderMissingGuard, sp,
		"header has no include guard").Emit()
}

func firstWord(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			return s[:i]
		}
	}
	return s
}

// LineLengthRule measures display width per line, so wide runes count
// by their terminal cells rather than bytes.
type LineLengthRule struct{}

func (LineLengthRule) Code() diag.Code    { return diag.StyleLineTooLong }
func (LineLengthRule) Codes() []diag.Code { return []diag.Code{diag.StyleLineTooLong} }
func (LineLengthRule) Name() string       { return "line-length" }
func (LineLengthRule) Needs() Needs       { return 0 }

func (LineLengthRule) Check(rc *Context) {
	limit := rc.Limits.LineLength
	if limit <= 0 {
		return
	}
	content := rc.File.Content
	lineStart := 0
	line := uint32(1)
	flush := func(end int) {
		text := strings.TrimRight(string(content[lineStart:end]), "\r")
		if w := runewidth.StringWidth(text); w > limit {
			sp := source.Span{
				File:  rc.File.ID,
				Start: uint32(lineStart),
				End:   uint32(end),
			}
			diag.ReportShould(rc.R, diag.StyleLineTooLong, sp,
				fmt.Sprintf("line %d is %d columns wide (limit %d)", line, w, limit)).Emit()
		}
	}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			flush(i)
			lineStart = i + 1
			line++
		}
	}
	if lineStart < len(content) {
		flush(len(content))
	}
}

// ModuleStateRule counts writable module-scope symbols against the
// configured budget; the standard discourages module state rather than
// banning it, so the overflow is a single advisory finding.
type ModuleStateRule struct{}

func (ModuleStateRule) Code() diag.Code    { return diag.StyleModuleState }
func (ModuleStateRule) Codes() []diag.Code { return []diag.Code{diag.StyleModuleState} }
func (ModuleStateRule) Name() string       { return "module-state" }
func (ModuleStateRule) Needs() Needs       { return NeedsSymbols }

func (ModuleStateRule) Check(rc *Context) {
	budget := rc.Limits.ModuleStateBudget
	if budget <= 0 {
		return
	}
	var writable []*sourceSpanName
	for _, sym := range rc.Table.ModuleVars() {
		if sym.Flags&symbols.SymbolFlagConst == 0 {
			writable = append(writable, &sourceSpanName{sym.Name, sym.Span})
		}
	}
	if len(writable) <= budget {
		return
	}
	rb := diag.ReportShould(rc.R, diag.StyleModuleState, writable[0].span,
		fmt.Sprintf("%d writable module-scope variables (budget %d)", len(writable), budget))
	for _, w := range writable[1:] {
		rb.WithNote(w.span, fmt.Sprintf("module state %q", w.name))
	}
	rb.Emit()
}

type sourceSpanName struct {
	name string
	span source.Span
}

// DebugMacroRule checks the message shape of the numbered debug macros:
// the first string argument opens with "function(): ".
type DebugMacroRule struct{}

func (DebugMacroRule) Code() diag.Code    { return diag.DebugMacroShape }
func (DebugMacroRule) Codes() []diag.Code { return []diag.Code{diag.DebugMacroShape} }
func (DebugMacroRule) Name() string       { return "debug-macro" }
func (DebugMacroRule) Needs() Needs       { return NeedsTokens | NeedsSkeleton }

func (DebugMacroRule) Check(rc *Context) {
	toks := rc.Tokens
	for _, fn := range rc.Unit.Funcs {
		for i := range fn.Body {
			s := &fn.Body[i]
			if s.Kind != parser.StmtExpr {
				continue
			}
			for _, call := range callSitesIn(toks, s.First, s.Last) {
				if !isDebugMacroName(call.Name) {
					continue
				}
				args := argRanges(toks, call.LParen)
				if !debugArgsWellFormed(rc, toks, args) {
					diag.ReportShould(rc.R, diag.DebugMacroShape, toks[call.NameIdx].Span,
						fmt.Sprintf("%s message should start with \"function(): \"", call.Name)).Emit()
				}
			}
		}
	}
}

func isDebugMacroName(name string) bool {
	return len(name) == 6 && strings.HasPrefix(name, "DEBUG") &&
		name[5] >= '1' && name[5] <= '9'
}

func debugArgsWellFormed(rc *Context, toks []token.Token, args [][2]int) bool {
	for _, a := range args {
		for i := a[0]; i <= a[1]; i++ {
			if toks[i].Kind == token.StringLit {
				return strings.Contains(toks[i].Text, "(): ")
			}
		}
	}
	return false
}
