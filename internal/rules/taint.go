package rules

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/token"
)

// FormatTaintRule requires the format-position argument of formatted-I/O
// calls to be a string literal or a symbol never touched by external
// input inside the same function. No auto-fix: deciding how to sanitize
// is human work.
type FormatTaintRule struct{}

func (FormatTaintRule) Code() diag.Code    { return diag.SecFormatTaint }
func (FormatTaintRule) Codes() []diag.Code { return []diag.Code{diag.SecFormatTaint} }
func (FormatTaintRule) Name() string       { return "format-taint" }
func (FormatTaintRule) Needs() Needs       { return NeedsTokens | NeedsSkeleton }

// formatArgPos maps formatted-I/O functions to the index of their
// format argument.
var formatArgPos = map[string]int{
	"printf":   0,
	"vprintf":  0,
	"fprintf":  1,
	"vfprintf": 1,
	"dprintf":  1,
	"sprintf":  1,
	"vsprintf": 1,
	"snprintf": 2,
	"syslog":   1,
}

// taintSources mark a statement as importing external input; any
// identifier sharing such a statement is treated as tainted.
var taintSources = map[string]bool{
	"argv": true, "getenv": true, "gets": true, "fgets": true,
	"scanf": true, "fscanf": true, "read": true, "recv": true,
	"recvfrom": true, "fread": true, "getchar": true, "readline": true,
}

func (FormatTaintRule) Check(rc *Context) {
	for _, fn := range rc.Unit.Funcs {
		tainted := taintedNames(rc, fn)
		if len(tainted) == 0 {
			continue
		}
		checkFormatCalls(rc, fn, tainted)
	}
}

// taintedNames runs a flat closure over the function body: a statement
// containing a taint source taints every plain identifier it writes or
// fills; copies out of a tainted name propagate.
func taintedNames(rc *Context, fn *parser.Function) map[string]bool {
	toks := rc.Tokens
	tainted := make(map[string]bool)
	// 'argv' style parameters are sources by name.
	for _, p := range fn.Params {
		if taintSources[p.Name] {
			tainted[p.Name] = true
		}
	}

	for pass := 0; pass < 2; pass++ {
		for i := range fn.Body {
			s := &fn.Body[i]
			switch s.Kind {
			case parser.StmtExpr, parser.StmtDecl:
			default:
				continue
			}
			dirty := false
			for j := s.First; j <= s.Last && j < len(toks); j++ {
				if toks[j].Kind != token.Ident {
					continue
				}
				if taintSources[toks[j].Text] {
					dirty = true
					break
				}
				// A callee name carries no data; only its operands do.
				if tainted[toks[j].Text] && !calleePos(toks, j, s.Last) {
					dirty = true
					break
				}
			}
			if !dirty {
				continue
			}
			for j := s.First; j <= s.Last && j < len(toks); j++ {
				if toks[j].Kind != token.Ident || taintSources[toks[j].Text] {
					continue
				}
				if calleePos(toks, j, s.Last) {
					continue
				}
				if j > s.First {
					prev := toks[j-1].Kind
					if prev == token.Dot || prev == token.Arrow {
						continue
					}
				}
				tainted[toks[j].Text] = true
			}
		}
	}
	return tainted
}

// calleePos reports whether the identifier at j names a call inside the
// statement ending at last.
func calleePos(toks []token.Token, j, last int) bool {
	n := sigNext(toks, j+1)
	return n <= last && toks[n].Kind == token.LParen
}

func checkFormatCalls(rc *Context, fn *parser.Function, tainted map[string]bool) {
	toks := rc.Tokens
	for i := range fn.Body {
		s := &fn.Body[i]
		switch s.Kind {
		case parser.StmtExpr, parser.StmtDecl, parser.StmtCond, parser.StmtReturn:
		default:
			continue
		}
		for _, call := range callSitesIn(toks, s.First, s.Last) {
			pos, ok := formatArgPos[call.Name]
			if !ok {
				continue
			}
			args := argRanges(toks, call.LParen)
			if pos >= len(args) {
				continue
			}
			if hasStringLiteral(toks, args[pos]) {
				continue
			}
			name, idx, ok := soleIdent(toks, args[pos])
			if !ok || !tainted[name] {
				continue
			}
			diag.ReportMust(rc.R, diag.SecFormatTaint, toks[idx].Span,
				fmt.Sprintf("format argument %q derives from external input; pass a literal format such as \"%%s\"",
					name)).Emit()
		}
	}
}

func hasStringLiteral(toks []token.Token, rng [2]int) bool {
	for i := rng[0]; i <= rng[1]; i++ {
		if toks[i].Kind == token.StringLit {
			return true
		}
	}
	return false
}
