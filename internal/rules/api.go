package rules

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

// BannedAPIRule scans call sites against the banned and discouraged
// tables. Banned calls have no safe spelling; discouraged ones carry an
// auto-fix to the bounded sibling when the arguments are simple enough
// to rewrite mechanically.
type BannedAPIRule struct{}

func (BannedAPIRule) Code() diag.Code { return diag.SecBannedAPI }
func (BannedAPIRule) Codes() []diag.Code {
	return []diag.Code{diag.SecBannedAPI, diag.SecDiscouragedAPI}
}
func (BannedAPIRule) Name() string { return "banned-api" }
func (BannedAPIRule) Needs() Needs { return NeedsTokens | NeedsSkeleton }

var bannedCalls = map[string]string{
	"gets": "reads without a bound; use fgets",
}

var discouragedCalls = map[string]string{
	"strcpy":   "unbounded copy; use strncpy with an explicit terminator",
	"strcat":   "unbounded append; use strncat",
	"sprintf":  "unbounded format; use snprintf",
	"vsprintf": "unbounded format; use vsnprintf",
	"atoi":     "no error signal; use strtol",
	"strtok":   "hidden static state; use strtok_r",
}

func (BannedAPIRule) Check(rc *Context) {
	toks := rc.Tokens
	for _, fn := range rc.Unit.Funcs {
		for i := range fn.Body {
			s := &fn.Body[i]
			switch s.Kind {
			case parser.StmtExpr, parser.StmtDecl, parser.StmtCond, parser.StmtLoop, parser.StmtReturn:
			default:
				continue
			}
			for _, call := range callSitesIn(toks, s.First, s.Last) {
				if why, ok := bannedCalls[call.Name]; ok {
					diag.ReportMust(rc.R, diag.SecBannedAPI, toks[call.NameIdx].Span,
						fmt.Sprintf("call to banned function %q: %s", call.Name, why)).Emit()
					continue
				}
				why, ok := discouragedCalls[call.Name]
				if !ok {
					continue
				}
				rb := diag.ReportShould(rc.R, diag.SecDiscouragedAPI, toks[call.NameIdx].Span,
					fmt.Sprintf("call to discouraged function %q: %s", call.Name, why))
				attachBoundedFix(rc, rb, s, call)
				rb.Emit()
			}
		}
	}
}

// attachBoundedFix adds the mechanical rewrite for strcpy and sprintf
// calls whose destination is a plain identifier.
func attachBoundedFix(rc *Context, rb *diag.ReportBuilder, s *parser.Stmt, call callSite) {
	toks := rc.Tokens
	args := argRanges(toks, call.LParen)
	if len(args) < 2 {
		return
	}
	dst, _, ok := soleIdent(toks, args[0])
	if !ok {
		return
	}
	rparen := matchParen(toks, call.LParen)
	if rparen < 0 {
		return
	}

	switch call.Name {
	case "strcpy":
		// Only a whole-statement call can take the appended terminator.
		if s.Kind != parser.StmtExpr || sigNext(toks, rparen+1) > s.Last ||
			toks[sigNext(toks, rparen+1)].Kind != token.Semicolon {
			return
		}
		src, _, ok := soleIdent(toks, args[1])
		if !ok {
			return
		}
		callSpan := toks[call.NameIdx].Span.Cover(toks[rparen].Span)
		semi := toks[sigNext(toks, rparen+1)].Span
		rb.WithFix("replace strcpy with bounded copy",
			diag.TextEdit{
				Span:    callSpan,
				OldText: rc.Text(callSpan),
				NewText: fmt.Sprintf("strncpy(%s, %s, sizeof(%s) - 1)", dst, src, dst),
			},
			diag.TextEdit{
				Span:    source.Span{File: semi.File, Start: semi.End, End: semi.End},
				NewText: fmt.Sprintf(" %s[sizeof(%s) - 1] = '\\0';", dst, dst),
			},
		)

	case "sprintf":
		nameSpan := toks[call.NameIdx].Span
		argEnd := toks[args[0][1]].Span
		rb.WithFix("replace sprintf with snprintf",
			diag.TextEdit{
				Span:    nameSpan,
				OldText: "sprintf",
				NewText: "snprintf",
			},
			diag.TextEdit{
				Span:    source.Span{File: argEnd.File, Start: argEnd.End, End: argEnd.End},
				NewText: fmt.Sprintf(", sizeof(%s)", dst),
			},
		)
	}
}

// IgnoredResultRule flags bare statement calls to primitives whose
// return value carries the only failure signal.
type IgnoredResultRule struct{}

func (IgnoredResultRule) Code() diag.Code    { return diag.ErrIgnoredResult }
func (IgnoredResultRule) Codes() []diag.Code { return []diag.Code{diag.ErrIgnoredResult} }
func (IgnoredResultRule) Name() string       { return "ignored-result" }
func (IgnoredResultRule) Needs() Needs       { return NeedsTokens | NeedsSkeleton }

var resultCritical = map[string]bool{
	"malloc": true, "calloc": true, "realloc": true, "strdup": true,
	"fopen": true, "open": true, "socket": true, "accept": true,
	"read": true, "recv": true,
}

func (IgnoredResultRule) Check(rc *Context) {
	toks := rc.Tokens
	for _, fn := range rc.Unit.Funcs {
		for i := range fn.Body {
			s := &fn.Body[i]
			if s.Kind != parser.StmtExpr {
				continue
			}
			first := sigNext(toks, s.First)
			if first > s.Last || toks[first].Kind != token.Ident || !resultCritical[toks[first].Text] {
				continue
			}
			lp := sigNext(toks, first+1)
			if lp > s.Last || toks[lp].Kind != token.LParen {
				continue
			}
			rp := matchParen(toks, lp)
			if rp < 0 || rp > s.Last {
				continue
			}
			after := sigNext(toks, rp+1)
			if after <= s.Last && toks[after].Kind == token.Semicolon {
				diag.ReportShould(rc.R, diag.ErrIgnoredResult, toks[first].Span,
					fmt.Sprintf("result of %q is discarded", toks[first].Text)).Emit()
			}
		}
	}
}
