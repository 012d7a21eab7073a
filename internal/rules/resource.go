package rules

import (
	"fmt"

	"cstrict/internal/cfg"
	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

// ResourceRule tracks manually managed resources across every CFG path:
// an acquisition must reach a matching release, an ownership-transferring
// return, or an escape before the function exits. A release seen twice on
// one path without re-acquisition is a double free. Enumeration is
// bounded; hitting the bound degrades to a whole-function check plus an
// advisory incompleteness note instead of silently passing.
type ResourceRule struct{}

func (ResourceRule) Code() diag.Code { return diag.ErrResourceLeak }
func (ResourceRule) Codes() []diag.Code {
	return []diag.Code{diag.ErrResourceLeak, diag.ErrDoubleFree, diag.ErrAnalysisIncomplete}
}
func (ResourceRule) Name() string { return "resource-lifecycle" }
func (ResourceRule) Needs() Needs { return NeedsTokens | NeedsCFG }

// acquireFamily maps acquisition functions to a resource family;
// releaseFamily maps release functions to the family they end.
var acquireFamily = map[string]string{
	"malloc": "mem", "calloc": "mem", "realloc": "mem", "strdup": "mem",
	"fopen": "file", "fdopen": "file",
	"open": "fd", "creat": "fd", "socket": "fd", "accept": "fd", "dup": "fd",
}

var releaseFamily = map[string]string{
	"free":   "mem",
	"fclose": "file",
	"close":  "fd",
}

// nonOwningCalls never take ownership of a pointer argument, so passing
// a resource to them is not an escape.
var nonOwningCalls = map[string]bool{
	"printf": true, "fprintf": true, "sprintf": true, "snprintf": true,
	"strcpy": true, "strncpy": true, "strcmp": true, "strncmp": true,
	"strlen": true, "strcat": true, "strncat": true, "strchr": true, "strstr": true,
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
	"fread": true, "fwrite": true, "fgets": true, "fputs": true, "fflush": true,
	"fseek": true, "ftell": true, "feof": true, "ferror": true, "rewind": true,
	"read": true, "write": true, "puts": true, "perror": true,
}

type resEventKind uint8

const (
	evAcquire resEventKind = iota
	evRelease
	evTransfer
)

type resEvent struct {
	kind    resEventKind
	sym     string
	family  string
	stmtIdx int
	span    source.Span
}

func (ResourceRule) Check(rc *Context) {
	for i := range rc.Unit.Funcs {
		g := rc.Graph(i)
		if g == nil {
			continue
		}
		if rc.Ctx.Err() != nil {
			return
		}
		checkResources(rc, g)
	}
}

func checkResources(rc *Context, g *cfg.Graph) {
	events := collectEvents(rc, g)
	guards := collectNullGuards(rc, g)

	type acq struct {
		block   cfg.BlockID
		ev      resEvent
		evIndex int
	}
	var acqs []acq
	for bid, evs := range events {
		for i, ev := range evs {
			if ev.kind == evAcquire {
				acqs = append(acqs, acq{block: cfg.BlockID(bid), ev: ev, evIndex: i})
			}
		}
	}

	limits := cfg.PathLimits{MaxPaths: rc.Limits.PathBudget, MaxVisits: rc.Limits.PathVisits}
	doubleFreeSeen := make(map[int]bool)

	for _, a := range acqs {
		leakReported := false
		var leakAt source.Span

		complete := g.Paths(a.block, limits, func(path []cfg.BlockID) bool {
			if rc.Ctx.Err() != nil {
				return false
			}
			held := true
			released := false
			for pi, bid := range path {
				if !held {
					break
				}
				for _, ev := range events[int(bid)] {
					if pi == 0 && bid == a.block && ev.stmtIdx <= a.ev.stmtIdx {
						continue
					}
					if ev.sym != a.ev.sym {
						continue
					}
					switch ev.kind {
					case evAcquire:
						// Re-acquisition starts a new lifetime; the
						// enumeration rooted at that event covers it.
						held = false
					case evRelease:
						if ev.family != a.ev.family {
							continue
						}
						if released {
							if !doubleFreeSeen[ev.stmtIdx] {
								doubleFreeSeen[ev.stmtIdx] = true
								diag.ReportMust(rc.R, diag.ErrDoubleFree, ev.span,
									fmt.Sprintf("%q released twice on one path", ev.sym)).Emit()
							}
						} else {
							released = true
						}
					case evTransfer:
						held = false
					}
					// The lifetime rooted at this acquisition ended;
					// later events in the block belong to the next one.
					if !held {
						break
					}
				}
				// A failed-acquisition guard: on the branch where the
				// symbol tests NULL there is nothing to release.
				if gd, ok := guards[bid]; ok && gd.sym == a.ev.sym &&
					pi+1 < len(path) && path[pi+1] == gd.nullSucc {
					held = false
				}
			}
			if held && !released && !leakReported {
				leakReported = true
				leakAt = terminalSpan(g, path)
			}
			return true
		})

		if !complete {
			diag.ReportShould(rc.R, diag.ErrAnalysisIncomplete, a.ev.span,
				fmt.Sprintf("too many paths to prove %q is always released; checked this block only", a.ev.sym)).Emit()
			if !functionEverHandles(events, a.ev) {
				diag.ReportMust(rc.R, diag.ErrResourceLeak, a.ev.span,
					fmt.Sprintf("%q acquired here is never released or transferred", a.ev.sym)).Emit()
			}
			continue
		}
		if leakReported {
			diag.ReportMust(rc.R, diag.ErrResourceLeak, leakAt,
				fmt.Sprintf("%q may leak on a path reaching this exit", a.ev.sym)).
				WithNote(a.ev.span, fmt.Sprintf("%q acquired here", a.ev.sym)).Emit()
		}
	}
}

// nullGuard records the successor a guard block takes when its tested
// symbol is NULL.
type nullGuard struct {
	sym      string
	nullSucc cfg.BlockID
}

func collectNullGuards(rc *Context, g *cfg.Graph) map[cfg.BlockID]nullGuard {
	out := make(map[cfg.BlockID]nullGuard)
	for _, b := range g.Blocks {
		if b.Term != cfg.TermIf || len(b.Succs) < 2 || len(b.Stmts) == 0 {
			continue
		}
		s := g.StmtAt(b.Stmts[len(b.Stmts)-1])
		if s.Kind != parser.StmtCond || s.Head != token.KwIf {
			continue
		}
		sym, nullWhenTrue, ok := nullTest(rc.Tokens, s)
		if !ok {
			continue
		}
		if nullWhenTrue {
			out[b.ID] = nullGuard{sym: sym, nullSucc: b.Succs[0]}
		} else {
			out[b.ID] = nullGuard{sym: sym, nullSucc: b.Succs[1]}
		}
	}
	return out
}

// nullTest matches the common failed-acquisition conditions: `p == NULL`,
// `NULL == p` and `!p` test null when true; `p != NULL` and `p` test
// null when false.
func nullTest(toks []token.Token, s *parser.Stmt) (sym string, nullWhenTrue, ok bool) {
	lp := -1
	for i := s.First; i <= s.Last && i < len(toks); i++ {
		if toks[i].Kind == token.LParen {
			lp = i
			break
		}
	}
	if lp < 0 {
		return "", false, false
	}
	rp := matchParen(toks, lp)
	if rp < 0 || rp > s.Last {
		return "", false, false
	}
	var inner []int
	for i := lp + 1; i < rp; i++ {
		if !toks[i].IsComment() {
			inner = append(inner, i)
		}
	}
	isNull := func(i int) bool { return toks[i].Kind == token.Ident && toks[i].Text == "NULL" }
	switch len(inner) {
	case 1:
		if toks[inner[0]].Kind == token.Ident && !isNull(inner[0]) {
			return toks[inner[0]].Text, false, true
		}
	case 2:
		if toks[inner[0]].Kind == token.Bang && toks[inner[1]].Kind == token.Ident {
			return toks[inner[1]].Text, true, true
		}
	case 3:
		a, op, b := inner[0], inner[1], inner[2]
		if toks[op].Kind != token.EqEq && toks[op].Kind != token.BangEq {
			break
		}
		var id int
		switch {
		case isNull(a) && toks[b].Kind == token.Ident:
			id = b
		case isNull(b) && toks[a].Kind == token.Ident:
			id = a
		default:
			return "", false, false
		}
		return toks[id].Text, toks[op].Kind == token.EqEq, true
	}
	return "", false, false
}

// terminalSpan points at the last non-empty block before the synthetic
// exit, falling back to the function body span.
func terminalSpan(g *cfg.Graph, path []cfg.BlockID) source.Span {
	for i := len(path) - 1; i >= 0; i-- {
		b := g.Block(path[i])
		if b.ID != g.Exit && !b.Empty() {
			return g.BlockSpan(b)
		}
	}
	return g.Func.BodySpan
}

// functionEverHandles reports whether any release or transfer for the
// symbol exists anywhere in the function.
func functionEverHandles(events map[int][]resEvent, a resEvent) bool {
	for _, evs := range events {
		for _, ev := range evs {
			if ev.sym != a.sym {
				continue
			}
			if ev.kind == evRelease && ev.family == a.family {
				return true
			}
			if ev.kind == evTransfer {
				return true
			}
		}
	}
	return false
}

// collectEvents scans each block's statements for acquisitions,
// releases, ownership-transferring returns, and escapes.
func collectEvents(rc *Context, g *cfg.Graph) map[int][]resEvent {
	toks := rc.Tokens
	events := make(map[int][]resEvent)
	add := func(b cfg.BlockID, ev resEvent) {
		events[int(b)] = append(events[int(b)], ev)
	}

	for _, b := range g.Blocks {
		for _, idx := range b.Stmts {
			s := g.StmtAt(idx)

			if s.Kind == parser.StmtReturn {
				// Returning the symbol hands ownership to the caller.
				for i := s.First + 1; i <= s.Last && i < len(toks); i++ {
					if toks[i].Kind == token.Ident {
						add(b.ID, resEvent{kind: evTransfer, sym: toks[i].Text, stmtIdx: idx, span: s.Span})
					}
				}
				continue
			}
			if s.Kind != parser.StmtExpr && s.Kind != parser.StmtDecl {
				continue
			}

			for _, call := range callSitesIn(toks, s.First, s.Last) {
				if fam, ok := acquireFamily[call.Name]; ok {
					if sym, ok := assignTarget(toks, s, call.NameIdx); ok {
						add(b.ID, resEvent{
							kind: evAcquire, sym: sym, family: fam,
							stmtIdx: idx, span: toks[call.NameIdx].Span,
						})
					}
					continue
				}
				if fam, ok := releaseFamily[call.Name]; ok {
					args := argRanges(toks, call.LParen)
					if len(args) == 1 {
						if sym, at, ok := soleIdent(toks, args[0]); ok {
							add(b.ID, resEvent{
								kind: evRelease, sym: sym, family: fam,
								stmtIdx: idx, span: toks[at].Span,
							})
						}
					}
					continue
				}
				if !nonOwningCalls[call.Name] {
					// Unknown callee: passing the symbol escapes it.
					for _, arg := range argRanges(toks, call.LParen) {
						if sym, _, ok := soleIdent(toks, arg); ok {
							add(b.ID, resEvent{kind: evTransfer, sym: sym, stmtIdx: idx, span: s.Span})
						}
					}
				}
			}

			// Storing the symbol through a member or dereference
			// transfers ownership to the structure.
			if sym, ok := storedAway(toks, s); ok {
				add(b.ID, resEvent{kind: evTransfer, sym: sym, stmtIdx: idx, span: s.Span})
			}
		}
	}
	return events
}

// assignTarget finds the identifier the call's result lands in: the
// pattern `name = call(...)` immediately left of the callee.
func assignTarget(toks []token.Token, s *parser.Stmt, nameIdx int) (string, bool) {
	i := nameIdx - 1
	for i > s.First && toks[i].IsComment() {
		i--
	}
	if i <= s.First || toks[i].Kind != token.Assign {
		return "", false
	}
	i--
	for i >= s.First && toks[i].IsComment() {
		i--
	}
	if i < s.First || toks[i].Kind != token.Ident {
		return "", false
	}
	return toks[i].Text, true
}

// storedAway matches `lhs->field = sym;`, `lhs.field = sym;` and
// `*lhs = sym;` statements.
func storedAway(toks []token.Token, s *parser.Stmt) (string, bool) {
	assign := -1
	for i := s.First; i <= s.Last && i < len(toks); i++ {
		if toks[i].Kind == token.Assign {
			assign = i
			break
		}
	}
	if assign < 0 {
		return "", false
	}
	lhsIndirect := false
	for i := s.First; i < assign; i++ {
		switch toks[i].Kind {
		case token.Arrow, token.Dot:
			lhsIndirect = true
		case token.Star:
			if i == s.First {
				lhsIndirect = true
			}
		}
	}
	if !lhsIndirect {
		return "", false
	}
	rhs := -1
	for i := assign + 1; i <= s.Last && i < len(toks); i++ {
		if toks[i].IsComment() {
			continue
		}
		if toks[i].Kind == token.Semicolon {
			break
		}
		if rhs >= 0 {
			return "", false
		}
		rhs = i
	}
	if rhs < 0 || toks[rhs].Kind != token.Ident {
		return "", false
	}
	return toks[rhs].Text, true
}
