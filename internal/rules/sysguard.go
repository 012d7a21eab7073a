package rules

import (
	"cstrict/internal/cfg"
	"cstrict/internal/diag"
	"cstrict/internal/token"
)

// SystemGuardRule requires every system() call to decompose the exit
// status: both WIFEXITED and WEXITSTATUS must appear in the remainder of
// the call's basic block or in its sole successor, before control
// transfers anywhere else.
type SystemGuardRule struct{}

func (SystemGuardRule) Code() diag.Code    { return diag.SystemMissingGuard }
func (SystemGuardRule) Codes() []diag.Code { return []diag.Code{diag.SystemMissingGuard} }
func (SystemGuardRule) Name() string       { return "system-guard" }
func (SystemGuardRule) Needs() Needs       { return NeedsTokens | NeedsCFG }

var statusMacros = []string{"WIFEXITED", "WEXITSTATUS"}

func (SystemGuardRule) Check(rc *Context) {
	for i := range rc.Unit.Funcs {
		g := rc.Graph(i)
		if g == nil {
			continue
		}
		checkSystemCalls(rc, g)
	}
}

func checkSystemCalls(rc *Context, g *cfg.Graph) {
	toks := rc.Tokens
	for _, b := range g.Blocks {
		for si, idx := range b.Stmts {
			s := g.StmtAt(idx)
			for _, call := range callSitesIn(toks, s.First, s.Last) {
				if call.Name != "system" {
					continue
				}
				if systemGuarded(rc, g, b, si) {
					continue
				}
				diag.ReportMust(rc.R, diag.SystemMissingGuard, toks[call.NameIdx].Span,
					"system() result must be checked with WIFEXITED and WEXITSTATUS").Emit()
			}
		}
	}
}

// systemGuarded scans the statements after the call in the same block,
// then the sole successor block when the current block branches exactly
// one way.
func systemGuarded(rc *Context, g *cfg.Graph, b *cfg.Block, callStmt int) bool {
	found := make(map[string]bool)
	scan := func(first, last int) {
		for i := first; i <= last && i < len(rc.Tokens); i++ {
			if rc.Tokens[i].Kind != token.Ident {
				continue
			}
			for _, m := range statusMacros {
				if rc.Tokens[i].Text == m {
					found[m] = true
				}
			}
		}
	}
	for _, idx := range b.Stmts[callStmt:] {
		s := g.StmtAt(idx)
		scan(s.First, s.Last)
	}
	if len(b.Succs) == 1 {
		next := g.Block(b.Succs[0])
		for _, idx := range next.Stmts {
			s := g.StmtAt(idx)
			scan(s.First, s.Last)
		}
	}
	for _, m := range statusMacros {
		if !found[m] {
			return false
		}
	}
	return true
}
