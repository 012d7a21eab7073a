package symbols

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/token"
)

// Build constructs the symbol table for one translation unit in two
// passes: file scope first (so functions may call forward), then each
// function body with its nested block scopes. Identifier uses that
// resolve to nothing are reported once per name at info severity, since
// headers are not expanded and absence is expected, not proven.
func Build(unit *parser.Unit, r diag.Reporter) *Table {
	b := &bldr{
		t:    newTable(unit.FileID),
		unit: unit,
		r:    r,
		seen: make(map[string]bool),
	}
	for _, e := range preludeEntries() {
		b.t.add(b.t.Universe, &Symbol{Name: e.Name, Kind: e.Kind, Flags: e.Flags})
	}
	b.fileScope()
	for _, fn := range unit.Funcs {
		b.function(fn)
	}
	return b.t
}

type bldr struct {
	t    *Table
	unit *parser.Unit
	r    diag.Reporter
	seen map[string]bool
}

func (b *bldr) fileScope() {
	for _, d := range b.unit.Decls {
		kind := SymbolInvalid
		switch d.Kind {
		case parser.DeclFunc:
			kind = SymbolFunction
		case parser.DeclVar:
			kind = SymbolVar
		case parser.DeclTypedef, parser.DeclTypedefStruct,
			parser.DeclTypedefUnion, parser.DeclTypedefEnum:
			kind = SymbolTypedef
		case parser.DeclMacro:
			kind = SymbolMacro
		default:
			continue
		}
		if d.Name == "" {
			continue
		}
		b.t.add(b.t.File, &Symbol{
			Name: d.Name, Kind: kind, Flags: flagsOf(d),
			Span: d.NameSpan, Decl: d,
		})
	}
}

func (b *bldr) function(fn *parser.Function) {
	fnScope := b.t.newScope(ScopeFunction, b.t.File)
	b.t.FuncScopes[fn.Decl.Name] = fnScope
	for _, p := range fn.Params {
		if p.Name == "" {
			continue
		}
		b.t.add(fnScope, &Symbol{
			Name: p.Name, Kind: SymbolParam, Flags: flagsOf(p),
			Span: p.NameSpan, Decl: p,
		})
	}

	// Labels are function-scoped and may be referenced before their
	// definition, so collect them before walking statements.
	for i := range fn.Body {
		s := &fn.Body[i]
		if s.Kind == parser.StmtLabel && s.Label != "" {
			b.t.add(fnScope, &Symbol{
				Name: s.Label, Kind: SymbolLabel, Span: s.Span,
			})
		}
	}

	cur := fnScope
	var stack []ScopeID
	for i := range fn.Body {
		s := &fn.Body[i]
		switch s.Kind {
		case parser.StmtBlockStart:
			stack = append(stack, cur)
			cur = b.t.newScope(ScopeBlock, cur)
		case parser.StmtBlockEnd:
			if n := len(stack); n > 0 {
				cur = stack[n-1]
				stack = stack[:n-1]
			}
		case parser.StmtDecl:
			for _, d := range s.Decls {
				if d.Name == "" {
					continue
				}
				b.t.add(cur, &Symbol{
					Name: d.Name, Kind: SymbolVar, Flags: flagsOf(d),
					Span: d.NameSpan, Decl: d,
				})
			}
			b.resolveStmt(s, cur)
		case parser.StmtExpr, parser.StmtCond, parser.StmtLoop, parser.StmtReturn:
			b.resolveStmt(s, cur)
		}
	}
}

// resolveStmt checks the identifier tokens of one statement against the
// scope chain. Member accesses and label-position names are skipped;
// the skeleton has no struct layout to check them against.
func (b *bldr) resolveStmt(s *parser.Stmt, scope ScopeID) {
	toks := b.unit.Tokens
	for i := s.First; i <= s.Last && i < len(toks); i++ {
		tk := &toks[i]
		if tk.Kind != token.Ident {
			continue
		}
		if i > s.First {
			prev := toks[i-1].Kind
			if prev == token.Dot || prev == token.Arrow {
				continue
			}
		}
		if s.Kind == parser.StmtDecl && b.isDeclaredName(s, tk.Text) {
			continue
		}
		if b.typeWord(s, tk.Text) {
			continue
		}
		if b.t.Resolve(scope, tk.Text) != nil {
			continue
		}
		if b.seen[tk.Text] {
			continue
		}
		b.seen[tk.Text] = true
		diag.ReportInfo(b.r, diag.NamingUnresolved, tk.Span,
			fmt.Sprintf("identifier %q is not declared in this file", tk.Text)).Emit()
	}
}

func (b *bldr) isDeclaredName(s *parser.Stmt, name string) bool {
	for _, d := range s.Decls {
		if d.Name == name {
			return true
		}
	}
	return false
}

// typeWord reports whether the identifier appears inside a declaration's
// specifier text, e.g. a typedef name used as a type.
func (b *bldr) typeWord(s *parser.Stmt, name string) bool {
	for _, d := range s.Decls {
		if d.TypeText == name {
			return true
		}
		for _, w := range splitWords(d.TypeText) {
			if w == name {
				return true
			}
		}
	}
	return false
}

func splitWords(s string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		word := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if word && start < 0 {
			start = i
		}
		if !word && start >= 0 {
			out = append(out, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
