package parser

import (
	"cstrict/internal/token"
)

// parseBody walks a function body starting at its '{' and appends the flat
// statement list. Returns the index just past the closing '}'.
func (p *Parser) parseBody(fn *Function, i int) int {
	depth := 0
	for {
		t := p.at(i)
		switch t.Kind {
		case token.EOF:
			return i

		case token.LineComment, token.BlockComment:
			i++

		case token.Directive:
			p.handleDirective(i)
			p.appendStmt(fn, Stmt{Kind: StmtDirective, Span: t.Span, First: i, Last: i})
			i++

		case token.LBrace:
			depth++
			p.appendStmt(fn, Stmt{Kind: StmtBlockStart, Span: t.Span, First: i, Last: i})
			i++

		case token.RBrace:
			depth--
			p.appendStmt(fn, Stmt{Kind: StmtBlockEnd, Span: t.Span, First: i, Last: i})
			i++
			if depth <= 0 {
				return i
			}

		case token.KwIf, token.KwSwitch:
			i = p.parseHeaderStmt(fn, i, StmtCond)

		case token.KwElse:
			p.appendStmt(fn, Stmt{Kind: StmtCond, Span: t.Span, First: i, Last: i, Head: token.KwElse})
			i++

		case token.KwFor:
			i = p.parseHeaderStmt(fn, i, StmtLoop)

		case token.KwWhile:
			i = p.parseWhile(fn, i)

		case token.KwDo:
			p.appendStmt(fn, Stmt{Kind: StmtLoop, Span: t.Span, First: i, Last: i, Head: token.KwDo})
			p.pendingDo++
			i++

		case token.KwCase:
			i = p.parseCase(fn, i)

		case token.KwDefault:
			last := p.sig(i + 1) // ':'
			p.appendStmt(fn, Stmt{
				Kind: StmtCase, Span: p.spanBetween(i, last),
				First: i, Last: last, Label: "default",
			})
			i = last + 1

		case token.KwReturn:
			first := i
			i = p.skipToSemicolon(i)
			p.appendStmt(fn, Stmt{Kind: StmtReturn, Span: p.spanBetween(first, i-1), First: first, Last: i - 1})

		case token.KwGoto:
			first := i
			nameIdx := p.sig(i + 1)
			label := ""
			if p.at(nameIdx).Kind == token.Ident {
				label = p.at(nameIdx).Text
			}
			i = p.skipToSemicolon(nameIdx)
			p.appendStmt(fn, Stmt{
				Kind: StmtGoto, Span: p.spanBetween(first, i-1),
				First: first, Last: i - 1, Label: label,
			})

		case token.KwBreak:
			first := i
			i = p.skipToSemicolon(i)
			p.appendStmt(fn, Stmt{Kind: StmtBreak, Span: p.spanBetween(first, i-1), First: first, Last: i - 1})

		case token.KwContinue:
			first := i
			i = p.skipToSemicolon(i)
			p.appendStmt(fn, Stmt{Kind: StmtContinue, Span: p.spanBetween(first, i-1), First: first, Last: i - 1})

		case token.Semicolon:
			// Empty statement.
			p.appendStmt(fn, Stmt{Kind: StmtExpr, Span: t.Span, First: i, Last: i})
			i++

		case token.Ident:
			if p.at(p.sig(i+1)).Kind == token.Colon && !p.identLooksLikeExprStart(i) {
				last := p.sig(i + 1)
				p.appendStmt(fn, Stmt{
					Kind: StmtLabel, Span: p.spanBetween(i, last),
					First: i, Last: last, Label: t.Text,
				})
				i = last + 1
				continue
			}
			if p.looksLikeDeclStart(i) {
				i = p.parseLocalDecl(fn, i)
			} else {
				i = p.parseExprStmt(fn, i)
			}

		default:
			if t.IsTypeKeyword() {
				i = p.parseLocalDecl(fn, i)
			} else {
				i = p.parseExprStmt(fn, i)
			}
		}
	}
}

func (p *Parser) appendStmt(fn *Function, s Stmt) {
	if len(p.condStack) > 0 {
		s.CondStack = append([]string(nil), p.condStack...)
	}
	fn.Body = append(fn.Body, s)
}

// identLooksLikeExprStart filters the rare non-label "ident :" shapes.
// At statement position the only such shape is inside a ternary, which
// cannot start a statement, so this stays permissive.
func (p *Parser) identLooksLikeExprStart(int) bool {
	return false
}

// looksLikeDeclStart decides whether an identifier at statement position
// opens a declaration: "TYPE name", "TYPE *name", "TYPE **name".
func (p *Parser) looksLikeDeclStart(i int) bool {
	j := p.sig(i + 1)
	for p.at(j).Kind == token.Star {
		j = p.sig(j + 1)
	}
	if p.at(j).Kind != token.Ident {
		return false
	}
	after := p.sig(j + 1)
	switch p.at(after).Kind {
	case token.Assign, token.Semicolon, token.Comma, token.LBracket:
		return true
	default:
		return false
	}
}

// parseHeaderStmt consumes "<kw> ( ... )" as one statement.
func (p *Parser) parseHeaderStmt(fn *Function, i int, kind StmtKind) int {
	first := i
	head := p.at(i).Kind
	j := p.sig(i + 1)
	if p.at(j).Kind != token.LParen {
		i = p.skipToSemicolon(i)
		p.appendStmt(fn, Stmt{Kind: StmtOpaque, Span: p.spanBetween(first, i-1), First: first, Last: i - 1})
		p.reportOpaque(first, i-1)
		return i
	}
	end := p.skipBalanced(j, token.LParen, token.RParen)
	p.appendStmt(fn, Stmt{
		Kind: kind, Span: p.spanBetween(first, end-1),
		First: first, Last: end - 1, Head: head,
	})
	return end
}

// parseWhile distinguishes a while loop from a do-while tail: the tail is
// "while ( ... ) ;" with a pending do.
func (p *Parser) parseWhile(fn *Function, i int) int {
	first := i
	j := p.sig(i + 1)
	if p.at(j).Kind != token.LParen {
		i = p.skipToSemicolon(i)
		p.appendStmt(fn, Stmt{Kind: StmtOpaque, Span: p.spanBetween(first, i-1), First: first, Last: i - 1})
		p.reportOpaque(first, i-1)
		return i
	}
	end := p.skipBalanced(j, token.LParen, token.RParen)
	tail := false
	if p.pendingDo > 0 && p.at(p.sig(end)).Kind == token.Semicolon {
		tail = true
		p.pendingDo--
		end = p.sig(end) + 1
	}
	p.appendStmt(fn, Stmt{
		Kind: StmtLoop, Span: p.spanBetween(first, end-1),
		First: first, Last: end - 1, Head: token.KwWhile, Tail: tail,
	})
	return end
}

func (p *Parser) parseCase(fn *Function, i int) int {
	first := i
	j := i + 1
	for p.at(j).Kind != token.EOF && p.at(j).Kind != token.Colon {
		j++
	}
	label := ""
	for k := p.sig(first + 1); k < j; k = p.sig(k + 1) {
		label += p.at(k).Text
	}
	p.appendStmt(fn, Stmt{
		Kind: StmtCase, Span: p.spanBetween(first, j),
		First: first, Last: j, Label: label,
	})
	return j + 1
}

// parseLocalDecl parses a declaration statement and records its
// declarators on the statement.
func (p *Parser) parseLocalDecl(fn *Function, i int) int {
	start := i
	j, info := p.parseSpecifiers(i)
	if p.at(j).Kind != token.Ident {
		return p.opaqueToSemicolon(fn, start)
	}
	nameIdx := j
	j = p.sig(j + 1)

	var decls []*Decl
	end := p.parseVarDecls(start, nameIdx, j, info, ScopeLocal, &decls)
	p.appendStmt(fn, Stmt{
		Kind: StmtDecl, Span: p.spanBetween(start, end-1),
		First: start, Last: end - 1, Decls: decls,
	})
	return end
}

// parseExprStmt consumes a balanced run up to ';'. Hitting a brace or EOF
// first degrades the run to an opaque statement.
func (p *Parser) parseExprStmt(fn *Function, i int) int {
	start := i
	depth := 0
	unbalanced := false
	for {
		switch p.at(i).Kind {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
			// A closer with no matching opener means the run is not
			// an expression; keep scanning to the ';' but degrade it.
			if depth < 0 {
				unbalanced = true
			}
		case token.Semicolon:
			if depth <= 0 {
				if unbalanced {
					p.appendStmt(fn, Stmt{
						Kind: StmtOpaque, Span: p.spanBetween(start, i),
						First: start, Last: i,
					})
					p.reportOpaque(start, i)
					return i + 1
				}
				p.appendStmt(fn, Stmt{
					Kind: StmtExpr, Span: p.spanBetween(start, i),
					First: start, Last: i,
				})
				return i + 1
			}
		case token.LBrace, token.RBrace, token.EOF:
			p.appendStmt(fn, Stmt{
				Kind: StmtOpaque, Span: p.spanBetween(start, max(start, i-1)),
				First: start, Last: max(start, i - 1),
			})
			p.reportOpaque(start, max(start, i-1))
			return i
		}
		i++
	}
}

func (p *Parser) opaqueToSemicolon(fn *Function, start int) int {
	end := p.skipToSemicolon(start)
	p.appendStmt(fn, Stmt{
		Kind: StmtOpaque, Span: p.spanBetween(start, end-1),
		First: start, Last: end - 1,
	})
	p.reportOpaque(start, end-1)
	return end
}

