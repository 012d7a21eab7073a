package parser

import (
	"cstrict/internal/diag"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

// Parser consumes a token stream and produces a Unit. It never aborts:
// constructs it cannot classify become opaque statements or are skipped
// to the next safe synchronization point.
type Parser struct {
	file      *source.File
	toks      []token.Token
	reporter  diag.Reporter
	unit      *Unit
	condStack []string
	pendingDo int
}

// Parse builds the structural skeleton for one file.
func Parse(file *source.File, toks []token.Token, r diag.Reporter) *Unit {
	if r == nil {
		r = diag.NopReporter{}
	}
	p := &Parser{
		file:     file,
		toks:     toks,
		reporter: r,
		unit: &Unit{
			FileID: file.ID,
			Tokens: toks,
		},
	}
	p.parseTop()
	return p.unit
}

func (p *Parser) at(i int) token.Token {
	if i < 0 || i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

// sig returns the first non-comment token index at or after i.
func (p *Parser) sig(i int) int {
	for i < len(p.toks) {
		k := p.toks[i].Kind
		if k != token.LineComment && k != token.BlockComment {
			return i
		}
		i++
	}
	return len(p.toks) - 1
}

func (p *Parser) spanBetween(first, last int) source.Span {
	sp := p.at(first).Span
	return sp.Cover(p.at(last).Span)
}

// skipBalanced advances past a bracketed region. i must sit on the opening
// token; returns the index just after the matching close, or len(toks) if
// the file ends first.
func (p *Parser) skipBalanced(i int, open, close token.Kind) int {
	depth := 0
	for ; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		case token.EOF:
			return i
		}
	}
	return i
}

func (p *Parser) parseTop() {
	i := 0
	for p.at(i).Kind != token.EOF {
		switch p.at(i).Kind {
		case token.LineComment, token.BlockComment:
			i++
		case token.Directive:
			p.handleDirective(i)
			i++
		case token.KwTypedef:
			i = p.parseTypedef(i)
		case token.Semicolon:
			i++
		default:
			if p.at(i).IsTypeKeyword() || p.at(i).Kind == token.Ident {
				i = p.parseTopDecl(i)
			} else {
				i = p.skipOpaqueTop(i)
			}
		}
	}
}

// skipOpaqueTop recovers from an unclassifiable top-level construct by
// advancing to the next ';' or past a balanced brace region.
func (p *Parser) skipOpaqueTop(i int) int {
	start := i
	for p.at(i).Kind != token.EOF {
		switch p.at(i).Kind {
		case token.Semicolon:
			i++
			p.reportOpaque(start, i-1)
			return i
		case token.LBrace:
			i = p.skipBalanced(i, token.LBrace, token.RBrace)
			p.reportOpaque(start, i-1)
			return i
		default:
			i++
		}
	}
	p.reportOpaque(start, i)
	return i
}

func (p *Parser) reportOpaque(first, last int) {
	diag.ReportInfo(p.reporter, diag.SynOpaqueStmt, p.spanBetween(first, last),
		"construct could not be classified; kept as opaque").Emit()
}

// specInfo is the accumulated declaration specifier run.
type specInfo struct {
	words    []string
	isStatic bool
	isExtern bool
	isConst  bool
	ptr      int
}

// parseSpecifiers consumes storage classes, qualifiers, type keywords,
// struct/union/enum heads (with optional bodies), one optional typedef-name
// identifier, and leading '*'s. Returns the cursor position and the info.
// The cursor stops at what should be the declarator name.
func (p *Parser) parseSpecifiers(i int) (int, specInfo) {
	var info specInfo
	sawTypeWord := false
	for {
		i = p.sig(i)
		t := p.at(i)
		switch {
		case t.Kind == token.KwStatic:
			info.isStatic = true
			i++
		case t.Kind == token.KwExtern:
			info.isExtern = true
			i++
		case t.Kind == token.KwConst:
			info.isConst = true
			info.words = append(info.words, t.Text)
			i++
		case t.Kind == token.KwStruct || t.Kind == token.KwUnion || t.Kind == token.KwEnum:
			info.words = append(info.words, t.Text)
			i++
			i = p.sig(i)
			if p.at(i).Kind == token.Ident {
				info.words = append(info.words, p.at(i).Text)
				i++
				i = p.sig(i)
			}
			if p.at(i).Kind == token.LBrace {
				i = p.skipBalanced(i, token.LBrace, token.RBrace)
			}
			sawTypeWord = true
		case t.IsTypeKeyword():
			info.words = append(info.words, t.Text)
			sawTypeWord = true
			i++
		case t.Kind == token.Star:
			info.ptr++
			i++
		case t.Kind == token.Ident && !sawTypeWord:
			// Could be a typedef name or already the declarator. It is a
			// type word only if another identifier or '*' follows.
			next := p.sig(i + 1)
			if p.at(next).Kind == token.Ident || p.at(next).Kind == token.Star {
				info.words = append(info.words, t.Text)
				sawTypeWord = true
				i++
				continue
			}
			return i, info
		default:
			return i, info
		}
	}
}

// parseTopDecl handles a file-scope declaration: variable(s), function
// definition, or prototype.
func (p *Parser) parseTopDecl(i int) int {
	start := i
	j, info := p.parseSpecifiers(i)

	scope := ScopeGlobal
	if info.isStatic {
		scope = ScopeModule
	}

	// Function pointer variable: spec '(' '*' name ')' '(' params ')'.
	if p.at(j).Kind == token.LParen && p.at(p.sig(j+1)).Kind == token.Star {
		return p.parseFuncPtrDecl(start, j, info, scope)
	}

	if p.at(j).Kind != token.Ident {
		// Tagged struct/union/enum definition without declarator:
		// "struct foo { ... };"
		if p.at(j).Kind == token.Semicolon && len(info.words) > 0 {
			return j + 1
		}
		return p.skipOpaqueTop(start)
	}

	nameIdx := j
	j = p.sig(j + 1)

	if p.at(j).Kind == token.LParen {
		return p.parseFunction(start, nameIdx, j, info, scope)
	}

	// Variable declarator list.
	return p.parseVarDecls(start, nameIdx, j, info, scope, nil)
}

// parseVarDecls consumes "name [=init|[...]] (, [*]* name ...)* ;" and
// records one Decl per declarator. sink receives the declarations; when
// nil they go to the unit's file-scope list.
func (p *Parser) parseVarDecls(start, nameIdx, j int, info specInfo, scope ScopeKind, sink *[]*Decl) int {
	ptr := info.ptr
	record := func(nameIdx int, ptr int, last int) {
		d := &Decl{
			Kind:     DeclVar,
			Name:     p.at(nameIdx).Text,
			NameSpan: p.at(nameIdx).Span,
			Span:     p.spanBetween(start, last),
			Scope:    scope,
			TypeText: joinWords(info.words),
			PtrDepth: ptr,
			IsConst:  info.isConst,
			IsStatic: info.isStatic,
		}
		if sink != nil {
			*sink = append(*sink, d)
		} else {
			p.unit.Decls = append(p.unit.Decls, d)
		}
	}

	for {
		switch p.at(j).Kind {
		case token.LBracket:
			j = p.skipBalanced(j, token.LBracket, token.RBracket)
		case token.Assign:
			// Skip the initializer to the next ',' or ';' at depth 0.
			j++
			depth := 0
		init:
			for p.at(j).Kind != token.EOF {
				switch p.at(j).Kind {
				case token.LParen, token.LBrace, token.LBracket:
					depth++
				case token.RParen, token.RBrace, token.RBracket:
					depth--
				case token.Comma, token.Semicolon:
					if depth == 0 {
						break init
					}
				}
				j++
			}
		case token.Comma:
			record(nameIdx, ptr, j)
			j = p.sig(j + 1)
			ptr = 0
			for p.at(j).Kind == token.Star {
				ptr++
				j = p.sig(j + 1)
			}
			if p.at(j).Kind != token.Ident {
				return p.skipToSemicolon(j)
			}
			nameIdx = j
			j = p.sig(j + 1)
		case token.Semicolon:
			record(nameIdx, ptr, j)
			return j + 1
		case token.EOF:
			record(nameIdx, ptr, j)
			return j
		default:
			j++
		}
	}
}

func (p *Parser) skipToSemicolon(j int) int {
	for p.at(j).Kind != token.EOF && p.at(j).Kind != token.Semicolon {
		j++
	}
	return j + 1
}

// parseFuncPtrDecl handles "type (*name)(params);".
func (p *Parser) parseFuncPtrDecl(start, j int, info specInfo, scope ScopeKind) int {
	j = p.sig(j + 1) // past '('
	ptr := info.ptr
	for p.at(j).Kind == token.Star {
		ptr++
		j = p.sig(j + 1)
	}
	if p.at(j).Kind != token.Ident {
		return p.skipOpaqueTop(start)
	}
	nameIdx := j
	end := p.skipToSemicolon(j)
	p.unit.Decls = append(p.unit.Decls, &Decl{
		Kind:     DeclVar,
		Name:     p.at(nameIdx).Text,
		NameSpan: p.at(nameIdx).Span,
		Span:     p.spanBetween(start, end-1),
		Scope:    scope,
		TypeText: joinWords(info.words),
		PtrDepth: ptr,
		IsConst:  info.isConst,
		IsStatic: info.isStatic,
	})
	return end
}

// parseFunction handles a definition or prototype once the name and the
// opening paren are known.
func (p *Parser) parseFunction(start, nameIdx, parenIdx int, info specInfo, scope ScopeKind) int {
	paramsEnd := p.skipBalanced(parenIdx, token.LParen, token.RParen)
	decl := &Decl{
		Kind:     DeclFunc,
		Name:     p.at(nameIdx).Text,
		NameSpan: p.at(nameIdx).Span,
		Span:     p.spanBetween(start, paramsEnd-1),
		Scope:    scope,
		TypeText: joinWords(info.words),
		PtrDepth: info.ptr,
		IsConst:  info.isConst,
		IsStatic: info.isStatic,
	}
	p.unit.Decls = append(p.unit.Decls, decl)

	j := p.sig(paramsEnd)
	if p.at(j).Kind != token.LBrace {
		// Prototype (or something we cannot handle; sync at ';').
		if p.at(j).Kind == token.Semicolon {
			return j + 1
		}
		return p.skipToSemicolon(j)
	}

	fn := &Function{
		Decl:   decl,
		Params: p.parseParams(parenIdx+1, paramsEnd-1),
	}
	bodyEnd := p.parseBody(fn, j)
	fn.BodySpan = p.spanBetween(j, bodyEnd-1)
	decl.Span = decl.Span.Cover(fn.BodySpan)
	p.unit.Funcs = append(p.unit.Funcs, fn)
	return bodyEnd
}

// parseParams splits the token range (exclusive of the parens) on top-level
// commas. Each segment's last identifier is the parameter name.
func (p *Parser) parseParams(first, last int) []*Decl {
	var params []*Decl
	segStart := first
	depth := 0
	flush := func(segEnd int) {
		d := p.paramFromSegment(segStart, segEnd)
		if d != nil {
			params = append(params, d)
		}
	}
	for i := first; i < last; i++ {
		switch p.toks[i].Kind {
		case token.LParen, token.LBracket:
			depth++
		case token.RParen, token.RBracket:
			depth--
		case token.Comma:
			if depth == 0 {
				flush(i - 1)
				segStart = i + 1
			}
		}
	}
	if segStart <= last-1 {
		flush(last - 1)
	}
	return params
}

func (p *Parser) paramFromSegment(first, last int) *Decl {
	nameIdx := -1
	ptr := 0
	isConst := false
	var words []string
	for i := first; i <= last; i++ {
		t := p.toks[i]
		switch {
		case t.Kind == token.Star:
			ptr++
		case t.Kind == token.KwConst:
			isConst = true
			words = append(words, t.Text)
		case t.Kind == token.Ident:
			if nameIdx >= 0 {
				words = append(words, p.at(nameIdx).Text)
			}
			nameIdx = i
		case t.IsTypeKeyword():
			words = append(words, t.Text)
		}
	}
	if nameIdx < 0 {
		// "(void)" or unnamed parameter.
		return nil
	}
	return &Decl{
		Kind:     DeclParam,
		Name:     p.at(nameIdx).Text,
		NameSpan: p.at(nameIdx).Span,
		Span:     p.spanBetween(first, last),
		Scope:    ScopeLocal,
		TypeText: joinWords(words),
		PtrDepth: ptr,
		IsConst:  isConst,
	}
}

// parseTypedef handles "typedef ... NAME;" including struct/union/enum
// bodies. The declared name is the last identifier before the semicolon.
func (p *Parser) parseTypedef(i int) int {
	start := i
	kind := DeclTypedef
	j := p.sig(i + 1)
	switch p.at(j).Kind {
	case token.KwStruct:
		kind = DeclTypedefStruct
	case token.KwUnion:
		kind = DeclTypedefUnion
	case token.KwEnum:
		kind = DeclTypedefEnum
	}

	nameIdx := -1
	ptr := 0
	var words []string
	for p.at(j).Kind != token.EOF {
		switch p.at(j).Kind {
		case token.LBrace:
			j = p.skipBalanced(j, token.LBrace, token.RBrace)
			continue
		case token.LParen:
			// Function-pointer declarator: the name hides in "(*NAME)".
			if idx, stars := p.fnPtrName(j); idx >= 0 {
				if nameIdx >= 0 {
					words = append(words, p.at(nameIdx).Text)
				}
				nameIdx = idx
				ptr += stars
			}
			j = p.skipBalanced(j, token.LParen, token.RParen)
			continue
		case token.Star:
			ptr++
		case token.Ident:
			if nameIdx >= 0 {
				words = append(words, p.at(nameIdx).Text)
			}
			nameIdx = j
		case token.Semicolon:
			if nameIdx < 0 {
				p.reportOpaque(start, j)
				return j + 1
			}
			p.unit.Decls = append(p.unit.Decls, &Decl{
				Kind:     kind,
				Name:     p.at(nameIdx).Text,
				NameSpan: p.at(nameIdx).Span,
				Span:     p.spanBetween(start, j),
				Scope:    ScopeGlobal,
				TypeText: joinWords(words),
				PtrDepth: ptr,
			})
			return j + 1
		default:
			if p.at(j).IsTypeKeyword() {
				words = append(words, p.at(j).Text)
			}
		}
		j++
	}
	return j
}

// fnPtrName matches "( '*'+ NAME" at lparen and returns NAME's token
// index and the star count, or -1 when the group is not a declarator.
func (p *Parser) fnPtrName(lparen int) (int, int) {
	j := p.sig(lparen + 1)
	stars := 0
	for p.at(j).Kind == token.Star {
		stars++
		j = p.sig(j + 1)
	}
	if stars > 0 && p.at(j).Kind == token.Ident {
		return j, stars
	}
	return -1, 0
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += " "
		}
		out += w
	}
	return out
}
