package parser

import (
	"strings"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

// handleDirective classifies the preprocessor token at index i, maintains
// the conditional nesting stack, and records macro definitions.
func (p *Parser) handleDirective(i int) {
	tok := p.at(i)
	kind, word, rest := classifyDirective(tok.Text)

	d := Directive{
		Kind:  kind,
		Span:  tok.Span,
		Text:  tok.Text,
		Depth: len(p.condStack),
	}

	switch kind {
	case DirIf, DirIfdef, DirIfndef:
		d.Cond = rest
		p.condStack = append(p.condStack, word+" "+rest)
		if len(p.condStack) > p.unit.MaxCondDepth {
			p.unit.MaxCondDepth = len(p.condStack)
		}
	case DirElif, DirElse:
		d.Cond = rest
		if len(p.condStack) > 0 {
			d.Depth = len(p.condStack) - 1
		}
	case DirEndif:
		if len(p.condStack) == 0 {
			diag.ReportInfo(p.reporter, diag.SynDanglingEndif, tok.Span,
				"#endif without matching #if").Emit()
		} else {
			p.condStack = p.condStack[:len(p.condStack)-1]
			d.Depth = len(p.condStack)
		}
	case DirDefine:
		p.recordMacro(tok.Span, tok.Text, rest)
	}

	p.unit.Directives = append(p.unit.Directives, d)
}

// classifyDirective splits "#  word rest" into its kind, the word, and the
// remaining text.
func classifyDirective(text string) (DirectiveKind, string, string) {
	body := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	word := body
	rest := ""
	if idx := strings.IndexAny(body, " \t("); idx >= 0 {
		word = body[:idx]
		rest = strings.TrimSpace(body[idx:])
	}
	switch word {
	case "include":
		return DirInclude, word, rest
	case "define":
		return DirDefine, word, rest
	case "undef":
		return DirUndef, word, rest
	case "if":
		return DirIf, word, rest
	case "ifdef":
		return DirIfdef, word, rest
	case "ifndef":
		return DirIfndef, word, rest
	case "elif":
		return DirElif, word, rest
	case "else":
		return DirElse, word, rest
	case "endif":
		return DirEndif, word, rest
	case "pragma":
		return DirPragma, word, rest
	case "error":
		return DirError, word, rest
	}
	return DirOther, word, rest
}

// recordMacro extracts the macro name from a #define line and records it
// as a file-scope declaration. The name span points into the directive.
func (p *Parser) recordMacro(dirSpan source.Span, text, rest string) {
	name := rest
	for idx, r := range rest {
		if !isMacroNameRune(r, idx == 0) {
			name = rest[:idx]
			break
		}
	}
	if name == "" {
		return
	}

	nameOff := strings.Index(text, name)
	nameSpan := dirSpan
	if nameOff >= 0 {
		nameSpan = source.Span{
			File:  dirSpan.File,
			Start: dirSpan.Start + uint32(nameOff),
			End:   dirSpan.Start + uint32(nameOff+len(name)),
		}
	}

	p.unit.Decls = append(p.unit.Decls, &Decl{
		Kind:     DeclMacro,
		Name:     name,
		NameSpan: nameSpan,
		Span:     dirSpan,
		Scope:    ScopeGlobal,
	})
}

func isMacroNameRune(r rune, first bool) bool {
	if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	return !first && r >= '0' && r <= '9'
}
