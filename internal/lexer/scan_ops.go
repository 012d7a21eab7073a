package lexer

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/token"
)

// scanOperatorOrPunct lexes operators and punctuation, longest match first.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	b := lx.cursor.Bump()
	kind := token.Invalid

	switch b {
	case '+':
		kind = token.Plus
		if lx.cursor.Eat('+') {
			kind = token.PlusPlus
		} else if lx.cursor.Eat('=') {
			kind = token.PlusAssign
		}
	case '-':
		kind = token.Minus
		if lx.cursor.Eat('-') {
			kind = token.MinusMinus
		} else if lx.cursor.Eat('=') {
			kind = token.MinusAssign
		} else if lx.cursor.Eat('>') {
			kind = token.Arrow
		}
	case '*':
		kind = token.Star
		if lx.cursor.Eat('=') {
			kind = token.StarAssign
		}
	case '/':
		kind = token.Slash
		if lx.cursor.Eat('=') {
			kind = token.SlashAssign
		}
	case '%':
		kind = token.Percent
		if lx.cursor.Eat('=') {
			kind = token.PercentAssign
		}
	case '=':
		kind = token.Assign
		if lx.cursor.Eat('=') {
			kind = token.EqEq
		}
	case '!':
		kind = token.Bang
		if lx.cursor.Eat('=') {
			kind = token.BangEq
		}
	case '<':
		kind = token.Lt
		if lx.cursor.Eat('<') {
			kind = token.Shl
			if lx.cursor.Eat('=') {
				kind = token.ShlAssign
			}
		} else if lx.cursor.Eat('=') {
			kind = token.LtEq
		}
	case '>':
		kind = token.Gt
		if lx.cursor.Eat('>') {
			kind = token.Shr
			if lx.cursor.Eat('=') {
				kind = token.ShrAssign
			}
		} else if lx.cursor.Eat('=') {
			kind = token.GtEq
		}
	case '&':
		kind = token.Amp
		if lx.cursor.Eat('&') {
			kind = token.AndAnd
		} else if lx.cursor.Eat('=') {
			kind = token.AmpAssign
		}
	case '|':
		kind = token.Pipe
		if lx.cursor.Eat('|') {
			kind = token.OrOr
		} else if lx.cursor.Eat('=') {
			kind = token.PipeAssign
		}
	case '^':
		kind = token.Caret
		if lx.cursor.Eat('=') {
			kind = token.CaretAssign
		}
	case '~':
		kind = token.Tilde
	case '?':
		kind = token.Question
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
		if lx.cursor.Peek() == '.' && lx.cursor.PeekAt(1) == '.' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			kind = token.Ellipsis
		}
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '#':
		// '#' outside a line-start position (stringize or token paste
		// inside a macro body line is handled by the directive scanner,
		// so this is stray). Keep it as Invalid so the byte survives
		// the round trip.
		kind = token.Invalid
	}

	sp := lx.cursor.SpanFrom(start)
	text := lx.textFrom(sp)

	if kind == token.Invalid {
		diag.ReportShould(lx.reporter, diag.LexUnknownChar, sp,
			fmt.Sprintf("unexpected character %q", text)).Emit()
	}
	return token.Token{Kind: kind, Span: sp, Text: text}
}
