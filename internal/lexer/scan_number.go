package lexer

import (
	"cstrict/internal/token"
)

// scanNumber handles decimal, hex, and octal integers plus floats, with C
// integer/float suffixes. No value decoding happens here; rules only need
// the lexeme and its kind.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if lx.cursor.Peek() == '0' && (lx.cursor.PeekAt(1) == 'x' || lx.cursor.PeekAt(1) == 'X') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		for !lx.cursor.EOF() && isHex(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		lx.eatIntSuffix()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: kind, Span: sp, Text: lx.textFrom(sp)}
	}

	for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	} else if lx.cursor.Peek() == '.' && lx.cursor.Off > uint32(start) {
		// "1." style float
		kind = token.FloatLit
		lx.cursor.Bump()
	}

	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			kind = token.FloatLit
			lx.cursor.Bump()
			if b2 := lx.cursor.Peek(); b2 == '+' || b2 == '-' {
				lx.cursor.Bump()
			}
			for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}

	if kind == token.FloatLit {
		if b := lx.cursor.Peek(); b == 'f' || b == 'F' || b == 'l' || b == 'L' {
			lx.cursor.Bump()
		}
	} else {
		lx.eatIntSuffix()
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.textFrom(sp)}
}

func (lx *Lexer) eatIntSuffix() {
	for {
		b := lx.cursor.Peek()
		if b == 'u' || b == 'U' || b == 'l' || b == 'L' {
			lx.cursor.Bump()
			continue
		}
		return
	}
}
