package lexer

import (
	"cstrict/internal/diag"
	"cstrict/internal/token"
)

// scanString lexes a double-quoted literal. An unterminated literal is
// reported at its opening quote and the token is cut at the end of the
// line so lexing can continue (partial-result policy).
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' {
			lx.cursor.Bump()
			if !lx.cursor.EOF() {
				lx.cursor.Bump()
			}
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		if b == '"' {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.textFrom(sp)}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	diag.ReportMust(lx.reporter, diag.LexUnterminatedString, sp,
		"unterminated string literal").Emit()
	return token.Token{Kind: token.StringLit, Span: sp, Text: lx.textFrom(sp)}
}

// scanChar lexes a character literal with the same recovery behavior.
func (lx *Lexer) scanChar() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote

	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' {
			lx.cursor.Bump()
			if !lx.cursor.EOF() {
				lx.cursor.Bump()
			}
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		if b == '\'' {
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.CharLit, Span: sp, Text: lx.textFrom(sp)}
		}
	}

	sp := lx.cursor.SpanFrom(start)
	diag.ReportMust(lx.reporter, diag.LexUnterminatedChar, sp,
		"unterminated character literal").Emit()
	return token.Token{Kind: token.CharLit, Span: sp, Text: lx.textFrom(sp)}
}

// scanLineComment lexes // to the end of line, delimiters included.
func (lx *Lexer) scanLineComment() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.LineComment, Span: sp, Text: lx.textFrom(sp)}
}

// scanBlockComment lexes /* ... */. C block comments do not nest. An
// unterminated comment is reported at its opening delimiter and the token
// swallows the rest of the file.
func (lx *Lexer) scanBlockComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '/'
	lx.cursor.Bump() // '*'

	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '*' && lx.cursor.PeekAt(1) == '/' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.BlockComment, Span: sp, Text: lx.textFrom(sp)}
		}
		lx.cursor.Bump()
	}

	sp := lx.cursor.SpanFrom(start)
	open := sp
	open.End = open.Start + 2
	diag.ReportMust(lx.reporter, diag.LexUnterminatedBlockComment,
		open, "unterminated block comment").Emit()
	return token.Token{Kind: token.BlockComment, Span: sp, Text: lx.textFrom(sp)}
}

// scanDirective lexes a whole preprocessor line starting at '#', following
// backslash-newline continuations. The trailing newline stays outside the
// token so the next token's trivia keeps it.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			continue
		}
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Directive, Span: sp, Text: lx.textFrom(sp)}
}
