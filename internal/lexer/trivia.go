package lexer

import (
	"cstrict/internal/token"
)

// collectLeadingTrivia gathers consecutive whitespace before a token.
// Runs of spaces/tabs coalesce into one TriviaSpace, runs of newlines into
// one TriviaNewline, and a backslash-newline splice becomes
// TriviaContinuation. Comments and directives are NOT trivia here; rules
// inspect their content, so they come out of Next as real tokens.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		b := lx.cursor.Peek()

		if b == ' ' || b == '\t' || b == '\r' {
			for {
				b2 := lx.cursor.Peek()
				if b2 != ' ' && b2 != '\t' && b2 != '\r' {
					break
				}
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaSpace,
				Span: sp,
				Text: lx.textFrom(sp),
			})
			continue
		}

		if b == '\n' {
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaNewline,
				Span: sp,
				Text: lx.textFrom(sp),
			})
			continue
		}

		if b == '\\' && lx.cursor.PeekAt(1) == '\n' {
			lx.cursor.Bump()
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			lx.hold = append(lx.hold, token.Trivia{
				Kind: token.TriviaContinuation,
				Span: sp,
				Text: lx.textFrom(sp),
			})
			continue
		}

		break
	}
}
