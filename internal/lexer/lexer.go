package lexer

import (
	"strings"

	"cstrict/internal/diag"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

// Lexer turns a C source buffer into a token stream. Comments and
// preprocessor directives are emitted as tokens; whitespace is attached
// to the following token as leading trivia, so the stream covers every
// input byte and can be reassembled losslessly.
//
// Lexical errors (unterminated literals and comments) are reported through
// the Reporter and lexing continues on a best-effort basis.
type Lexer struct {
	file     *source.File
	cursor   Cursor
	reporter diag.Reporter
	look     *token.Token
	hold     []token.Trivia
}

// New creates a lexer over file, reporting lexical problems to r.
func New(file *source.File, r diag.Reporter) *Lexer {
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Lexer{
		file:     file,
		cursor:   NewCursor(file),
		reporter: r,
	}
}

// Tokenize lexes the whole file. The final token is always EOF; trailing
// whitespace hangs off it as leading trivia.
func Tokenize(file *source.File, r diag.Reporter) []token.Token {
	lx := New(file, r)
	out := make([]token.Token, 0, len(file.Content)/6)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// Reconstruct reassembles the original buffer from a token stream.
func Reconstruct(tokens []token.Token) []byte {
	var sb strings.Builder
	for _, tok := range tokens {
		for _, tr := range tok.Leading {
			sb.WriteString(tr.Text)
		}
		sb.WriteString(tok.Text)
	}
	return []byte(sb.String())
}

// Next returns the next token with its leading trivia attached.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		tok := token.Token{
			Kind: token.EOF,
			Span: lx.emptySpan(),
			Text: "",
		}
		tok.Leading = lx.hold
		lx.hold = nil
		return tok
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case ch == '/' && lx.peekSecond() == '/':
		tok = lx.scanLineComment()

	case ch == '/' && lx.peekSecond() == '*':
		tok = lx.scanBlockComment()

	case ch == '#' && lx.atLineStart():
		tok = lx.scanDirective()

	case isIdentStartByte(ch):
		tok = lx.scanIdentOrKeyword()

	case isDec(ch):
		tok = lx.scanNumber()

	case ch == '.' && isDec(lx.cursor.PeekAt(1)):
		tok = lx.scanNumber()

	case ch == '"':
		tok = lx.scanString()

	case ch == '\'':
		tok = lx.scanChar()

	default:
		tok = lx.scanOperatorOrPunct()
	}

	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) peekSecond() byte {
	return lx.cursor.PeekAt(1)
}

// atLineStart reports whether only spaces and tabs separate the cursor
// from the previous newline. Preprocessor directives are only recognized
// in that position.
func (lx *Lexer) atLineStart() bool {
	off := lx.cursor.Off
	for off > 0 {
		b := lx.file.Content[off-1]
		if b == '\n' {
			return true
		}
		if b != ' ' && b != '\t' {
			return false
		}
		off--
	}
	return true
}

func (lx *Lexer) textFrom(sp source.Span) string {
	return string(lx.file.Content[sp.Start:sp.End])
}
