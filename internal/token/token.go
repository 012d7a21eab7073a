package token

import (
	"cstrict/internal/source"
)

// Token represents a single source token with its location and leading trivia.
// Concatenating Leading texts followed by Text for every token in a stream
// reproduces the original buffer byte for byte.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is a numeric, character, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, CharLit, StringLit:
		return true
	default:
		return false
	}
}

// IsComment reports whether the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Kind == LineComment || t.Kind == BlockComment
}

// IsKeyword reports whether the token is a C keyword.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwIf && t.Kind <= KwRestrict
}

// IsTypeKeyword reports whether the token can start a declaration specifier.
func (t Token) IsTypeKeyword() bool {
	switch t.Kind {
	case KwStruct, KwUnion, KwEnum, KwConst, KwVolatile, KwUnsigned, KwSigned,
		KwInt, KwChar, KwFloat, KwDouble, KwLong, KwShort, KwVoid, KwBool,
		KwStatic, KwExtern, KwRegister, KwInline, KwRestrict:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }
