package token

// Kind represents the category of a C source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwIf represents the 'if' keyword.
	KwIf
	// KwElse represents the 'else' keyword.
	KwElse
	// KwFor represents the 'for' keyword.
	KwFor
	// KwWhile represents the 'while' keyword.
	KwWhile
	// KwDo represents the 'do' keyword.
	KwDo
	// KwSwitch represents the 'switch' keyword.
	KwSwitch
	// KwCase represents the 'case' keyword.
	KwCase
	// KwDefault represents the 'default' keyword.
	KwDefault
	// KwReturn represents the 'return' keyword.
	KwReturn
	// KwGoto represents the 'goto' keyword.
	KwGoto
	// KwBreak represents the 'break' keyword.
	KwBreak
	// KwContinue represents the 'continue' keyword.
	KwContinue
	// KwStruct represents the 'struct' keyword.
	KwStruct
	// KwUnion represents the 'union' keyword.
	KwUnion
	// KwEnum represents the 'enum' keyword.
	KwEnum
	// KwTypedef represents the 'typedef' keyword.
	KwTypedef
	// KwStatic represents the 'static' keyword.
	KwStatic
	// KwExtern represents the 'extern' keyword.
	KwExtern
	// KwConst represents the 'const' keyword.
	KwConst
	// KwVolatile represents the 'volatile' keyword.
	KwVolatile
	// KwUnsigned represents the 'unsigned' keyword.
	KwUnsigned
	// KwSigned represents the 'signed' keyword.
	KwSigned
	// KwInt represents the 'int' keyword.
	KwInt
	// KwChar represents the 'char' keyword.
	KwChar
	// KwFloat represents the 'float' keyword.
	KwFloat
	// KwDouble represents the 'double' keyword.
	KwDouble
	// KwLong represents the 'long' keyword.
	KwLong
	// KwShort represents the 'short' keyword.
	KwShort
	// KwVoid represents the 'void' keyword.
	KwVoid
	// KwSizeof represents the 'sizeof' keyword.
	KwSizeof
	// KwBool represents the '_Bool' keyword (and 'bool' from stdbool.h).
	KwBool
	// KwRegister represents the 'register' keyword.
	KwRegister
	// KwInline represents the 'inline' keyword.
	KwInline
	// KwRestrict represents the 'restrict' keyword.
	KwRestrict

	// IntLit represents an integer literal token.
	IntLit
	// FloatLit represents a floating-point literal token.
	FloatLit
	// CharLit represents a character literal token.
	CharLit
	// StringLit represents a string literal token.
	StringLit

	// LineComment represents a // comment, text includes the slashes.
	LineComment
	// BlockComment represents a /* */ comment, text includes the delimiters.
	BlockComment
	// Directive represents a whole preprocessor line starting at '#'.
	Directive

	// Plus represents '+'.
	Plus
	// Minus represents '-'.
	Minus
	// Star represents '*'.
	Star
	// Slash represents '/'.
	Slash
	// Percent represents '%'.
	Percent
	// Assign represents '='.
	Assign
	// PlusAssign represents '+='.
	PlusAssign
	// MinusAssign represents '-='.
	MinusAssign
	// StarAssign represents '*='.
	StarAssign
	// SlashAssign represents '/='.
	SlashAssign
	// PercentAssign represents '%='.
	PercentAssign
	// AmpAssign represents '&='.
	AmpAssign
	// PipeAssign represents '|='.
	PipeAssign
	// CaretAssign represents '^='.
	CaretAssign
	// ShlAssign represents '<<='.
	ShlAssign
	// ShrAssign represents '>>='.
	ShrAssign
	// PlusPlus represents '++'.
	PlusPlus
	// MinusMinus represents '--'.
	MinusMinus
	// EqEq represents '=='.
	EqEq
	// Bang represents '!'.
	Bang
	// BangEq represents '!='.
	BangEq
	// Lt represents '<'.
	Lt
	// LtEq represents '<='.
	LtEq
	// Gt represents '>'.
	Gt
	// GtEq represents '>='.
	GtEq
	// Shl represents '<<'.
	Shl
	// Shr represents '>>'.
	Shr
	// Amp represents '&'.
	Amp
	// Pipe represents '|'.
	Pipe
	// Caret represents '^'.
	Caret
	// Tilde represents '~'.
	Tilde
	// AndAnd represents '&&'.
	AndAnd
	// OrOr represents '||'.
	OrOr
	// Question represents '?'.
	Question
	// Colon represents ':'.
	Colon
	// Semicolon represents ';'.
	Semicolon
	// Comma represents ','.
	Comma
	// Dot represents '.'.
	Dot
	// Ellipsis represents '...'.
	Ellipsis
	// Arrow represents '->'.
	Arrow
	// LParen represents '('.
	LParen
	// RParen represents ')'.
	RParen
	// LBrace represents '{'.
	LBrace
	// RBrace represents '}'.
	RBrace
	// LBracket represents '['.
	LBracket
	// RBracket represents ']'.
	RBracket

	kindCount
)

var kindNames = [...]string{
	Invalid:       "Invalid",
	EOF:           "EOF",
	Ident:         "Ident",
	KwIf:          "if",
	KwElse:        "else",
	KwFor:         "for",
	KwWhile:       "while",
	KwDo:          "do",
	KwSwitch:      "switch",
	KwCase:        "case",
	KwDefault:     "default",
	KwReturn:      "return",
	KwGoto:        "goto",
	KwBreak:       "break",
	KwContinue:    "continue",
	KwStruct:      "struct",
	KwUnion:       "union",
	KwEnum:        "enum",
	KwTypedef:     "typedef",
	KwStatic:      "static",
	KwExtern:      "extern",
	KwConst:       "const",
	KwVolatile:    "volatile",
	KwUnsigned:    "unsigned",
	KwSigned:      "signed",
	KwInt:         "int",
	KwChar:        "char",
	KwFloat:       "float",
	KwDouble:      "double",
	KwLong:        "long",
	KwShort:       "short",
	KwVoid:        "void",
	KwSizeof:      "sizeof",
	KwBool:        "_Bool",
	KwRegister:    "register",
	KwInline:      "inline",
	KwRestrict:    "restrict",
	IntLit:        "IntLit",
	FloatLit:      "FloatLit",
	CharLit:       "CharLit",
	StringLit:     "StringLit",
	LineComment:   "LineComment",
	BlockComment:  "BlockComment",
	Directive:     "Directive",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	PipeAssign:    "|=",
	CaretAssign:   "^=",
	ShlAssign:     "<<=",
	ShrAssign:     ">>=",
	PlusPlus:      "++",
	MinusMinus:    "--",
	EqEq:          "==",
	Bang:          "!",
	BangEq:        "!=",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	Shl:           "<<",
	Shr:           ">>",
	Amp:           "&",
	Pipe:          "|",
	Caret:         "^",
	Tilde:         "~",
	AndAnd:        "&&",
	OrOr:          "||",
	Question:      "?",
	Colon:         ":",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	Ellipsis:      "...",
	Arrow:         "->",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
