package symbols

import (
	"cstrict/internal/parser"
	"cstrict/internal/source"
)

// SymbolID indexes Table.Symbols.
type SymbolID uint32

const NoSymbol SymbolID = ^SymbolID(0)

// SymbolKind classifies what a name denotes.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolVar
	SymbolParam
	SymbolTypedef
	SymbolMacro
	SymbolLabel
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolVar:
		return "var"
	case SymbolParam:
		return "param"
	case SymbolTypedef:
		return "typedef"
	case SymbolMacro:
		return "macro"
	case SymbolLabel:
		return "label"
	default:
		return "invalid"
	}
}

// SymbolFlags encode attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagStatic SymbolFlags = 1 << iota
	SymbolFlagConst
	SymbolFlagPointer
	SymbolFlagBuiltin
	SymbolFlagBool
)

// Symbol is one named entity. Decl is nil for prelude entries.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Flags SymbolFlags
	Scope ScopeID
	Span  source.Span
	Decl  *parser.Decl
}

func (s *Symbol) IsBuiltin() bool { return s.Flags&SymbolFlagBuiltin != 0 }
func (s *Symbol) IsStatic() bool  { return s.Flags&SymbolFlagStatic != 0 }
func (s *Symbol) IsPointer() bool { return s.Flags&SymbolFlagPointer != 0 }
func (s *Symbol) IsBool() bool    { return s.Flags&SymbolFlagBool != 0 }
