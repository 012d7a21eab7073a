package parser

import (
	"strings"

	"cstrict/internal/source"
)

// DeclKind classifies a declaration.
type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclParam
	DeclFunc
	DeclTypedef
	DeclTypedefStruct
	DeclTypedefUnion
	DeclTypedefEnum
	DeclMacro
)

func (k DeclKind) String() string {
	switch k {
	case DeclVar:
		return "variable"
	case DeclParam:
		return "parameter"
	case DeclFunc:
		return "function"
	case DeclTypedef:
		return "typedef"
	case DeclTypedefStruct:
		return "typedef-struct"
	case DeclTypedefUnion:
		return "typedef-union"
	case DeclTypedefEnum:
		return "typedef-enum"
	case DeclMacro:
		return "macro"
	}
	return "unknown"
}

// ScopeKind is declaration visibility. Module scope is a file-scope
// symbol with internal linkage (static); global has external linkage.
type ScopeKind uint8

const (
	ScopeLocal ScopeKind = iota
	ScopeModule
	ScopeGlobal
)

func (s ScopeKind) String() string {
	switch s {
	case ScopeLocal:
		return "local"
	case ScopeModule:
		return "module"
	case ScopeGlobal:
		return "global"
	}
	return "unknown"
}

// Decl is a single named declaration with the qualifiers rules care about.
// No expression-level type resolution happens; TypeText is the joined
// specifier spelling ("const char", "UINT32").
type Decl struct {
	Kind     DeclKind
	Name     string
	NameSpan source.Span
	Span     source.Span
	Scope    ScopeKind
	TypeText string
	PtrDepth int
	IsConst  bool
	IsStatic bool
}

// boolTypeNames are type spellings treated as boolean-like for the
// boolean-naming heuristic.
var boolTypeNames = map[string]bool{
	"_Bool":   true,
	"bool":    true,
	"BOOL":    true,
	"boolean": true,
	"BOOLEAN": true,
}

// IsBoolLike reports whether the declared type category is boolean.
func (d *Decl) IsBoolLike() bool {
	for _, w := range strings.Fields(d.TypeText) {
		if boolTypeNames[w] {
			return true
		}
	}
	return false
}

// IsPointer reports whether the declarator has at least one '*'.
func (d *Decl) IsPointer() bool {
	return d.PtrDepth > 0
}
