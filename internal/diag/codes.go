package diag

import (
	"fmt"
)

// Code identifies a diagnostic kind. Codes are partitioned into ranges so
// the audit category of a code is a plain range lookup.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical (recoverable; reported under Style).
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedChar         Code = 1003
	LexUnterminatedBlockComment Code = 1004

	// Structural (reported under Style).
	SynInfo           Code = 2000
	SynOpaqueStmt     Code = 2001
	SynUnmatchedBrace Code = 2002
	SynDanglingEndif  Code = 2003

	// Naming: 3000-3099.
	NamingTypedefCase   Code = 3001
	NamingTypedefSuffix Code = 3002
	NamingLocalCase     Code = 3003
	NamingGlobalCase    Code = 3004
	NamingModulePrefix  Code = 3005
	NamingMacroCase     Code = 3006
	NamingBoolPrefix    Code = 3007
	NamingBoolNegation  Code = 3008
	NamingUnresolved    Code = 3009

	// Functions: 3100-3199.
	FuncMultipleReturn   Code = 3101
	FuncUnreachableBlock Code = 3102
	FuncUnresolvedGoto   Code = 3103

	// Headers: 3200-3299.
	HeaderMissingGuard Code = 3201
	HeaderGuardShape   Code = 3202

	// Style: 3300-3399.
	StyleLineTooLong    Code = 3301
	StyleNullComparison Code = 3302
	StyleModuleState    Code = 3303

	// Debugging: 3400-3499.
	DebugMacroShape Code = 3401

	// system() usage: 3500-3599.
	SystemMissingGuard Code = 3501

	// Security/Safe-C: 3600-3699.
	SecBannedAPI      Code = 3601
	SecDiscouragedAPI Code = 3602
	SecFormatTaint    Code = 3603

	// Error-Handling: 3700-3799.
	ErrResourceLeak       Code = 3701
	ErrDoubleFree         Code = 3702
	ErrAnalysisIncomplete Code = 3703
	ErrIgnoredResult      Code = 3704

	// Conditional-Compilation: 3800-3899.
	CondNestingDepth Code = 3801
	CondIfZero       Code = 3802
)

// ID returns the stable external identifier for the code ("CS3301").
// Rule configuration addresses rules by this ID.
func (c Code) ID() string {
	return fmt.Sprintf("CS%04d", uint16(c))
}

func (c Code) String() string {
	return c.ID()
}

// CategoryOf maps a code to its audit-checklist category by range.
// Lexical and structural codes fall under Style: they describe source
// shape problems, and the standard has no separate parser line.
func CategoryOf(c Code) Category {
	switch {
	case c >= 3800:
		return CatCondComp
	case c >= 3700:
		return CatErrorHandling
	case c >= 3600:
		return CatSecurity
	case c >= 3500:
		return CatSystemUsage
	case c >= 3400:
		return CatDebugging
	case c >= 3300:
		return CatStyle
	case c >= 3200:
		return CatHeaders
	case c >= 3100:
		return CatFunctions
	case c >= 3000:
		return CatNaming
	default:
		return CatStyle
	}
}
