package rules

import (
	"context"

	"cstrict/internal/cfg"
	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/source"
	"cstrict/internal/symbols"
	"cstrict/internal/token"
)

// Needs declares which analysis views a rule consumes. The engine builds
// only the views the enabled rules ask for.
type Needs uint8

const (
	NeedsTokens Needs = 1 << iota
	NeedsSkeleton
	NeedsCFG
	NeedsSymbols
)

// Rule is one independent evaluator. Rules communicate only through the
// Context views and the reporter; ordering between rules affects
// presentation, never results.
type Rule interface {
	// Code is the rule's primary diagnostic code; disabling a rule in
	// configuration addresses it by Code().ID().
	Code() diag.Code
	// Codes lists every code the rule can emit, for configuration
	// validation and severity overrides.
	Codes() []diag.Code
	// Name is a short slug for logs and fix titles.
	Name() string
	Needs() Needs
	Check(rc *Context)
}

// Limits are the configurable analysis knobs.
type Limits struct {
	// LineLength is the display-width ceiling per source line.
	LineLength int
	// PathBudget caps entry-to-exit path enumeration per acquisition.
	PathBudget int
	// PathVisits caps repeated block visits on one path.
	PathVisits int
	// ModuleStateBudget is the allowed count of writable module-scope
	// symbols per file.
	ModuleStateBudget int
	// CondDepth is the allowed preprocessor conditional nesting.
	CondDepth int
}

func DefaultLimits() Limits {
	return Limits{
		LineLength:        100,
		PathBudget:        256,
		PathVisits:        2,
		ModuleStateBudget: 8,
		CondDepth:         3,
	}
}

// Context is the per-file view bundle handed to each rule. Graphs is
// parallel to Unit.Funcs. Views a rule did not declare may be nil.
type Context struct {
	Ctx    context.Context
	File   *source.File
	Tokens []token.Token
	Unit   *parser.Unit
	Graphs []*cfg.Graph
	Table  *symbols.Table
	Limits Limits
	R      diag.Reporter
}

// Text returns the source bytes a span covers.
func (rc *Context) Text(sp source.Span) string {
	c := rc.File.Content
	if int(sp.Start) > len(c) || int(sp.End) > len(c) || sp.Start > sp.End {
		return ""
	}
	return string(c[sp.Start:sp.End])
}

// Graph returns the CFG of the i-th function, if built.
func (rc *Context) Graph(i int) *cfg.Graph {
	if i < 0 || i >= len(rc.Graphs) {
		return nil
	}
	return rc.Graphs[i]
}
