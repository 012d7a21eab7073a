package rules

import (
	"context"

	"cstrict/internal/cfg"
	"cstrict/internal/diag"
	"cstrict/internal/lexer"
	"cstrict/internal/parser"
	"cstrict/internal/source"
	"cstrict/internal/symbols"
)

// Options configure one analysis pass.
type Options struct {
	Limits    Limits
	Overrides map[diag.Code]diag.SeverityOverride
}

// Analyze runs lexing, parsing and every enabled rule over one file,
// reporting findings through r. Expensive views (CFG, symbols) are built
// only when an enabled rule declares the need. The error is non-nil only
// on cancellation; everything file-local degrades to findings.
func Analyze(ctx context.Context, file *source.File, reg *Registry, opts Options, r diag.Reporter) error {
	if len(opts.Overrides) > 0 {
		r = diag.OverrideReporter{Next: r, Overrides: opts.Overrides}
	}

	toks := lexer.Tokenize(file, r)
	unit := parser.Parse(file, toks, r)

	rc := &Context{
		Ctx:    ctx,
		File:   file,
		Tokens: toks,
		Unit:   unit,
		Limits: opts.Limits,
		R:      r,
	}

	needs := reg.NeedsUnion(opts.Overrides)
	if needs&NeedsCFG != 0 {
		rc.Graphs = make([]*cfg.Graph, len(unit.Funcs))
		for i, fn := range unit.Funcs {
			rc.Graphs[i] = cfg.Build(fn, r)
		}
	}
	if needs&NeedsSymbols != 0 {
		rc.Table = symbols.Build(unit, r)
	}

	for _, rule := range reg.Enabled(opts.Overrides) {
		if err := ctx.Err(); err != nil {
			return err
		}
		rule.Check(rc)
	}
	return ctx.Err()
}
