package rules

import (
	"errors"
	"fmt"

	"cstrict/internal/diag"
)

// ErrUnknownRule marks a configuration entry naming no catalog rule.
// It is fatal to a run: silently ignoring a typo could mask a MUST check.
var ErrUnknownRule = errors.New("unknown rule id")

// Registry is the ordered rule catalog. Order only affects the sequence
// checks run in; findings are sorted for presentation afterwards.
type Registry struct {
	rules []Rule
	codes map[diag.Code]bool
}

func NewRegistry(rules ...Rule) *Registry {
	reg := &Registry{codes: make(map[diag.Code]bool)}
	for _, r := range rules {
		reg.rules = append(reg.rules, r)
		for _, c := range r.Codes() {
			reg.codes[c] = true
		}
	}
	return reg
}

// Default returns the full catalog in code order.
func Default() *Registry {
	return NewRegistry(
		NamingRule{},
		BoolNamingRule{},
		UnreachableRule{},
		SingleReturnRule{},
		IncludeGuardRule{},
		LineLengthRule{},
		NullComparisonRule{},
		ModuleStateRule{},
		DebugMacroRule{},
		SystemGuardRule{},
		BannedAPIRule{},
		FormatTaintRule{},
		ResourceRule{},
		IgnoredResultRule{},
		CondCompRule{},
	)
}

// ResolveID validates an external rule ID ("CS3501") against the
// catalog. Any code a rule can emit is addressable.
func (reg *Registry) ResolveID(id string) (diag.Code, error) {
	var n uint16
	if _, err := fmt.Sscanf(id, "CS%04d", &n); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	c := diag.Code(n)
	if !reg.codes[c] {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRule, id)
	}
	return c, nil
}

// Enabled lists the rules that will run under the given overrides: a
// rule whose primary code is disabled is skipped entirely.
func (reg *Registry) Enabled(overrides map[diag.Code]diag.SeverityOverride) []Rule {
	out := make([]Rule, 0, len(reg.rules))
	for _, r := range reg.rules {
		if ov, ok := overrides[r.Code()]; ok && ov.Disabled {
			continue
		}
		out = append(out, r)
	}
	return out
}

// NeedsUnion unions the capability sets of the enabled rules.
func (reg *Registry) NeedsUnion(overrides map[diag.Code]diag.SeverityOverride) Needs {
	var n Needs
	for _, r := range reg.Enabled(overrides) {
		n |= r.Needs()
	}
	return n
}
