package rules

import (
	"fmt"
	"strings"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/symbols"
)

// NamingRule classifies every declaration's name against the case
// pattern its kind requires: typedefs UPPER_WITH_UNDERSCORES with an
// aggregate suffix, locals lowerCamelCase, file-scope names CamelCase
// with a module prefix, macros UPPER_WITH_UNDERSCORES.
type NamingRule struct{}

func (NamingRule) Code() diag.Code { return diag.NamingTypedefCase }
func (NamingRule) Codes() []diag.Code {
	return []diag.Code{
		diag.NamingTypedefCase, diag.NamingTypedefSuffix, diag.NamingLocalCase,
		diag.NamingGlobalCase, diag.NamingModulePrefix, diag.NamingMacroCase,
	}
}
func (NamingRule) Name() string { return "naming" }
func (NamingRule) Needs() Needs { return NeedsSymbols }

func (NamingRule) Check(rc *Context) {
	for _, sym := range rc.Table.Symbols {
		if sym.IsBuiltin() || sym.Name == "" {
			continue
		}
		switch sym.Kind {
		case symbols.SymbolTypedef:
			checkTypedefName(rc, sym)
		case symbols.SymbolMacro:
			if !isUpperSnake(sym.Name) {
				diag.ReportShould(rc.R, diag.NamingMacroCase, sym.Span,
					fmt.Sprintf("macro %q should be UPPER_WITH_UNDERSCORES, e.g. %q",
						sym.Name, toUpperSnake(sym.Name))).Emit()
			}
		case symbols.SymbolVar, symbols.SymbolParam:
			if sym.Scope == rc.Table.File {
				checkFileScopeName(rc, sym.Name, sym, diag.NamingGlobalCase)
			} else {
				checkLocalName(rc, sym)
			}
		case symbols.SymbolFunction:
			if sym.Name == "main" {
				continue
			}
			checkFileScopeName(rc, sym.Name, sym, diag.NamingGlobalCase)
		}
	}
}

var typedefSuffixes = map[parser.DeclKind]string{
	parser.DeclTypedefStruct: "_STRUCT",
	parser.DeclTypedefUnion:  "_UNION",
	parser.DeclTypedefEnum:   "_ENUM",
}

func checkTypedefName(rc *Context, sym *symbols.Symbol) {
	if !isUpperSnake(sym.Name) {
		diag.ReportShould(rc.R, diag.NamingTypedefCase, sym.Span,
			fmt.Sprintf("typedef %q should be UPPER_WITH_UNDERSCORES, e.g. %q",
				sym.Name, toUpperSnake(sym.Name))).Emit()
		return
	}
	if sym.Decl == nil {
		return
	}
	want, ok := typedefSuffixes[sym.Decl.Kind]
	if ok && !strings.HasSuffix(sym.Name, want) {
		diag.ReportShould(rc.R, diag.NamingTypedefSuffix, sym.Span,
			fmt.Sprintf("typedef %q should carry the %s suffix", sym.Name, want)).Emit()
	}
}

func checkLocalName(rc *Context, sym *symbols.Symbol) {
	// An all-uppercase const local reads as a constant; the constant
	// pattern wins over the local-variable pattern.
	if sym.Flags&symbols.SymbolFlagConst != 0 && isUpperSnake(sym.Name) {
		return
	}
	if isLowerCamel(sym.Name) {
		return
	}
	diag.ReportShould(rc.R, diag.NamingLocalCase, sym.Span,
		fmt.Sprintf("local %q should be lowerCamelCase, e.g. %q",
			sym.Name, toLowerCamel(sym.Name))).Emit()
}

// checkFileScopeName enforces CamelCase with a module-prefix token
// before the first underscore or internal case transition.
func checkFileScopeName(rc *Context, name string, sym *symbols.Symbol, code diag.Code) {
	if !isModuleCamel(name) {
		diag.ReportShould(rc.R, code, sym.Span,
			fmt.Sprintf("file-scope name %q should be CamelCase with a module prefix, e.g. %q",
				name, toModuleCamel(name))).Emit()
		return
	}
	if !hasModulePrefix(name) {
		diag.ReportShould(rc.R, diag.NamingModulePrefix, sym.Span,
			fmt.Sprintf("file-scope name %q has no module-prefix token", name)).Emit()
	}
}

func isUpperSnake(s string) bool {
	if s == "" || !(s[0] >= 'A' && s[0] <= 'Z') {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

func isLowerCamel(s string) bool {
	if s == "" || !(s[0] >= 'a' && s[0] <= 'z') {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// isModuleCamel accepts CamelCase names with at most one underscore
// separating the module prefix from a CamelCase remainder.
func isModuleCamel(s string) bool {
	if s == "" || !(s[0] >= 'A' && s[0] <= 'Z') {
		return false
	}
	parts := strings.Split(s, "_")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if p == "" || !(p[0] >= 'A' && p[0] <= 'Z') {
			return false
		}
		for i := 0; i < len(p); i++ {
			c := p[i]
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
				continue
			}
			return false
		}
	}
	return true
}

// hasModulePrefix reports whether a well-cased file-scope name carries a
// recognizable prefix token: an underscore separator or an internal
// lower-to-upper transition.
func hasModulePrefix(s string) bool {
	if strings.ContainsRune(s, '_') {
		return true
	}
	for i := 1; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}

func toUpperSnake(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' && i > 0 {
			prev := s[i-1]
			if prev >= 'a' && prev <= 'z' {
				b.WriteByte('_')
			}
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func toLowerCamel(s string) string {
	var b strings.Builder
	up := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			up = b.Len() > 0
			continue
		}
		if up {
			if c >= 'a' && c <= 'z' {
				c -= 'a' - 'A'
			}
			up = false
		} else if b.Len() == 0 {
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
		} else if c >= 'A' && c <= 'Z' && i > 0 && s[i-1] >= 'A' && s[i-1] <= 'Z' {
			// flatten UPPER runs
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func toModuleCamel(s string) string {
	out := []byte(toLowerCamel(s))
	if len(out) > 0 && out[0] >= 'a' && out[0] <= 'z' {
		out[0] -= 'a' - 'A'
	}
	return string(out)
}

// BoolNamingRule flags boolean-like declarations whose names do not read
// as predicates.
type BoolNamingRule struct{}

func (BoolNamingRule) Code() diag.Code { return diag.NamingBoolPrefix }
func (BoolNamingRule) Codes() []diag.Code {
	return []diag.Code{diag.NamingBoolPrefix, diag.NamingBoolNegation}
}
func (BoolNamingRule) Name() string { return "bool-naming" }
func (BoolNamingRule) Needs() Needs { return NeedsSymbols }

var boolPrefixes = []string{"is", "has", "can", "should", "was", "does", "needs", "allow"}

var boolNegations = []string{"isnot", "not", "no"}

func (BoolNamingRule) Check(rc *Context) {
	for _, sym := range rc.Table.Symbols {
		if sym.IsBuiltin() || !sym.IsBool() {
			continue
		}
		if sym.Kind != symbols.SymbolVar && sym.Kind != symbols.SymbolParam {
			continue
		}
		lower := strings.ToLower(sym.Name)
		neg := false
		for _, p := range boolNegations {
			if strings.HasPrefix(lower, p) {
				neg = true
				break
			}
		}
		if neg || strings.Contains(lower, "bad") || strings.Contains(lower, "invalid") {
			diag.ReportShould(rc.R, diag.NamingBoolNegation, sym.Span,
				fmt.Sprintf("boolean %q implies negation; name the positive condition", sym.Name)).Emit()
			continue
		}
		ok := false
		for _, p := range boolPrefixes {
			if strings.HasPrefix(lower, p) {
				ok = true
				break
			}
		}
		if !ok {
			diag.ReportShould(rc.R, diag.NamingBoolPrefix, sym.Span,
				fmt.Sprintf("boolean %q should start with a predicate prefix such as is/has/can", sym.Name)).Emit()
		}
	}
}
