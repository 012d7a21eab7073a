package symbols

import (
	"cstrict/internal/parser"
	"cstrict/internal/source"
)

// Table holds every symbol of one translation unit together with its
// lexical scope tree. Scope 0 is the universe (prelude), scope 1 the
// file scope; function and block scopes hang below.
type Table struct {
	FileID  source.FileID
	Symbols []*Symbol
	Scopes  []*Scope

	Universe ScopeID
	File     ScopeID

	// FuncScopes maps function names to their parameter scopes.
	FuncScopes map[string]ScopeID
}

func newTable(fileID source.FileID) *Table {
	t := &Table{FileID: fileID, FuncScopes: make(map[string]ScopeID)}
	t.Universe = t.newScope(ScopeUniverse, NoScope)
	t.File = t.newScope(ScopeFile, t.Universe)
	return t
}

func (t *Table) newScope(kind ScopeKind, parent ScopeID) ScopeID {
	id := ScopeID(len(t.Scopes))
	t.Scopes = append(t.Scopes, &Scope{Kind: kind, Parent: parent})
	return id
}

func (t *Table) Scope(id ScopeID) *Scope {
	if id == NoScope || int(id) >= len(t.Scopes) {
		return nil
	}
	return t.Scopes[id]
}

func (t *Table) Symbol(id SymbolID) *Symbol {
	if id == NoSymbol || int(id) >= len(t.Symbols) {
		return nil
	}
	return t.Symbols[id]
}

func (t *Table) add(scope ScopeID, sym *Symbol) SymbolID {
	sym.Scope = scope
	id := SymbolID(len(t.Symbols))
	t.Symbols = append(t.Symbols, sym)
	t.Scopes[scope].put(sym.Name, id)
	return id
}

// Resolve walks the scope chain from the given scope outward.
func (t *Table) Resolve(scope ScopeID, name string) *Symbol {
	for scope != NoScope {
		s := t.Scopes[scope]
		if id, ok := s.get(name); ok {
			return t.Symbols[id]
		}
		scope = s.Parent
	}
	return nil
}

// LookupFile resolves a name at file scope (file then universe).
func (t *Table) LookupFile(name string) *Symbol {
	return t.Resolve(t.File, name)
}

// IsKnownCallable reports whether name denotes a function or a
// function-like macro visible at file scope.
func (t *Table) IsKnownCallable(name string) bool {
	sym := t.LookupFile(name)
	return sym != nil && (sym.Kind == SymbolFunction || sym.Kind == SymbolMacro)
}

// ByKind lists non-builtin symbols of one kind in declaration order.
func (t *Table) ByKind(kind SymbolKind) []*Symbol {
	var out []*Symbol
	for _, sym := range t.Symbols {
		if sym.Kind == kind && !sym.IsBuiltin() {
			out = append(out, sym)
		}
	}
	return out
}

// ModuleVars lists file-scope variables declared static.
func (t *Table) ModuleVars() []*Symbol {
	var out []*Symbol
	for _, sym := range t.Symbols {
		if sym.Kind == SymbolVar && sym.Scope == t.File && sym.IsStatic() {
			out = append(out, sym)
		}
	}
	return out
}

// GlobalVars lists file-scope variables with external linkage.
func (t *Table) GlobalVars() []*Symbol {
	var out []*Symbol
	for _, sym := range t.Symbols {
		if sym.Kind == SymbolVar && sym.Scope == t.File && !sym.IsStatic() {
			out = append(out, sym)
		}
	}
	return out
}

// LocalsOf lists the parameters and locals of one function.
func (t *Table) LocalsOf(fnName string) []*Symbol {
	fnScope, ok := t.FuncScopes[fnName]
	if !ok {
		return nil
	}
	var out []*Symbol
	for _, sym := range t.Symbols {
		if sym.Kind != SymbolVar && sym.Kind != SymbolParam {
			continue
		}
		for sc := sym.Scope; sc != NoScope; sc = t.Scopes[sc].Parent {
			if sc == fnScope {
				out = append(out, sym)
				break
			}
			if t.Scopes[sc].Kind == ScopeFile {
				break
			}
		}
	}
	return out
}

func flagsOf(d *parser.Decl) SymbolFlags {
	var f SymbolFlags
	if d.IsStatic {
		f |= SymbolFlagStatic
	}
	if d.IsConst {
		f |= SymbolFlagConst
	}
	if d.PtrDepth > 0 {
		f |= SymbolFlagPointer
	}
	if d.IsBoolLike() {
		f |= SymbolFlagBool
	}
	return f
}
