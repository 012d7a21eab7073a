package symbols

// ScopeID indexes Table.Scopes.
type ScopeID uint32

const NoScope ScopeID = ^ScopeID(0)

// ScopeKind enumerates the lexical scope categories of a C file.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeUniverse           // prelude builtins shared by every file
	ScopeFile               // file scope (externs, statics, typedefs, macros)
	ScopeFunction           // parameters and labels
	ScopeBlock              // braced block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeUniverse:
		return "universe"
	case ScopeFile:
		return "file"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is one lexical scope. Lookup walks the Parent chain.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	names  map[string]SymbolID
}

func (s *Scope) get(name string) (SymbolID, bool) {
	id, ok := s.names[name]
	return id, ok
}

func (s *Scope) put(name string, id SymbolID) {
	if s.names == nil {
		s.names = make(map[string]SymbolID)
	}
	if _, exists := s.names[name]; !exists {
		s.names[name] = id
	}
}
