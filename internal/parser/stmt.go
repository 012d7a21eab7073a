package parser

import (
	"cstrict/internal/source"
	"cstrict/internal/token"
)

// StmtKind is the coarse statement classification the skeleton provides.
// Anything that cannot be classified stays in the list as StmtOpaque so
// rules that do not need structure still run.
type StmtKind uint8

const (
	StmtDecl StmtKind = iota
	StmtExpr
	StmtCond // if / else / switch header
	StmtLoop // for / while / do header (and do-while tail)
	StmtCase // case or default label
	StmtReturn
	StmtGoto
	StmtBreak
	StmtContinue
	StmtLabel
	StmtBlockStart
	StmtBlockEnd
	StmtDirective
	StmtOpaque
)

func (k StmtKind) String() string {
	switch k {
	case StmtDecl:
		return "decl"
	case StmtExpr:
		return "expr"
	case StmtCond:
		return "cond"
	case StmtLoop:
		return "loop"
	case StmtCase:
		return "case"
	case StmtReturn:
		return "return"
	case StmtGoto:
		return "goto"
	case StmtBreak:
		return "break"
	case StmtContinue:
		return "continue"
	case StmtLabel:
		return "label"
	case StmtBlockStart:
		return "block-start"
	case StmtBlockEnd:
		return "block-end"
	case StmtDirective:
		return "directive"
	case StmtOpaque:
		return "opaque"
	}
	return "unknown"
}

// Stmt is one entry of a function's flat statement list. First/Last are
// inclusive indices into Unit.Tokens. CondStack is the preprocessor
// conditional nesting active at this statement, innermost last.
type Stmt struct {
	Kind      StmtKind
	Span      source.Span
	First     int
	Last      int
	Head      token.Kind // for StmtCond/StmtLoop: which keyword formed it
	Tail      bool       // do-while tail 'while (...)' statement
	Label     string     // goto target, label name, or case text
	Decls     []*Decl    // for StmtDecl: declarators introduced
	CondStack []string
}

// Function couples a function declaration with its body skeleton.
type Function struct {
	Decl     *Decl
	Params   []*Decl
	Body     []Stmt
	BodySpan source.Span
}

// DirectiveKind classifies a preprocessor line.
type DirectiveKind uint8

const (
	DirOther DirectiveKind = iota
	DirInclude
	DirDefine
	DirUndef
	DirIf
	DirIfdef
	DirIfndef
	DirElif
	DirElse
	DirEndif
	DirPragma
	DirError
)

// Directive is one preprocessor line with its conditional nesting depth
// (depth counts enclosing #if blocks, so a top-level #if has depth 0).
type Directive struct {
	Kind  DirectiveKind
	Span  source.Span
	Text  string
	Cond  string // condition text for #if/#ifdef/#ifndef/#elif
	Depth int
}

// Unit is the structural skeleton of one translation unit: the token
// stream, file-scope declarations, functions with statement lists, and
// all preprocessor directives.
type Unit struct {
	FileID       source.FileID
	Tokens       []token.Token
	Decls        []*Decl
	Funcs        []*Function
	Directives   []Directive
	MaxCondDepth int
}

// FindFunc returns the function with the given name, if present.
func (u *Unit) FindFunc(name string) *Function {
	for _, fn := range u.Funcs {
		if fn.Decl.Name == name {
			return fn
		}
	}
	return nil
}
