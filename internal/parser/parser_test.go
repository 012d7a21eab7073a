package parser

import (
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/lexer"
	"cstrict/internal/source"
	"cstrict/internal/token"
)

func parseSource(t *testing.T, src string) (*Unit, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.c", []byte(src))
	bag := diag.NewBag(100)
	r := diag.BagReporter{Bag: bag}
	toks := lexer.Tokenize(fs.Get(id), r)
	return Parse(fs.Get(id), toks, r), bag
}

func findDecl(u *Unit, name string) *Decl {
	for _, d := range u.Decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func TestTopLevelDecls(t *testing.T) {
	unit, _ := parseSource(t, `
#define MOD_MAX_RETRIES 3
static UINT32 Mod_attemptCount;
int Mod_GlobalCounter = 0;
typedef struct
{
    int fd;
} MOD_CONN_STRUCT;
typedef enum { A, B } MOD_STATE_ENUM;
static int Mod_Helper(int x);
`)

	macro := findDecl(unit, "MOD_MAX_RETRIES")
	if macro == nil || macro.Kind != DeclMacro {
		t.Fatalf("macro not recorded: %+v", macro)
	}

	attempt := findDecl(unit, "Mod_attemptCount")
	if attempt == nil || attempt.Kind != DeclVar || attempt.Scope != ScopeModule {
		t.Fatalf("static file-scope var: %+v", attempt)
	}
	if attempt.TypeText != "UINT32" {
		t.Fatalf("type text %q", attempt.TypeText)
	}

	global := findDecl(unit, "Mod_GlobalCounter")
	if global == nil || global.Scope != ScopeGlobal {
		t.Fatalf("global var: %+v", global)
	}

	conn := findDecl(unit, "MOD_CONN_STRUCT")
	if conn == nil || conn.Kind != DeclTypedefStruct {
		t.Fatalf("typedef struct: %+v", conn)
	}

	state := findDecl(unit, "MOD_STATE_ENUM")
	if state == nil || state.Kind != DeclTypedefEnum {
		t.Fatalf("typedef enum: %+v", state)
	}

	helper := findDecl(unit, "Mod_Helper")
	if helper == nil || helper.Kind != DeclFunc || helper.Scope != ScopeModule {
		t.Fatalf("prototype: %+v", helper)
	}
	if len(unit.Funcs) != 0 {
		t.Fatalf("prototype must not produce a function body")
	}
}

func TestFunctionBodySkeleton(t *testing.T) {
	unit, _ := parseSource(t, `
int Mod_Run(int count)
{
    int total = 0;
    int i;
    for (i = 0; i < count; i++)
    {
        if (total > 10)
        {
            break;
        }
        total += i;
    }
    if (total < 0)
        goto cleanup;
    return total;
cleanup:
    return -1;
}
`)

	if len(unit.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(unit.Funcs))
	}
	fn := unit.Funcs[0]
	if fn.Decl.Name != "Mod_Run" {
		t.Fatalf("name %q", fn.Decl.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "count" {
		t.Fatalf("params %+v", fn.Params)
	}

	counts := map[StmtKind]int{}
	for _, s := range fn.Body {
		counts[s.Kind]++
	}
	if counts[StmtDecl] != 2 {
		t.Fatalf("decl stmts: %d", counts[StmtDecl])
	}
	if counts[StmtLoop] != 1 {
		t.Fatalf("loop stmts: %d", counts[StmtLoop])
	}
	if counts[StmtCond] != 2 {
		t.Fatalf("cond stmts: %d", counts[StmtCond])
	}
	if counts[StmtReturn] != 2 {
		t.Fatalf("return stmts: %d", counts[StmtReturn])
	}
	if counts[StmtGoto] != 1 {
		t.Fatalf("goto stmts: %d", counts[StmtGoto])
	}
	if counts[StmtLabel] != 1 {
		t.Fatalf("label stmts: %d", counts[StmtLabel])
	}
	if counts[StmtBreak] != 1 {
		t.Fatalf("break stmts: %d", counts[StmtBreak])
	}
}

func TestDoWhileTail(t *testing.T) {
	unit, _ := parseSource(t, `
void Mod_Spin(void)
{
    do
    {
        Mod_Step();
    } while (Mod_Busy());
}
`)
	fn := unit.Funcs[0]
	var doHead, tail bool
	for _, s := range fn.Body {
		if s.Kind == StmtLoop && s.Head == token.KwDo {
			doHead = true
		}
		if s.Kind == StmtLoop && s.Tail {
			tail = true
		}
	}
	if !doHead || !tail {
		t.Fatalf("do-while not recognized: doHead=%v tail=%v", doHead, tail)
	}
}

func TestPreprocessorConditionStack(t *testing.T) {
	unit, _ := parseSource(t, `
void Mod_Init(void)
{
#if defined(MOD_FEATURE_X)
    Mod_EnableX();
#if MOD_DEEP
    Mod_Deep();
#endif
#endif
    Mod_Base();
}
`)
	fn := unit.Funcs[0]

	var enableStack, deepStack, baseStack int = -1, -1, -1
	for _, s := range fn.Body {
		if s.Kind != StmtExpr {
			continue
		}
		text := ""
		for k := s.First; k <= s.Last; k++ {
			text += unit.Tokens[k].Text
		}
		switch {
		case text == "Mod_EnableX();":
			enableStack = len(s.CondStack)
		case text == "Mod_Deep();":
			deepStack = len(s.CondStack)
		case text == "Mod_Base();":
			baseStack = len(s.CondStack)
		}
	}
	if enableStack != 1 {
		t.Fatalf("Mod_EnableX cond depth = %d, want 1", enableStack)
	}
	if deepStack != 2 {
		t.Fatalf("Mod_Deep cond depth = %d, want 2", deepStack)
	}
	if baseStack != 0 {
		t.Fatalf("Mod_Base cond depth = %d, want 0", baseStack)
	}
	if unit.MaxCondDepth != 2 {
		t.Fatalf("MaxCondDepth = %d, want 2", unit.MaxCondDepth)
	}
}

func TestOpaqueStatementRecovery(t *testing.T) {
	unit, bag := parseSource(t, `
void Mod_Odd(void)
{
    int ok = 1;
    ][ mystery );
    ok = 2;
}
`)
	fn := unit.Funcs[0]
	var opaque, exprAfter bool
	for _, s := range fn.Body {
		if s.Kind == StmtOpaque {
			opaque = true
		}
		if opaque && s.Kind == StmtExpr {
			exprAfter = true
		}
	}
	if !opaque {
		t.Fatalf("expected an opaque statement")
	}
	if !exprAfter {
		t.Fatalf("parsing did not continue past the opaque statement")
	}
	foundNote := false
	for _, d := range bag.Items() {
		if d.Code == diag.SynOpaqueStmt {
			foundNote = true
		}
	}
	if !foundNote {
		t.Fatalf("opaque statement not surfaced as a diagnostic")
	}
}

func TestDeclaratorList(t *testing.T) {
	unit, _ := parseSource(t, `
void Mod_Multi(void)
{
    int first = 1, *second, third[4];
}
`)
	fn := unit.Funcs[0]
	for _, s := range fn.Body {
		if s.Kind != StmtDecl {
			continue
		}
		if len(s.Decls) != 3 {
			t.Fatalf("expected 3 declarators, got %d", len(s.Decls))
		}
		if s.Decls[1].Name != "second" || s.Decls[1].PtrDepth != 1 {
			t.Fatalf("second declarator: %+v", s.Decls[1])
		}
		return
	}
	t.Fatalf("no decl statement found")
}

func TestFunctionPointerTypedef(t *testing.T) {
	unit, bag := parseSource(t, `
typedef int (*READ_FN)(void);
typedef struct Pair (**PAIR_MAKER)(int left, int right);
`)
	d := findDecl(unit, "READ_FN")
	if d == nil {
		t.Fatalf("function-pointer typedef not recorded")
	}
	if d.Kind != DeclTypedef || d.PtrDepth != 1 {
		t.Fatalf("READ_FN decl = %+v", d)
	}

	d = findDecl(unit, "PAIR_MAKER")
	if d == nil {
		t.Fatalf("struct function-pointer typedef not recorded")
	}
	if d.Kind != DeclTypedefStruct || d.PtrDepth != 2 {
		t.Fatalf("PAIR_MAKER decl = %+v", d)
	}

	for _, item := range bag.Items() {
		if item.Code == diag.SynOpaqueStmt {
			t.Fatalf("typedef degraded to opaque: %s", item.Message)
		}
	}
}
