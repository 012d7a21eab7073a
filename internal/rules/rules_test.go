package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

func analyze(t *testing.T, name, src string) *diag.Bag {
	t.Helper()
	return analyzeOpts(t, name, src, Options{Limits: DefaultLimits()})
}

func analyzeOpts(t *testing.T, name, src string, opts Options) *diag.Bag {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	bag := diag.NewBag(200)
	err := Analyze(context.Background(), fs.Get(id), Default(), opts, diag.BagReporter{Bag: bag})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return bag
}

func countCode(bag *diag.Bag, code diag.Code) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Code == code {
			n++
		}
	}
	return n
}

func findCode(bag *diag.Bag, code diag.Code) *diag.Diagnostic {
	for _, d := range bag.Items() {
		if d.Code == code {
			found := d
			return &found
		}
	}
	return nil
}

func TestLocalNamingProperty(t *testing.T) {
	clean := analyze(t, "a.c", `
typedef unsigned int UINT32;
void Mod_Work(void)
{
    UINT32 userId = 0;
    (void)userId;
}
`)
	if n := countCode(clean, diag.NamingLocalCase); n != 0 {
		t.Fatalf("clean local name flagged %d times", n)
	}

	dirty := analyze(t, "a.c", `
typedef unsigned int UINT32;
void Mod_Work(void)
{
    UINT32 user_id = 0;
    (void)user_id;
}
`)
	if n := countCode(dirty, diag.NamingLocalCase); n != 1 {
		t.Fatalf("snake_case local flagged %d times, want 1", n)
	}
	d := findCode(dirty, diag.NamingLocalCase)
	if !strings.Contains(d.Message, `"userId"`) {
		t.Fatalf("suggestion missing from message: %s", d.Message)
	}
}

func TestTypedefNaming(t *testing.T) {
	bag := analyze(t, "a.c", `
typedef struct { int fd; } ModConn;
typedef struct { int fd; } MOD_CONN;
typedef struct { int fd; } MOD_CONN_STRUCT;
`)
	if countCode(bag, diag.NamingTypedefCase) != 1 {
		t.Fatalf("case findings: %d, want 1 (ModConn)", countCode(bag, diag.NamingTypedefCase))
	}
	if countCode(bag, diag.NamingTypedefSuffix) != 1 {
		t.Fatalf("suffix findings: %d, want 1 (MOD_CONN)", countCode(bag, diag.NamingTypedefSuffix))
	}
}

func TestBoolNaming(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Flags(void)
{
    bool isReady = false;
    bool ready = false;
    bool isNotDone = false;
    (void)isReady; (void)ready; (void)isNotDone;
}
`)
	if countCode(bag, diag.NamingBoolPrefix) != 1 {
		t.Fatalf("prefix findings: %d, want 1", countCode(bag, diag.NamingBoolPrefix))
	}
	if countCode(bag, diag.NamingBoolNegation) != 1 {
		t.Fatalf("negation findings: %d, want 1", countCode(bag, diag.NamingBoolNegation))
	}
}

func TestSystemGuardProperty(t *testing.T) {
	guarded := analyze(t, "a.c", `
void Mod_Run(const char *cmd)
{
    int status = system(cmd);
    if (WIFEXITED(status) && WEXITSTATUS(status) == 0)
    {
        return;
    }
}
`)
	if n := countCode(guarded, diag.SystemMissingGuard); n != 0 {
		t.Fatalf("guarded system() flagged %d times", n)
	}

	bare := analyze(t, "a.c", `
void Mod_Run(const char *cmd)
{
    system(cmd);
}
`)
	if n := countCode(bare, diag.SystemMissingGuard); n != 1 {
		t.Fatalf("unguarded system() flagged %d times, want 1", n)
	}
	if findCode(bare, diag.SystemMissingGuard).Severity != diag.SevMust {
		t.Fatalf("system guard must be MUST severity")
	}
}

func TestFormatTaintProperty(t *testing.T) {
	tainted := analyze(t, "a.c", `
int main(int argc, char **argv)
{
    char externalBuf[128];
    strcpy(externalBuf, argv[1]);
    printf(externalBuf);
    return 0;
}
`)
	if n := countCode(tainted, diag.SecFormatTaint); n != 1 {
		t.Fatalf("tainted printf flagged %d times, want 1", n)
	}

	literal := analyze(t, "a.c", `
int main(int argc, char **argv)
{
    char externalBuf[128];
    strcpy(externalBuf, argv[1]);
    printf("%s", externalBuf);
    return 0;
}
`)
	if n := countCode(literal, diag.SecFormatTaint); n != 0 {
		t.Fatalf("literal-format printf flagged %d times", n)
	}
}

func TestTaintStopsAtCalleeNames(t *testing.T) {
	bag := analyze(t, "a.c", `
int main(int argc, char **argv)
{
    char externalBuf[128];
    char localBuf[128];
    strcpy(externalBuf, argv[1]);
    strcpy(localBuf, "safe");
    printf(localBuf);
    return 0;
}
`)
	if n := countCode(bag, diag.SecFormatTaint); n != 0 {
		t.Fatalf("untainted format arg flagged %d times", n)
	}
}

func TestResourceLeakSoundnessFloor(t *testing.T) {
	leaky := analyze(t, "a.c", `
int Mod_Load(int flag)
{
    char *buf = malloc(64);
    if (flag)
    {
        return -1;
    }
    free(buf);
    return 0;
}
`)
	if n := countCode(leaky, diag.ErrResourceLeak); n < 1 {
		t.Fatalf("leak on early-return path not reported")
	}
	if findCode(leaky, diag.ErrResourceLeak).Severity != diag.SevMust {
		t.Fatalf("leak must be MUST severity")
	}

	clean := analyze(t, "a.c", `
int Mod_Load(int flag)
{
    char *buf = malloc(64);
    if (buf == NULL)
    {
        return -1;
    }
    if (flag)
    {
        free(buf);
        return -1;
    }
    free(buf);
    return 0;
}
`)
	if n := countCode(clean, diag.ErrResourceLeak); n != 0 {
		t.Fatalf("fully released function flagged %d times", n)
	}
}

func TestResourceOwnershipTransfer(t *testing.T) {
	bag := analyze(t, "a.c", `
char *Mod_Alloc(void)
{
    char *buf = malloc(64);
    return buf;
}
`)
	if n := countCode(bag, diag.ErrResourceLeak); n != 0 {
		t.Fatalf("returned resource flagged %d times", n)
	}
}

func TestDoubleFree(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Drop(void)
{
    char *buf = malloc(64);
    free(buf);
    free(buf);
}
`)
	if n := countCode(bag, diag.ErrDoubleFree); n != 1 {
		t.Fatalf("double free flagged %d times, want 1", n)
	}
}

func TestReacquireAfterReleaseIsClean(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Reuse(void)
{
    char *buf = malloc(4);
    free(buf);
    buf = malloc(8);
    free(buf);
}
`)
	if n := countCode(bag, diag.ErrDoubleFree); n != 0 {
		t.Fatalf("re-acquired symbol reported as double free %d times", n)
	}
	if n := countCode(bag, diag.ErrResourceLeak); n != 0 {
		t.Fatalf("released reuse reported as leak %d times", n)
	}
}

func TestResourceBudgetDegradation(t *testing.T) {
	src := `
void Mod_Wide(int a)
{
    char *buf = malloc(64);
    if (a == 1) { a = 2; }
    if (a == 2) { a = 3; }
    if (a == 3) { a = 4; }
    if (a == 4) { a = 5; }
    free(buf);
}
`
	opts := Options{Limits: DefaultLimits()}
	opts.Limits.PathBudget = 2
	bag := analyzeOpts(t, "a.c", src, opts)
	if n := countCode(bag, diag.ErrAnalysisIncomplete); n != 1 {
		t.Fatalf("incomplete-analysis note count %d, want 1", n)
	}
	if n := countCode(bag, diag.ErrResourceLeak); n != 0 {
		t.Fatalf("degraded check must not report a leak when a release exists, got %d", n)
	}
}

func TestBannedAndDiscouragedAPI(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Input(char *line, char *dst, const char *src)
{
    gets(line);
    strcpy(dst, src);
}
`)
	banned := findCode(bag, diag.SecBannedAPI)
	if banned == nil || banned.Severity != diag.SevMust {
		t.Fatalf("gets() must be a MUST finding: %+v", banned)
	}
	disc := findCode(bag, diag.SecDiscouragedAPI)
	if disc == nil || disc.Severity != diag.SevShould {
		t.Fatalf("strcpy should be a SHOULD finding: %+v", disc)
	}
	if len(disc.Fixes) != 1 || len(disc.Fixes[0].Edits) != 2 {
		t.Fatalf("strcpy fix shape: %+v", disc.Fixes)
	}
	if !strings.Contains(disc.Fixes[0].Edits[0].NewText, "strncpy(dst, src, sizeof(dst) - 1)") {
		t.Fatalf("strcpy rewrite: %q", disc.Fixes[0].Edits[0].NewText)
	}
	if !strings.Contains(disc.Fixes[0].Edits[1].NewText, `dst[sizeof(dst) - 1] = '\0';`) {
		t.Fatalf("terminator statement: %q", disc.Fixes[0].Edits[1].NewText)
	}
}

func TestSprintfFix(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Fmt(char *out, int v)
{
    sprintf(out, "%d", v);
}
`)
	d := findCode(bag, diag.SecDiscouragedAPI)
	if d == nil || len(d.Fixes) != 1 {
		t.Fatalf("sprintf fix missing: %+v", d)
	}
	edits := d.Fixes[0].Edits
	if edits[0].NewText != "snprintf" || edits[1].NewText != ", sizeof(out)" {
		t.Fatalf("sprintf rewrite edits: %+v", edits)
	}
}

func TestNullComparisonFix(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Check(char *p)
{
    if (p)
    {
        return;
    }
    if (!p)
    {
        return;
    }
}
`)
	if n := countCode(bag, diag.StyleNullComparison); n != 2 {
		t.Fatalf("null comparison findings: %d, want 2", n)
	}
	var texts []string
	for _, d := range bag.Items() {
		if d.Code == diag.StyleNullComparison {
			texts = append(texts, d.Fixes[0].Edits[0].NewText)
		}
	}
	joined := strings.Join(texts, "|")
	if !strings.Contains(joined, "p != NULL") || !strings.Contains(joined, "p == NULL") {
		t.Fatalf("rewrites: %s", joined)
	}
}

func TestIncludeGuard(t *testing.T) {
	good := analyze(t, "mod.h", `#ifndef MOD_H
#define MOD_H

void Mod_Init(void);

#endif
`)
	if countCode(good, diag.HeaderMissingGuard) != 0 || countCode(good, diag.HeaderGuardShape) != 0 {
		t.Fatalf("well-guarded header flagged")
	}

	missing := analyze(t, "mod.h", `
void Mod_Init(void);
`)
	if countCode(missing, diag.HeaderMissingGuard) != 1 {
		t.Fatalf("missing guard not reported")
	}

	mismatch := analyze(t, "mod.h", `#ifndef MOD_H
#define MOD_OTHER_H
#endif
`)
	if countCode(mismatch, diag.HeaderGuardShape) != 1 {
		t.Fatalf("guard mismatch not reported")
	}

	nonHeader := analyze(t, "mod.c", `
void Mod_Init(void) { }
`)
	if countCode(nonHeader, diag.HeaderMissingGuard) != 0 {
		t.Fatalf("source file must not need a guard")
	}
}

func TestLineLength(t *testing.T) {
	long := strings.Repeat("x", 120)
	bag := analyze(t, "a.c", "// "+long+"\n")
	if countCode(bag, diag.StyleLineTooLong) != 1 {
		t.Fatalf("overlong line not reported")
	}
}

func TestDebugMacroShape(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Trace(int v)
{
    DEBUG1("Mod_Trace(): value %d", v);
    DEBUG2("value only %d", v);
}
`)
	if n := countCode(bag, diag.DebugMacroShape); n != 1 {
		t.Fatalf("debug macro findings: %d, want 1", n)
	}
}

func TestSingleReturn(t *testing.T) {
	guarded := analyze(t, "a.c", `
int Mod_Parse(const char *s, int n)
{
    int rc = 0;
    if (s == NULL)
    {
        return -1;
    }
    if (n < 0)
    {
        return -1;
    }
    rc = n;
    return rc;
}
`)
	if n := countCode(guarded, diag.FuncMultipleReturn); n != 0 {
		t.Fatalf("guard clauses flagged %d times", n)
	}

	interleaved := analyze(t, "a.c", `
int Mod_Parse(int n)
{
    int rc = 0;
    rc = n + 1;
    if (rc > 10)
    {
        return 10;
    }
    rc = rc * 2;
    return rc;
}
`)
	if n := countCode(interleaved, diag.FuncMultipleReturn); n != 1 {
		t.Fatalf("interleaved return flagged %d times, want 1", n)
	}

	cleanup := analyze(t, "a.c", `
int Mod_Open(int flag)
{
    int rc = 0;
    char *buf = malloc(8);
    if (buf == NULL)
    {
        return -1;
    }
    if (flag)
    {
        rc = -1;
        goto cleanup;
    }
    rc = 1;
cleanup:
    free(buf);
    return rc;
}
`)
	if n := countCode(cleanup, diag.FuncMultipleReturn); n != 0 {
		t.Fatalf("goto-cleanup exit flagged %d times", n)
	}
}

func TestUnreachableCode(t *testing.T) {
	bag := analyze(t, "a.c", `
int Mod_Dead(void)
{
    return 1;
    Mod_Tick();
}
`)
	if countCode(bag, diag.FuncUnreachableBlock) != 1 {
		t.Fatalf("unreachable statement not reported")
	}
}

func TestModuleStateBudget(t *testing.T) {
	src := `
static int Mod_a;
static int Mod_b;
static int Mod_c;
`
	opts := Options{Limits: DefaultLimits()}
	opts.Limits.ModuleStateBudget = 2
	bag := analyzeOpts(t, "a.c", src, opts)
	if countCode(bag, diag.StyleModuleState) != 1 {
		t.Fatalf("module-state overflow not reported once")
	}

	opts.Limits.ModuleStateBudget = 3
	bag = analyzeOpts(t, "a.c", src, opts)
	if countCode(bag, diag.StyleModuleState) != 0 {
		t.Fatalf("within-budget module state flagged")
	}
}

func TestCondCompRules(t *testing.T) {
	bag := analyze(t, "a.c", `
#if 0
int Mod_Old(void);
#endif
#if defined(A)
#if defined(B)
#if defined(C)
#if defined(D)
int Mod_Deep(void);
#endif
#endif
#endif
#endif
`)
	if countCode(bag, diag.CondIfZero) != 1 {
		t.Fatalf("#if 0 not reported")
	}
	if countCode(bag, diag.CondNestingDepth) != 1 {
		t.Fatalf("nesting depth findings: %d, want 1", countCode(bag, diag.CondNestingDepth))
	}
}

func TestIgnoredResult(t *testing.T) {
	bag := analyze(t, "a.c", `
void Mod_Waste(void)
{
    malloc(64);
}
`)
	if countCode(bag, diag.ErrIgnoredResult) != 1 {
		t.Fatalf("discarded allocation not reported")
	}
}

func TestRegistryResolveID(t *testing.T) {
	reg := Default()
	if _, err := reg.ResolveID("CS3501"); err != nil {
		t.Fatalf("known id rejected: %v", err)
	}
	_, err := reg.ResolveID("CS9999")
	if !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("unknown id error = %v, want ErrUnknownRule", err)
	}
	if _, err := reg.ResolveID("garbage"); !errors.Is(err, ErrUnknownRule) {
		t.Fatalf("malformed id error = %v", err)
	}
}

func TestSeverityOverrides(t *testing.T) {
	src := `
void Mod_Run(const char *cmd)
{
    system(cmd);
}
`
	opts := Options{
		Limits: DefaultLimits(),
		Overrides: map[diag.Code]diag.SeverityOverride{
			diag.SystemMissingGuard: {Severity: diag.SevShould},
		},
	}
	bag := analyzeOpts(t, "a.c", src, opts)
	d := findCode(bag, diag.SystemMissingGuard)
	if d == nil || d.Severity != diag.SevShould {
		t.Fatalf("override not applied: %+v", d)
	}

	opts.Overrides = map[diag.Code]diag.SeverityOverride{
		diag.SystemMissingGuard: {Disabled: true},
	}
	bag = analyzeOpts(t, "a.c", src, opts)
	if findCode(bag, diag.SystemMissingGuard) != nil {
		t.Fatalf("disabled rule still reported")
	}
}
