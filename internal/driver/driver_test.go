package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cstrict/internal/diag"
	"cstrict/internal/rules"
	"cstrict/internal/source"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "cstrict.toml", `
max_diagnostics = 50

[limits]
line_length = 120

[rules]
CS3301 = "off"
CS3602 = "must"
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MaxDiagnostics != 50 || cfg.ToLimits().LineLength != 120 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.ToLimits().PathBudget != rules.DefaultLimits().PathBudget {
		t.Fatalf("unset limit not defaulted")
	}

	ov, err := cfg.Overrides(rules.Default())
	if err != nil {
		t.Fatalf("Overrides: %v", err)
	}
	if !ov[diag.StyleLineTooLong].Disabled {
		t.Fatalf("CS3301 not disabled: %+v", ov)
	}
	if ov[diag.SecDiscouragedAPI].Severity != diag.SevMust {
		t.Fatalf("CS3602 not promoted: %+v", ov)
	}
}

func TestUnknownRuleIDIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = map[string]string{"CS9999": "off"}
	_, err := cfg.Overrides(rules.Default())
	if !errors.Is(err, ErrConfig) || !errors.Is(err, rules.ErrUnknownRule) {
		t.Fatalf("err = %v", err)
	}

	cfg.Rules = map[string]string{"CS3301": "loud"}
	if _, err := cfg.Overrides(rules.Default()); !errors.Is(err, ErrConfig) {
		t.Fatalf("bad severity accepted: %v", err)
	}
}

func TestRunAuditsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.c", "void Mod_Read(char *buf)\n{\n    gets(buf);\n}\n")
	writeFile(t, dir, "ok.c", "int Mod_Add(int left, int right)\n{\n    return left + right;\n}\n")

	res, err := Run(context.Background(), dir, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Audit.Files) != 2 {
		t.Fatalf("files = %d", len(res.Audit.Files))
	}
	// Path-sorted merge.
	if !strings.HasSuffix(res.Audit.Files[0].Path, "bad.c") {
		t.Fatalf("order = %s", res.Audit.Files[0].Path)
	}
	if res.Audit.Pass {
		t.Fatalf("audit passed despite gets()")
	}
	if !res.Audit.Files[1].Pass {
		t.Fatalf("clean file failed: %+v", res.Audit.Files[1])
	}
}

func TestRunFixMode(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod.c",
		"void Mod_Copy(char *src)\n{\n    char dst[16];\n    strcpy(dst, src);\n}\n")

	res, err := Run(context.Background(), dir, Options{Fix: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	fr := res.Files[0]
	if fr.Buffer == nil {
		t.Fatalf("no rewritten buffer")
	}
	if !strings.Contains(string(fr.Buffer), "strncpy(dst, src, sizeof(dst) - 1)") {
		t.Fatalf("buffer = %s", fr.Buffer)
	}
	var sawFixed bool
	for _, f := range fr.Report.Findings {
		if f.Code == diag.SecDiscouragedAPI && f.Fixed {
			sawFixed = true
		}
	}
	if !sawFixed {
		t.Fatalf("discouraged-API finding not marked fixed: %+v", fr.Report.Findings)
	}
	// The engine never writes the file itself.
	on, err := os.ReadFile(filepath.Join(dir, "mod.c"))
	if err != nil || strings.Contains(string(on), "strncpy") {
		t.Fatalf("source file was rewritten on disk")
	}
}

func TestRunDisabledRule(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("x", 120)
	writeFile(t, dir, "mod.c", "/* "+long+" */\n")

	cfg := DefaultConfig()
	cfg.Rules = map[string]string{"CS3301": "off"}
	res, err := Run(context.Background(), dir, Options{Config: cfg})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, f := range res.Files[0].Report.Findings {
		if f.Code == diag.StyleLineTooLong {
			t.Fatalf("disabled rule still fired")
		}
	}
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod.c", "int x;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, dir, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevMust,
		Code:     diag.SecBannedAPI,
		Primary:  source.Span{File: 7, Start: 4, End: 8},
		Message:  "gets is banned",
		Notes:    []diag.Note{{Span: source.Span{File: 7, Start: 0, End: 2}, Msg: "declared here"}},
	})

	key := cacheKey([32]byte{1}, [32]byte{2})
	if err := cache.Put(key, snapshotFindings(bag)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	payload, ok := cache.Get(key)
	if !ok {
		t.Fatalf("cache miss after Put")
	}
	restored := diag.NewBag(10)
	restoreFindings(restored, 9, payload)

	got := restored.Items()[0]
	if got.Code != diag.SecBannedAPI || got.Severity != diag.SevMust {
		t.Fatalf("restored = %+v", got)
	}
	if got.Primary != (source.Span{File: 9, Start: 4, End: 8}) {
		t.Fatalf("span not rebound: %+v", got.Primary)
	}
	if len(got.Notes) != 1 || got.Notes[0].Msg != "declared here" {
		t.Fatalf("notes = %+v", got.Notes)
	}

	if _, ok := cache.Get(cacheKey([32]byte{3}, [32]byte{2})); ok {
		t.Fatalf("unexpected hit for a different key")
	}
}

func TestRunUsesCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.c", "void Mod_Read(char *buf)\n{\n    gets(buf);\n}\n")
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	first, err := Run(context.Background(), dir, Options{Cache: cache})
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := Run(context.Background(), dir, Options{Cache: cache})
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if first.Audit.Pass != second.Audit.Pass {
		t.Fatalf("verdict changed across cache hit")
	}
	if len(first.Files[0].Bag.Items()) != len(second.Files[0].Bag.Items()) {
		t.Fatalf("cached findings differ: %d vs %d",
			len(first.Files[0].Bag.Items()), len(second.Files[0].Bag.Items()))
	}
}

func TestConfigDigestStable(t *testing.T) {
	a := DefaultConfig()
	a.Rules = map[string]string{"CS3301": "off", "CS3602": "must"}
	b := DefaultConfig()
	b.Rules = map[string]string{"CS3602": "must", "CS3301": "off"}
	if a.Digest() != b.Digest() {
		t.Fatalf("digest depends on map order")
	}
	b.Rules["CS3302"] = "off"
	if a.Digest() == b.Digest() {
		t.Fatalf("digest ignores rule entries")
	}
}
