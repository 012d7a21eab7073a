package driver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"cstrict/internal/diag"
	"cstrict/internal/rules"
)

// ErrConfig marks a configuration problem. It fails the whole run:
// silently ignoring a typo'd override could mask a MUST check.
var ErrConfig = errors.New("configuration error")

// Config is the cstrict.toml schema. Rule entries map an external rule
// ID to "off" or to a replacement severity ("must", "should", "info").
type Config struct {
	MaxDiagnostics int               `toml:"max_diagnostics"`
	Limits         LimitsConfig      `toml:"limits"`
	Rules          map[string]string `toml:"rules"`
}

// LimitsConfig overrides individual analysis knobs; zero means default.
type LimitsConfig struct {
	LineLength        int `toml:"line_length"`
	PathBudget        int `toml:"path_budget"`
	PathVisits        int `toml:"path_visits"`
	ModuleStateBudget int `toml:"module_state_budget"`
	CondDepth         int `toml:"cond_depth"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{MaxDiagnostics: 200}
}

// LoadConfig reads and decodes a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("%w: %s: unknown key %q", ErrConfig, path, undec[0].String())
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = 200
	}
	return cfg, nil
}

// ToLimits merges the configured knobs over the defaults.
func (c *Config) ToLimits() rules.Limits {
	l := rules.DefaultLimits()
	if c.Limits.LineLength > 0 {
		l.LineLength = c.Limits.LineLength
	}
	if c.Limits.PathBudget > 0 {
		l.PathBudget = c.Limits.PathBudget
	}
	if c.Limits.PathVisits > 0 {
		l.PathVisits = c.Limits.PathVisits
	}
	if c.Limits.ModuleStateBudget > 0 {
		l.ModuleStateBudget = c.Limits.ModuleStateBudget
	}
	if c.Limits.CondDepth > 0 {
		l.CondDepth = c.Limits.CondDepth
	}
	return l
}

// Overrides validates the rule entries against the catalog and converts
// them into severity overrides. Unknown IDs and unknown severity words
// are fatal.
func (c *Config) Overrides(reg *rules.Registry) (map[diag.Code]diag.SeverityOverride, error) {
	if len(c.Rules) == 0 {
		return nil, nil
	}
	out := make(map[diag.Code]diag.SeverityOverride, len(c.Rules))
	for _, id := range sortedKeys(c.Rules) {
		code, err := reg.ResolveID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		value := c.Rules[id]
		if value == "off" {
			out[code] = diag.SeverityOverride{Disabled: true}
			continue
		}
		sev, ok := diag.ParseSeverity(value)
		if !ok {
			return nil, fmt.Errorf("%w: rule %s: bad severity %q", ErrConfig, id, value)
		}
		out[code] = diag.SeverityOverride{Severity: sev}
	}
	return out, nil
}

// Digest hashes the effective configuration for cache keying. Rule keys
// are folded in sorted order so the digest is stable.
func (c *Config) Digest() [32]byte {
	h := sha256.New()
	fmt.Fprintf(h, "max=%d;limits=%+v;", c.MaxDiagnostics, c.Limits)
	for _, id := range sortedKeys(c.Rules) {
		fmt.Fprintf(h, "%s=%s;", id, c.Rules[id])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FindConfig looks for cstrict.toml in dir, returning the empty string
// when absent.
func FindConfig(dir string) string {
	p := filepath.Join(dir, "cstrict.toml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
