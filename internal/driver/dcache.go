package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

// Bump when CachedAudit changes shape.
const cacheSchemaVersion uint16 = 1

// DiskCache memoizes per-file audit results keyed by a digest of the
// file content and the effective configuration. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedFinding is one diagnostic in its serialized form. Fix edits are
// not cached; fix mode bypasses the cache entirely.
type CachedFinding struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Message  string
	Notes    []CachedNote
}

// CachedNote is a serialized secondary location.
type CachedNote struct {
	Start   uint32
	End     uint32
	Message string
}

// CachedAudit is the on-disk payload for one file.
type CachedAudit struct {
	Schema   uint16
	Findings []CachedFinding
}

// OpenDiskCache initializes the cache under the XDG cache directory.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes the cache at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// cacheKey folds the file content hash and the configuration digest
// into one cache key.
func cacheKey(contentHash, configDigest [32]byte) [32]byte {
	h := sha256.New()
	h.Write(contentHash[:])
	h.Write(configDigest[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (c *DiskCache) pathFor(key [32]byte) string {
	return filepath.Join(c.dir, "audits", hex.EncodeToString(key[:])+".mp")
}

// Put atomically writes a payload.
func (c *DiskCache) Put(key [32]byte, payload *CachedAudit) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload, reporting a miss for absent files and stale
// schema versions alike.
func (c *DiskCache) Get(key [32]byte) (*CachedAudit, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return nil, false
	}
	defer func() { _ = f.Close() }()

	var payload CachedAudit
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false
	}
	return &payload, true
}

// DropAll invalidates the whole cache.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.RemoveAll(filepath.Join(c.dir, "audits"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// snapshotFindings serializes a bag for caching.
func snapshotFindings(bag *diag.Bag) *CachedAudit {
	payload := &CachedAudit{Schema: cacheSchemaVersion}
	for _, d := range bag.Items() {
		cf := CachedFinding{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			cf.Notes = append(cf.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Message: n.Msg})
		}
		payload.Findings = append(payload.Findings, cf)
	}
	return payload
}

// restoreFindings rebuilds a bag from a cached payload, rebinding spans
// to the current FileID.
func restoreFindings(bag *diag.Bag, id source.FileID, payload *CachedAudit) {
	for _, cf := range payload.Findings {
		d := diag.Diagnostic{
			Severity: diag.Severity(cf.Severity),
			Code:     diag.Code(cf.Code),
			Message:  cf.Message,
			Primary:  source.Span{File: id, Start: cf.Start, End: cf.End},
		}
		for _, n := range cf.Notes {
			d.Notes = append(d.Notes, diag.Note{
				Span: source.Span{File: id, Start: n.Start, End: n.End},
				Msg:  n.Message,
			})
		}
		bag.Add(d)
	}
}
