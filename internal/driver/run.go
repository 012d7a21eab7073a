package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cstrict/internal/diag"
	"cstrict/internal/fix"
	"cstrict/internal/observ"
	"cstrict/internal/report"
	"cstrict/internal/rules"
	"cstrict/internal/source"
)

// Options configure one batch run.
type Options struct {
	Config *Config
	Jobs   int  // worker count, <=0 means GOMAXPROCS
	Fix    bool // apply fixes and return rewritten buffers
	Timer  *observ.Timer
	Cache  *DiskCache // nil disables the result cache
}

// FileResult is the outcome for one file. Buffer is non-nil only when
// fixes were applied; persisting it is the caller's job.
type FileResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Report report.FileReport
	Buffer []byte
}

// RunResult is the whole-batch outcome with files in path order.
type RunResult struct {
	FileSet *source.FileSet
	Files   []FileResult
	Audit   report.Audit
}

// listCFiles returns every .c and .h file under dir, sorted for a
// deterministic batch order.
func listCFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".c" || ext == ".h" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Run audits every C file under dir. Files are analyzed in parallel;
// each file's pipeline is independent and the merge at the end is the
// only synchronization point. A cancelled context drops files that had
// not finished rather than reporting them partially.
func Run(ctx context.Context, dir string, opts Options) (*RunResult, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	reg := rules.Default()
	overrides, err := cfg.Overrides(reg)
	if err != nil {
		return nil, err
	}
	ropts := rules.Options{Limits: cfg.ToLimits(), Overrides: overrides}

	var loadPhase int
	if opts.Timer != nil {
		loadPhase = opts.Timer.Begin("load")
	}

	files, err := listCFiles(dir)
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	res := &RunResult{FileSet: fileSet}
	if len(files) == 0 {
		return res, nil
	}

	ids := make([]source.FileID, len(files))
	loadErrs := make([]error, len(files))
	for i, path := range files {
		ids[i], loadErrs[i] = fileSet.Load(path)
	}

	if opts.Timer != nil {
		opts.Timer.End(loadPhase, "")
		defer func(idx int) { opts.Timer.End(idx, "") }(opts.Timer.Begin("analyze"))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	cfgDigest := cfg.Digest()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			bag := diag.NewBag(cfg.MaxDiagnostics)
			results[i] = FileResult{Path: path, FileID: ids[i], Bag: bag}

			if loadErrs[i] != nil {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevMust,
					Code:     diag.UnknownCode,
					Message:  "failed to load file: " + loadErrs[i].Error(),
				})
				return nil
			}

			file := fileSet.Get(ids[i])

			// The cache is bypassed in fix mode: cached findings do
			// not carry their edits.
			if !opts.Fix && opts.Cache != nil {
				if cached, ok := opts.Cache.Get(cacheKey(file.Hash, cfgDigest)); ok {
					restoreFindings(bag, ids[i], cached)
					return nil
				}
			}

			if err := rules.Analyze(gctx, file, reg, ropts, diag.BagReporter{Bag: bag}); err != nil {
				return err
			}
			bag.Sort()
			bag.Dedup()

			if !opts.Fix && opts.Cache != nil {
				_ = opts.Cache.Put(cacheKey(file.Hash, cfgDigest), snapshotFindings(bag))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}

	// Fixing runs strictly after analysis, one writer over all buffers.
	var fixed map[source.FileID]*fix.Result
	if opts.Fix {
		fixed = applyFixes(ctx, fileSet, reg, ropts, results)
	}

	perFile := make([]report.FileReport, 0, len(results))
	for i := range results {
		r := &results[i]
		var fixedFn report.FixedFunc
		if fr := fixed[r.FileID]; fr != nil {
			r.Buffer = fr.Buffers[r.FileID]
			fixedFn = fr.Fixed
		}
		r.Report = report.BuildFile(fileSet, r.FileID, r.Bag, fixedFn)
		perFile = append(perFile, r.Report)
	}

	res.Files = results
	res.Audit = report.Merge(perFile)
	return res, nil
}

// applyFixes rewrites each file's buffer in memory and re-analyzes it;
// a rewrite that does not strictly reduce the MUST count is reverted.
func applyFixes(ctx context.Context, fileSet *source.FileSet, reg *rules.Registry, ropts rules.Options, results []FileResult) map[source.FileID]*fix.Result {
	out := make(map[source.FileID]*fix.Result)
	for i := range results {
		if ctx.Err() != nil {
			return out
		}
		r := &results[i]
		fres, err := fix.Apply(fileSet, r.Bag.Items())
		if err != nil {
			continue
		}
		buf, ok := fres.Buffers[r.FileID]
		if !ok {
			continue
		}

		before := r.Bag
		original := fileSet.Get(r.FileID).Content
		fileSet.ReplaceContent(r.FileID, buf)

		after := diag.NewBag(uint16Cap(before))
		if err := rules.Analyze(ctx, fileSet.Get(r.FileID), reg, ropts, diag.BagReporter{Bag: after}); err == nil && !regressed(before, after) {
			out[r.FileID] = fres
			fileSet.ReplaceContent(r.FileID, original)
			continue
		}
		fileSet.ReplaceContent(r.FileID, original)
	}
	return out
}

// regressed reports whether the rewritten buffer carries more MUST
// findings of any code than the original did.
func regressed(before, after *diag.Bag) bool {
	counts := make(map[diag.Code]int)
	for _, d := range before.Items() {
		if d.Severity == diag.SevMust {
			counts[d.Code]++
		}
	}
	for _, d := range after.Items() {
		if d.Severity == diag.SevMust {
			counts[d.Code]--
			if counts[d.Code] < 0 {
				return true
			}
		}
	}
	return false
}

func uint16Cap(b *diag.Bag) int {
	return int(b.Cap())
}
