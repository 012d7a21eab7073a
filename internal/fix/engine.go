package fix

import (
	"errors"
	"fmt"
	"sort"

	"cstrict/internal/diag"
	"cstrict/internal/source"
)

// ErrNoFixes is returned when the diagnostics carried no applicable fixes.
var ErrNoFixes = errors.New("no applicable fixes found")

// Applied records one successfully applied fix.
type Applied struct {
	Code      diag.Code
	Title     string
	Primary   source.Span
	EditCount int
}

// Dropped captures a fix that was not applied, with a reason.
type Dropped struct {
	Code    diag.Code
	Title   string
	Primary source.Span
	Reason  string
}

// Result aggregates applied fixes, dropped ones, and the rewritten buffers.
// Buffers holds the full new content for every file that changed; the
// engine never touches disk.
type Result struct {
	Applied []Applied
	Dropped []Dropped
	Buffers map[source.FileID][]byte

	fixed map[fixKey]bool
}

type fixKey struct {
	code diag.Code
	span source.Span
}

// Fixed reports whether a diagnostic with the given code and primary span
// had one of its fixes applied.
func (r *Result) Fixed(code diag.Code, span source.Span) bool {
	return r.fixed[fixKey{code, span}]
}

type candidate struct {
	d     diag.Diagnostic
	fix   diag.Fix
	order int
}

// Apply collects the fixes attached to diagnostics, drops any fix whose
// edits overlap a higher-priority fix (MUST outranks SHOULD), and applies
// the survivors to in-memory copies of the file buffers in a single
// descending-offset rewrite per file.
//
// Application is transactional per file: if any edit fails its guard or
// falls out of range, the whole fix set for that file is discarded and
// every fix in it is reported as dropped.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic) (*Result, error) {
	res := &Result{
		Applied: make([]Applied, 0),
		Dropped: make([]Dropped, 0),
		Buffers: make(map[source.FileID][]byte),
		fixed:   make(map[fixKey]bool),
	}
	if fs == nil {
		return res, fmt.Errorf("fix: FileSet is nil")
	}

	cands := gatherCandidates(diagnostics)
	if len(cands) == 0 {
		return res, ErrNoFixes
	}
	sortCandidates(cands)

	accepted := make(map[source.FileID][]candidate)
	taken := make(map[source.FileID][]diag.TextEdit)

	for _, c := range cands {
		fileID, reason := fixFile(c.fix)
		if reason == "" && conflictsWithTaken(taken[fileID], c.fix.Edits) {
			reason = "overlaps a higher-priority edit"
		}
		if reason != "" {
			res.Dropped = append(res.Dropped, Dropped{
				Code:    c.d.Code,
				Title:   c.fix.Title,
				Primary: c.d.Primary,
				Reason:  reason,
			})
			continue
		}
		accepted[fileID] = append(accepted[fileID], c)
		taken[fileID] = append(taken[fileID], c.fix.Edits...)
	}

	for _, fileID := range sortedFileIDs(accepted) {
		buf, err := rewrite(fs.Get(fileID).Content, taken[fileID])
		if err != nil {
			for _, c := range accepted[fileID] {
				res.Dropped = append(res.Dropped, Dropped{
					Code:    c.d.Code,
					Title:   c.fix.Title,
					Primary: c.d.Primary,
					Reason:  fmt.Sprintf("fix set discarded: %v", err),
				})
			}
			continue
		}
		res.Buffers[fileID] = buf
		for _, c := range accepted[fileID] {
			res.Applied = append(res.Applied, Applied{
				Code:      c.d.Code,
				Title:     c.fix.Title,
				Primary:   c.d.Primary,
				EditCount: len(c.fix.Edits),
			})
			res.fixed[fixKey{c.d.Code, c.d.Primary}] = true
		}
	}

	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}
	return res, nil
}

func gatherCandidates(diagnostics []diag.Diagnostic) []candidate {
	cands := make([]candidate, 0)
	order := 0
	for _, d := range diagnostics {
		for _, f := range d.Fixes {
			if len(f.Edits) == 0 {
				continue
			}
			cands = append(cands, candidate{d: d, fix: f, order: order})
			order++
		}
	}
	return cands
}

// sortCandidates orders candidates for conflict resolution: higher
// severity first, then by file, span, code, and insertion order so the
// outcome is deterministic regardless of rule scheduling.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		di, dj := cands[i].d, cands[j].d
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		return cands[i].order < cands[j].order
	})
}

// fixFile returns the single file a fix targets, or a drop reason. A fix
// is applied atomically, so edits crossing file boundaries are rejected.
func fixFile(f diag.Fix) (source.FileID, string) {
	fileID := f.Edits[0].Span.File
	for _, e := range f.Edits[1:] {
		if e.Span.File != fileID {
			return 0, "edits span multiple files"
		}
	}
	for i, a := range f.Edits {
		for _, b := range f.Edits[i+1:] {
			if editsConflict(a, b) {
				return 0, "fix edits overlap each other"
			}
		}
	}
	return fileID, ""
}

func conflictsWithTaken(taken []diag.TextEdit, edits []diag.TextEdit) bool {
	for _, prev := range taken {
		for _, cand := range edits {
			if editsConflict(prev, cand) {
				return true
			}
		}
	}
	return false
}

// editsConflict treats spans as half-open [Start, End). Two zero-length
// inserts never conflict; an insert conflicts with a replacement only when
// it lands strictly inside it.
func editsConflict(a, b diag.TextEdit) bool {
	aStart, aEnd := a.Span.Start, a.Span.End
	bStart, bEnd := b.Span.Start, b.Span.End
	if aStart == aEnd && bStart == bEnd {
		return false
	}
	if aStart == aEnd {
		return bStart < aStart && aStart < bEnd
	}
	if bStart == bEnd {
		return aStart < bStart && bStart < aEnd
	}
	return aStart < bEnd && bStart < aEnd
}

// rewrite applies all edits to a copy of content in one pass, highest
// offset first so earlier spans stay valid. Any guard mismatch or
// out-of-range span fails the whole rewrite.
func rewrite(content []byte, edits []diag.TextEdit) ([]byte, error) {
	working := append([]byte(nil), content...)

	sorted := append([]diag.TextEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start == sorted[j].Span.Start {
			return sorted[i].Span.End > sorted[j].Span.End
		}
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	for _, e := range sorted {
		start, end := int(e.Span.Start), int(e.Span.End)
		if start < 0 || end < start || end > len(working) {
			return nil, fmt.Errorf("edit span %s out of range", e.Span)
		}
		if e.OldText != "" && string(working[start:end]) != e.OldText {
			return nil, fmt.Errorf("buffer at %s does not match expected text", e.Span)
		}
		suffix := append([]byte(nil), working[end:]...)
		working = append(append(working[:start], []byte(e.NewText)...), suffix...)
	}
	return working, nil
}

func sortedFileIDs(m map[source.FileID][]candidate) []source.FileID {
	ids := make([]source.FileID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
