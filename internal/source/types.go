package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileHeader marks a .h file; include-guard rules only apply to these.
	FileHeader
)

// File captures metadata and content for a single source file.
// Content is read-only after load; the fix pipeline produces new buffers
// via ReplaceContent rather than mutating in place.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// IsHeader reports whether the file was loaded as a C header.
func (f *File) IsHeader() bool {
	return f.Flags&FileHeader != 0
}
