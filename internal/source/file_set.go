package source

import (
	"os"
	"sort"
)

// FileSet owns every source file seen by one compilation and resolves spans
// back to line/column positions for diagnostics.
type FileSet struct {
	files []*File
}

func NewFileSet() *FileSet {
	return &FileSet{
		// Index 0 is reserved so that NoFileID never resolves.
		files: make([]*File, 1, 8),
	}
}

// Add registers a file with the given content and returns its ID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id := FileID(len(fs.files))
	f := &File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	}
	fs.files = append(fs.files, f)
	return id
}

// Load reads path from disk and registers it.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	return fs.Add(path, content, 0), nil
}

// AddVirtual registers an in-memory file (tests, stdin).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

func (fs *FileSet) Get(id FileID) *File {
	if fs == nil || int(id) <= 0 || int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

// Resolve maps a span to 1-based line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	return f.lineCol(span.Start), f.lineCol(span.End)
}

func (f *File) lineCol(offset uint32) LineCol {
	if len(f.LineIdx) == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	lineStart := uint32(0)
	if line > 0 {
		lineStart = f.LineIdx[line-1]
	}
	return LineCol{Line: uint32(line) + 1, Col: offset - lineStart + 1}
}

// buildLineIndex records the offset just past each newline.
func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)+1)
		}
	}
	return idx
}
