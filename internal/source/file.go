// Package source holds the immutable per-file input to a compilation: the
// raw text plus a line index used to turn byte offsets into 1-based line
// numbers for diagnostics.
package source

import "strings"

// LineIndex maps a byte offset within Code to a 1-based line number.
// It is built once per File and never mutated.
type LineIndex struct {
	// starts[i] is the byte offset at which line i+1 begins.
	starts []int
}

func NewLineIndex(code string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Find returns the 1-based line number containing the given byte offset.
func (li *LineIndex) Find(offset int) int {
	lo, hi := 0, len(li.starts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if li.starts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// Highlight returns the trimmed source text of the line containing offset.
func (li *LineIndex) Highlight(code string, offset int) string {
	line := li.Find(offset)
	start := li.starts[line-1]
	end := len(code)
	if line < len(li.starts) {
		end = li.starts[line] - 1
	}
	if start > len(code) {
		return ""
	}
	if end > len(code) {
		end = len(code)
	}
	return strings.TrimSpace(code[start:end])
}

// File is the immutable input to one compilation. A new File is created
// whenever the code for a path changes; the old File and any results
// derived from it are discarded (see session.Session.Compile).
type File struct {
	Path  string
	Code  string
	Lines *LineIndex
}

func New(path, code string) *File {
	return &File{Path: path, Code: code, Lines: NewLineIndex(code)}
}

// Column returns the 1-based column of offset within its line.
func (f *File) Column(offset int) int {
	line := f.Lines.Find(offset)
	start := f.Lines.starts[line-1]
	return offset - start + 1
}
