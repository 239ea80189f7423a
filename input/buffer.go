// Package input indexes raw source text so byte offsets can be mapped to
// line and column numbers for diagnostics.
package input

import (
	"fmt"
	"sort"
)

// Position is a 1-based line and column. Columns count bytes, not runes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Buffer is an immutable view over source text with an index of line starts.
type Buffer struct {
	data []byte

	// lines holds the offset of the first byte of every line, followed by
	// len(data) as a sentinel.
	lines []int
}

func New(data []byte) *Buffer {
	lines := []int{0}
	for i := 0; i < len(data); i++ {
		if isEndOfLine(data, i) {
			lines = append(lines, i+1)
		}
	}
	lines = append(lines, len(data))
	return &Buffer{data: data, lines: lines}
}

func NewString(s string) *Buffer {
	return New([]byte(s))
}

// isEndOfLine reports whether data[i] terminates a line. A '\r' directly
// followed by '\n' is not a terminator on its own; the '\n' is.
func isEndOfLine(data []byte, i int) bool {
	switch data[i] {
	case '\n':
		return true
	case '\r':
		return i+1 == len(data) || data[i+1] != '\n'
	}
	return false
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) At(i int) byte {
	return b.data[i]
}

func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) LineCount() int {
	return len(b.lines) - 1
}

// ExtractLine returns the text of the 1-based line n without its terminator.
func (b *Buffer) ExtractLine(n int) string {
	if n < 1 || n > b.LineCount() {
		panic(fmt.Sprintf("input: line %d out of range [1, %d]", n, b.LineCount()))
	}
	start, end := b.lines[n-1], b.lines[n]
	if end > start && b.data[end-1] == '\n' {
		end--
	}
	if end > start && b.data[end-1] == '\r' {
		end--
	}
	return string(b.data[start:end])
}

// Position maps a byte offset to its line and column. An offset equal to
// Len() resolves to the position just past the last byte.
func (b *Buffer) Position(i int) Position {
	if i < 0 || i > len(b.data) {
		panic(fmt.Sprintf("input: offset %d out of range [0, %d]", i, len(b.data)))
	}
	line := b.lineNumber(i)
	return Position{Line: line, Column: i - b.lines[line-1] + 1}
}

func (b *Buffer) lineNumber(i int) int {
	idx := sort.SearchInts(b.lines, i)
	line := idx
	if idx < len(b.lines) && b.lines[idx] == i {
		line = idx + 1
	}
	return min(line, b.LineCount())
}
