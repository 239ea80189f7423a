package input

import (
	"strings"
	"testing"
)

func TestLineCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"foo", 1},
		{"foo\n", 2},
		{"foo\nbar", 2},
		{"foo\rbar", 2},
		{"foo\r\nbar", 2},
		{"\r\n\r\n", 3},
		{"\n\r\r\n", 4},
		{"a\rb\nc\r\nd", 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NewString(tt.input).LineCount(); got != tt.want {
				t.Errorf("LineCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExtractLineRoundTrip(t *testing.T) {
	lines := []string{"public class Foo {", "", "  int x;", "}"}
	for _, sep := range []string{"\n", "\r", "\r\n"} {
		t.Run(strings.NewReplacer("\r", `\r`, "\n", `\n`).Replace(sep), func(t *testing.T) {
			buf := NewString(strings.Join(lines, sep))
			if buf.LineCount() != len(lines) {
				t.Fatalf("LineCount() = %d, want %d", buf.LineCount(), len(lines))
			}
			for i, want := range lines {
				if got := buf.ExtractLine(i + 1); got != want {
					t.Errorf("ExtractLine(%d) = %q, want %q", i+1, got, want)
				}
			}
		})
	}
}

func TestExtractLineMixedTerminators(t *testing.T) {
	buf := NewString("a\rb\nc\r\nd")
	want := []string{"a", "b", "c", "d"}
	for i, w := range want {
		if got := buf.ExtractLine(i + 1); got != w {
			t.Errorf("ExtractLine(%d) = %q, want %q", i+1, got, w)
		}
	}
}

func TestPosition(t *testing.T) {
	buf := NewString("ab\ncd\r\nef\rg")

	tests := []struct {
		index int
		want  Position
	}{
		{0, Position{1, 1}},
		{1, Position{1, 2}},
		{2, Position{1, 3}},
		{3, Position{2, 1}},
		{5, Position{2, 3}},
		{6, Position{2, 4}},
		{7, Position{3, 1}},
		{9, Position{3, 3}},
		{10, Position{4, 1}},
		{11, Position{4, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := buf.Position(tt.index); got != tt.want {
				t.Errorf("Position(%d) = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}

func TestPositionTrailingTerminator(t *testing.T) {
	buf := NewString("foo\n")
	if got, want := buf.Position(4), (Position{2, 1}); got != want {
		t.Errorf("Position(4) = %v, want %v", got, want)
	}
	if got := buf.ExtractLine(2); got != "" {
		t.Errorf("ExtractLine(2) = %q, want empty", got)
	}
}

func TestPositionMonotonic(t *testing.T) {
	buf := NewString("line one\r\nline two\rline three\n\nlast")

	prev := buf.Position(0)
	for i := 1; i <= buf.Len(); i++ {
		pos := buf.Position(i)
		if pos.Line < prev.Line {
			t.Fatalf("line decreased at %d: %v after %v", i, pos, prev)
		}
		if pos.Line == prev.Line && pos.Column <= prev.Column {
			t.Fatalf("column not increasing at %d: %v after %v", i, pos, prev)
		}
		prev = pos
	}
}

func TestPositionOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-range offset")
		}
	}()
	NewString("abc").Position(4)
}

func TestRawAccess(t *testing.T) {
	buf := NewString("xyz")
	if buf.Len() != 3 {
		t.Errorf("Len() = %d, want 3", buf.Len())
	}
	if buf.At(1) != 'y' {
		t.Errorf("At(1) = %q, want 'y'", buf.At(1))
	}
}
