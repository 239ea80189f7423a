// Package diag renders recognition failures against their source text.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/parse"
)

// Diagnostic is one reportable failure. Pos is zero when the error carries
// no source position.
type Diagnostic struct {
	File    string
	Pos     input.Position
	Message string
}

// FromError locates err in buf. Only recognition errors have a position.
func FromError(file string, buf *input.Buffer, err error) Diagnostic {
	var re *parse.RecognitionError
	if !errors.As(err, &re) {
		return Diagnostic{File: file, Message: err.Error()}
	}
	offset := min(max(re.Token.Offset, 0), buf.Len())
	return Diagnostic{File: file, Pos: buf.Position(offset), Message: re.Message()}
}

func (d Diagnostic) HasPosition() bool {
	return d.Pos.Line > 0
}

func (d Diagnostic) String() string {
	if !d.HasPosition() {
		return fmt.Sprintf("%s: %s", d.File, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Pos.Line, d.Pos.Column, d.Message)
}

// Format renders err as a diagnostic line followed by the offending source
// line and a caret under the failing column.
func Format(file string, buf *input.Buffer, err error) string {
	d := FromError(file, buf, err)
	if !d.HasPosition() {
		return d.String() + "\n"
	}
	return d.String() + "\n" + Context(buf, d.Pos, 0)
}

// Context shows the lines around pos with line numbers, marking the line of
// pos with an arrow and its column with a caret.
func Context(buf *input.Buffer, pos input.Position, contextLines int) string {
	if pos.Line < 1 || pos.Line > buf.LineCount() {
		return ""
	}
	start := max(pos.Line-contextLines, 1)
	end := min(pos.Line+contextLines, buf.LineCount())
	width := len(fmt.Sprint(end))

	var sb strings.Builder
	for n := start; n <= end; n++ {
		line := buf.ExtractLine(n)
		prefix := "  "
		if n == pos.Line {
			prefix = "->"
		}
		fmt.Fprintf(&sb, "%s %*d | %s\n", prefix, width, n, line)

		if n == pos.Line && pos.Column > 0 {
			fmt.Fprintf(&sb, "   %s | %s^\n", strings.Repeat(" ", width), indent(line, pos.Column-1))
		}
	}
	return sb.String()
}

// indent blanks the first n bytes of line, keeping tabs so the caret lines
// up. Columns past the end of the line put the caret right after it.
func indent(line string, n int) string {
	n = min(n, len(line))
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
