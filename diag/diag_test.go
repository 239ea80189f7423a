package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/parse"
	"github.com/dhamidi/recognizer/token"
)

const source = "public class Foo {\n  int x\n}"

func failure(value string, offset int) error {
	return &parse.RecognitionError{
		Index:   6,
		Token:   token.Token{Type: token.Punctuator, Value: value, Offset: offset},
		Matcher: parse.Value(";"),
	}
}

func TestFormat(t *testing.T) {
	buf := input.NewString(source)
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"recognition error",
			failure("}", 27),
			"Foo.java:3:1: expected \";\" but got \"}\"\n-> 3 | }\n     | ^\n",
		},
		{
			"wrapped recognition error",
			fmt.Errorf("parse: %w", failure("x", 25)),
			"Foo.java:2:7: expected \";\" but got \"x\"\n-> 2 |   int x\n     |       ^\n",
		},
		{
			"other error",
			errors.New("grammar is broken"),
			"Foo.java: grammar is broken\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format("Foo.java", buf, tt.err); got != tt.want {
				t.Errorf("Format() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestContextLines(t *testing.T) {
	buf := input.NewString(source)
	got := Context(buf, input.Position{Line: 2, Column: 7}, 1)
	want := "   1 | public class Foo {\n-> 2 |   int x\n     |       ^\n   3 | }\n"
	if got != want {
		t.Errorf("Context() =\n%s\nwant\n%s", got, want)
	}
	if got := Context(buf, input.Position{Line: 9, Column: 1}, 1); got != "" {
		t.Errorf("out of range position should render nothing, got %q", got)
	}
}

func TestContextKeepsTabs(t *testing.T) {
	buf := input.NewString("\tx")
	want := "-> 1 | \tx\n     | \t^\n"
	if got := Context(buf, input.Position{Line: 1, Column: 2}, 0); got != want {
		t.Errorf("Context() = %q, want %q", got, want)
	}
}

func TestFromErrorAtEndOfInput(t *testing.T) {
	buf := input.NewString("ab")
	err := &parse.RecognitionError{Token: token.NewEOF(2, 1, 3), Matcher: parse.Token(token.Identifier)}
	d := FromError("f", buf, err)
	if d.Pos != (input.Position{Line: 1, Column: 3}) {
		t.Errorf("Pos = %v, want 1:3", d.Pos)
	}
	if d.String() != "f:1:3: expected IDENTIFIER but got end of input" {
		t.Errorf("String() = %q", d.String())
	}
}
