package lsp

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/recognizer/ebnf/grammar"
	"github.com/dhamidi/recognizer/ebnflex"
)

const javaGrammar = `
JavaClassDefinition = "public" ( "class" | "interface" ) WORD [ Body ] .
Body = "{" { Member } "}" .
Member = WORD WORD ";" .
WORD = letter { letter } .
WS = ( " " | "\n" ) { " " | "\n" } .
letter = "a" … "z" | "A" … "Z" .
`

func compiled(t *testing.T) *grammar.Compiled {
	t.Helper()
	g, err := ebnflex.ParseGrammar("java.ebnf", strings.NewReader(javaGrammar))
	if err != nil {
		t.Fatal(err)
	}
	c, err := grammar.Compile(g, "JavaClassDefinition")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCheck(t *testing.T) {
	c := compiled(t)
	tests := []struct {
		name    string
		text    string
		message string
		start   protocol.Position
		end     protocol.Position
	}{
		{
			name:    "end of input",
			text:    "public class",
			message: "expected WORD but got end of input in JavaClassDefinition",
			start:   protocol.Position{Line: 0, Character: 12},
			end:     protocol.Position{Line: 0, Character: 12},
		},
		{
			name:    "deepest failure",
			text:    "public class Foo {\n  int x\n}",
			message: `expected ";" but got "}" in Member`,
			start:   protocol.Position{Line: 2, Character: 0},
			end:     protocol.Position{Line: 2, Character: 1},
		},
		{
			name:    "non-ASCII token",
			text:    "public class é",
			message: `expected WORD but got "é" in JavaClassDefinition`,
			start:   protocol.Position{Line: 0, Character: 13},
			end:     protocol.Position{Line: 0, Character: 14},
		},
		{
			name:    "wrong keyword",
			text:    "public struct Foo",
			message: `expected "class" but got "struct" in JavaClassDefinition`,
			start:   protocol.Position{Line: 0, Character: 7},
			end:     protocol.Position{Line: 0, Character: 13},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Check(c, []string{"WS"}, "Foo.java", tt.text)
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(diags))
			}
			d := diags[0]
			if d.Message != tt.message {
				t.Errorf("Message = %q, want %q", d.Message, tt.message)
			}
			if d.Range.Start != tt.start || d.Range.End != tt.end {
				t.Errorf("Range = %+v, want %+v..%+v", d.Range, tt.start, tt.end)
			}
			if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
				t.Errorf("Severity = %v, want error", d.Severity)
			}
			if d.Source == nil || *d.Source != "recognizer" {
				t.Errorf("Source = %v", d.Source)
			}
		})
	}
}

func TestCheckValid(t *testing.T) {
	diags := Check(compiled(t), []string{"WS"}, "Foo.java", "public class Foo {\n  int x;\n}")
	if diags == nil || len(diags) != 0 {
		t.Errorf("got %v, want an empty non-nil slice", diags)
	}
}

func TestUTF16Offset(t *testing.T) {
	tests := []struct {
		line string
		n    int
		want protocol.UInteger
	}{
		{"abc", 2, 2},
		{"Grüße x", 8, 6},
		{"a😀b", 5, 3},
		{"ab", 10, 2},
	}
	for _, tt := range tests {
		if got := utf16Offset(tt.line, tt.n); got != tt.want {
			t.Errorf("utf16Offset(%q, %d) = %d, want %d", tt.line, tt.n, got, tt.want)
		}
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/user/Foo.java", "/home/user/Foo.java"},
		{"file:///tmp/a%20b/../Bar.java", "/tmp/Bar.java"},
		{"/already/a/path", "/already/a/path"},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil {
			t.Fatalf("uriToPath(%q): %v", tt.uri, err)
		}
		if got != tt.want {
			t.Errorf("uriToPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
