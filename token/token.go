// Package token defines the immutable tokens consumed by the recognizer.
package token

import "fmt"

// Type tags tokens and AST nodes. Token types and rules share this space.
type Type interface {
	Name() string
}

// Kind is a Type identified by its name.
type Kind string

func (k Kind) Name() string {
	return string(k)
}

func (k Kind) String() string {
	return string(k)
}

const (
	EOF        Kind = "EOF"
	Identifier Kind = "IDENTIFIER"
	Literal    Kind = "LITERAL"
	Constant   Kind = "CONSTANT"
	Comment    Kind = "COMMENT"
	Punctuator Kind = "PUNCTUATOR"
	Unknown    Kind = "UNKNOWN"
)

// Flags records where the text of a token came from.
type Flags uint8

const (
	// FromInclude marks text pulled in from another source, such as an
	// included or copied file.
	FromInclude Flags = 1 << iota
	// Generated marks text synthesized by a preprocessor.
	Generated
)

type Token struct {
	Type   Type
	Value  string
	Line   int
	Column int
	Offset int
	Flags  Flags
}

func NewEOF(offset, line, column int) Token {
	return Token{Type: EOF, Value: "EOF", Line: line, Column: column, Offset: offset}
}

func (t Token) Is(typ Type) bool {
	return t.Type == typ
}

func (t Token) IsEOF() bool {
	return t.Type == EOF
}

func (t Token) IsIncluded() bool {
	return t.Flags&FromInclude != 0
}

func (t Token) IsGenerated() bool {
	return t.Flags&Generated != 0
}

func (t Token) String() string {
	name := "<nil>"
	if t.Type != nil {
		name = t.Type.Name()
	}
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, name, t.Value)
}
