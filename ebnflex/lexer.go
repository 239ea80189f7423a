// Package ebnflex provides lexical scanning based on EBNF grammars.
//
// Productions whose names are all upper case (WORD, WS, COMMENT) are token
// productions. At each offset the lexer emits the longest token production
// match. Literal strings used by the other, syntactic productions are lexed
// as punctuators when no token production matches a longer prefix.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/token"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

const noMatch = -1

// Lexer tokenizes input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	tokens   []string
	literals []string
	ignore   map[string]bool

	buf      *input.Buffer
	filename string
	pos      int

	memo     map[memoKey]int  // match length, or noMatch
	visiting map[memoKey]bool // cycle detection
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, buf *input.Buffer, filename string) *Lexer {
	return &Lexer{
		grammar:  grammar,
		tokens:   TokenNames(grammar),
		literals: Literals(grammar),
		ignore:   make(map[string]bool),
		buf:      buf,
		filename: filename,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return ParseGrammar(filename, f)
}

func ParseGrammar(filename string, r io.Reader) (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

// IsTokenName reports whether name denotes a token production: an upper
// case letter followed by upper case letters, digits or underscores.
func IsTokenName(name string) bool {
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range name {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

// IsLexicalName reports whether name denotes a lexical helper production,
// one that may only be referenced from token productions.
func IsLexicalName(name string) bool {
	first, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(first)
}

// TokenNames returns the token productions of grammar in sorted order.
func TokenNames(grammar ebnf.Grammar) []string {
	var names []string
	for name, prod := range grammar {
		if prod.Expr != nil && IsTokenName(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Literals returns the literal strings used by syntactic productions,
// longest first.
func Literals(grammar ebnf.Grammar) []string {
	seen := make(map[string]bool)
	for name, prod := range grammar {
		if IsTokenName(name) || IsLexicalName(name) {
			continue
		}
		collectLiterals(prod.Expr, seen)
	}
	out := make([]string, 0, len(seen))
	for lit := range seen {
		out = append(out, lit)
	}
	slices.SortFunc(out, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	return out
}

func collectLiterals(expr ebnf.Expression, seen map[string]bool) {
	switch e := expr.(type) {
	case *ebnf.Token:
		if e.String != "" {
			seen[e.String] = true
		}
	case ebnf.Sequence:
		for _, item := range e {
			collectLiterals(item, seen)
		}
	case ebnf.Alternative:
		for _, alt := range e {
			collectLiterals(alt, seen)
		}
	case *ebnf.Group:
		collectLiterals(e.Body, seen)
	case *ebnf.Option:
		collectLiterals(e.Body, seen)
	case *ebnf.Repetition:
		collectLiterals(e.Body, seen)
	}
}

// Ignore drops tokens of the given kinds from Tokenize output.
func (l *Lexer) Ignore(kinds ...string) {
	for _, k := range kinds {
		l.ignore[k] = true
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() input.Position {
	return l.buf.Position(l.pos)
}

func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) newToken(typ token.Type, offset, length int) token.Token {
	p := l.buf.Position(offset)
	return token.Token{
		Type:   typ,
		Value:  string(l.buf.Bytes()[offset : offset+length]),
		Line:   p.Line,
		Column: p.Column,
		Offset: offset,
	}
}

// NextToken returns the next token from the input. At the end of input it
// returns the EOF token together with io.EOF.
func (l *Lexer) NextToken() (token.Token, error) {
	if l.pos >= l.buf.Len() {
		p := l.buf.Position(l.buf.Len())
		return token.NewEOF(l.buf.Len(), p.Line, p.Column), io.EOF
	}

	start := l.pos

	// Clear memoization cache for each new token (positions change)
	l.memo = make(map[memoKey]int)

	var bestKind token.Type
	bestLen := 0

	for _, name := range l.tokens {
		l.visiting = make(map[memoKey]bool)
		n := l.tryMatch(l.grammar[name].Expr, start)
		if n > bestLen {
			bestLen = n
			bestKind = token.Kind(name)
		}
	}

	for _, lit := range l.literals {
		if len(lit) <= bestLen {
			break
		}
		if l.hasPrefix(lit, start) {
			bestLen = len(lit)
			bestKind = token.Punctuator
			break
		}
	}

	if bestLen == 0 {
		_, size := utf8.DecodeRune(l.buf.Bytes()[start:])
		l.pos += size
		return l.newToken(token.Unknown, start, size), nil
	}

	l.pos += bestLen
	return l.newToken(bestKind, start, bestLen), nil
}

// tryMatch attempts to match an expression at the given offset.
// Returns the length of the match, or noMatch.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case nil:
		return 0

	case *ebnf.Token:
		if l.hasPrefix(e.String, offset) {
			return len(e.String)
		}
		return noMatch

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := l.tryMatch(item, offset+total)
			if n == noMatch {
				return noMatch
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := noMatch
		for _, alt := range e {
			if n := l.tryMatch(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := l.tryMatch(e.Body, offset+total)
			if n <= 0 {
				break
			}
			total += n
		}
		return total

	case *ebnf.Option:
		return max(l.tryMatch(e.Body, offset), 0)

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)

	default:
		return noMatch
	}
}

// tryMatchName matches a named production with memoization and cycle detection.
func (l *Lexer) tryMatchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		return result
	}

	// Left recursion at the same offset never matches.
	if l.visiting[key] {
		return noMatch
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = noMatch
		return noMatch
	}

	l.visiting[key] = true
	result := l.tryMatch(prod.Expr, offset)
	delete(l.visiting, key)

	l.memo[key] = result
	return result
}

func (l *Lexer) hasPrefix(s string, offset int) bool {
	data := l.buf.Bytes()
	return offset+len(s) <= len(data) && string(data[offset:offset+len(s)]) == s
}

// tryMatchRange matches a single character range (e.g., "a" … "z").
func (l *Lexer) tryMatchRange(begin, end string, offset int) int {
	data := l.buf.Bytes()
	if offset >= len(data) {
		return noMatch
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	r, size := utf8.DecodeRune(data[offset:])
	if r >= lo && r <= hi {
		return size
	}
	return noMatch
}

// Tokenize reads all tokens from input, dropping ignored kinds. The result
// always ends with the EOF token.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		if !l.ignore[tok.Type.Name()] {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

// Tokenize lexes src with grammar, dropping the ignored token kinds.
func Tokenize(grammar ebnf.Grammar, buf *input.Buffer, filename string, ignore ...string) ([]token.Token, error) {
	l := NewLexer(grammar, buf, filename)
	l.Ignore(ignore...)
	return l.Tokenize()
}
