package parse

import (
	"github.com/dhamidi/recognizer/ast"
	"github.com/dhamidi/recognizer/token"
)

// Listener observes recognition failures as they are raised. Callbacks run
// synchronously and must not call back into the State.
type Listener interface {
	RecognitionFailed(err *RecognitionError)
}

type ListenerFunc func(err *RecognitionError)

func (f ListenerFunc) RecognitionFailed(err *RecognitionError) {
	f(err)
}

// State is the cursor over one token sequence, shared by every matcher of a
// single parse attempt. It also owns the tree arena the matchers build into.
type State struct {
	tokens    []token.Token
	index     int
	outpost   int
	tree      *ast.Tree
	listeners []Listener
}

// Mark is a saved cursor position together with the arena size.
type Mark struct {
	index int
	nodes int
}

func (m Mark) Index() int {
	return m.index
}

// NewState wraps tokens, appending an EOF sentinel positioned right after
// the last token when the sequence does not already end with one. Lexers
// that know trailing whitespace or comments were dropped should supply
// their own EOF token.
func NewState(tokens []token.Token) *State {
	if len(tokens) == 0 || !tokens[len(tokens)-1].IsEOF() {
		eof := token.NewEOF(0, 1, 1)
		if len(tokens) > 0 {
			eof = eofAfter(tokens[len(tokens)-1])
		}
		tokens = append(tokens[:len(tokens):len(tokens)], eof)
	}
	return &State{tokens: tokens, tree: ast.NewTree()}
}

// eofAfter returns an EOF token at the position following last, counting
// line terminators inside its value. "\r\n" is one terminator.
func eofAfter(last token.Token) token.Token {
	line, column := last.Line, last.Column
	v := last.Value
	for i := 0; i < len(v); i++ {
		switch {
		case v[i] == '\r' && i+1 < len(v) && v[i+1] == '\n':
			continue
		case v[i] == '\n' || v[i] == '\r':
			line++
			column = 1
		default:
			column++
		}
	}
	return token.NewEOF(last.Offset+len(v), line, column)
}

func (s *State) AddListener(l Listener) {
	s.listeners = append(s.listeners, l)
}

func (s *State) Tree() *ast.Tree {
	return s.tree
}

func (s *State) Index() int {
	return s.index
}

func (s *State) Len() int {
	return len(s.tokens)
}

// Token returns the token at index i, clamped to the EOF sentinel.
func (s *State) Token(i int) token.Token {
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Outpost is the deepest token index at which a failure was raised or up to
// which tokens were consumed.
func (s *State) Outpost() int {
	return s.outpost
}

// HasNextToken reports whether tokens other than the EOF sentinel remain.
func (s *State) HasNextToken() bool {
	return s.index < len(s.tokens)-1
}

// PeekToken returns the token under the cursor. Peeking past the sentinel is
// a recognition failure attributed to m.
func (s *State) PeekToken(m *Matcher) (token.Token, error) {
	if s.index >= len(s.tokens) {
		return token.Token{}, s.Fail(m)
	}
	return s.tokens[s.index], nil
}

// PopToken returns the token under the cursor and advances past it.
func (s *State) PopToken(m *Matcher) (token.Token, error) {
	tok, err := s.PeekToken(m)
	if err != nil {
		return tok, err
	}
	s.index++
	s.outpost = max(s.outpost, s.index)
	return tok, nil
}

func (s *State) Mark() Mark {
	return Mark{index: s.index, nodes: s.tree.Len()}
}

// Restore rewinds the cursor and discards nodes built since m.
func (s *State) Restore(m Mark) {
	s.index = m.index
	s.tree.Truncate(m.nodes)
}

// Fail builds a recognition error at the cursor and notifies listeners.
func (s *State) Fail(m *Matcher) *RecognitionError {
	err := &RecognitionError{Index: s.index, Token: s.Token(s.index), Matcher: m}
	s.notify(err)
	return err
}

func (s *State) notify(err *RecognitionError) {
	s.outpost = max(s.outpost, err.Index)
	for _, l := range s.listeners {
		l.RecognitionFailed(err)
	}
}
