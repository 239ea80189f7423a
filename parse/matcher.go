package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhamidi/recognizer/ast"
	"github.com/dhamidi/recognizer/token"
)

type Kind int

const (
	KindTokenType Kind = iota
	KindTokenValue
	KindTokenTypeAndValue
	KindBoolean
	KindAnd
	KindOr
	KindOptional
	KindZeroOrMore
	KindOneOrMore
	KindNext
	KindRule
)

var kindNames = map[Kind]string{
	KindTokenType:         "token",
	KindTokenValue:        "value",
	KindTokenTypeAndValue: "token",
	KindBoolean:           "bool",
	KindAnd:               "and",
	KindOr:                "or",
	KindOptional:          "opt",
	KindZeroOrMore:        "o2n",
	KindOneOrMore:         "one2n",
	KindNext:              "next",
	KindRule:              "rule",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Matcher is one grammar fragment. The fields in use depend on Kind.
//
// A Matcher is also the token.Type of the structural nodes it builds, so
// those nodes can be recognized with ast.Node.Is.
type Matcher struct {
	kind      Kind
	tokenType token.Type
	value     string
	truth     bool
	children  []*Matcher

	grammar *Grammar
	rule    RuleID

	owner *Rule
}

func (m *Matcher) Kind() Kind {
	return m.kind
}

func (m *Matcher) Name() string {
	return m.kind.String()
}

func (m *Matcher) Children() []*Matcher {
	return m.children
}

// Rule returns the rule whose definition contains m.
func (m *Matcher) Rule() *Rule {
	return m.owner
}

func Token(t token.Type) *Matcher {
	return &Matcher{kind: KindTokenType, tokenType: t}
}

func Value(v string) *Matcher {
	return &Matcher{kind: KindTokenValue, value: v}
}

func TokenValue(t token.Type, v string) *Matcher {
	return &Matcher{kind: KindTokenTypeAndValue, tokenType: t, value: v}
}

func Bool(b bool) *Matcher {
	return &Matcher{kind: KindBoolean, truth: b}
}

// And matches every part in order. Parts may be strings (token values),
// token types, bools, matchers or rules. A single part is returned as is.
func And(parts ...any) *Matcher {
	return must(and(parts))
}

// Or matches the first part that succeeds.
func Or(parts ...any) *Matcher {
	return must(or(parts))
}

func Opt(parts ...any) *Matcher {
	return must(wrap(KindOptional, parts))
}

func ZeroOrMore(parts ...any) *Matcher {
	return must(wrap(KindZeroOrMore, parts))
}

func OneOrMore(parts ...any) *Matcher {
	return must(wrap(KindOneOrMore, parts))
}

// Next succeeds when the parts would match, without consuming anything.
func Next(parts ...any) *Matcher {
	return must(wrap(KindNext, parts))
}

func must(m *Matcher, err error) *Matcher {
	if err != nil {
		panic(err)
	}
	return m
}

func toMatcher(part any) (*Matcher, error) {
	switch p := part.(type) {
	case *Matcher:
		if p == nil {
			return nil, fmt.Errorf("%w: nil matcher", ErrInvalidState)
		}
		return p, nil
	case *Rule:
		if p == nil {
			return nil, fmt.Errorf("%w: nil rule", ErrInvalidState)
		}
		return p.ref(), nil
	case string:
		return Value(p), nil
	case bool:
		return Bool(p), nil
	case token.Type:
		return Token(p), nil
	}
	return nil, fmt.Errorf("%w: unsupported grammar part %T", ErrInvalidState, part)
}

func toMatchers(parts []any) ([]*Matcher, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: at least one part is required", ErrInvalidState)
	}
	out := make([]*Matcher, len(parts))
	for i, part := range parts {
		m, err := toMatcher(part)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func compose(kind Kind, parts []any) (*Matcher, error) {
	children, err := toMatchers(parts)
	if err != nil {
		return nil, err
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return &Matcher{kind: kind, children: children}, nil
}

func and(parts []any) (*Matcher, error) {
	return compose(KindAnd, parts)
}

func or(parts []any) (*Matcher, error) {
	return compose(KindOr, parts)
}

func wrap(kind Kind, parts []any) (*Matcher, error) {
	inner, err := and(parts)
	if err != nil {
		return nil, err
	}
	return &Matcher{kind: kind, children: []*Matcher{inner}}, nil
}

// Match attempts to recognize input at the cursor. On a recognition failure
// the cursor and the tree arena are left exactly as they were on entry.
// The returned node may be nil when the match consumed nothing.
func (m *Matcher) Match(s *State) (ast.Node, error) {
	switch m.kind {
	case KindTokenType, KindTokenValue, KindTokenTypeAndValue:
		return m.matchToken(s)
	case KindBoolean:
		return m.matchBoolean(s)
	case KindAnd:
		return m.matchAnd(s)
	case KindOr:
		return m.matchOr(s)
	case KindOptional:
		return m.matchOptional(s)
	case KindZeroOrMore, KindOneOrMore:
		return m.matchRepetition(s)
	case KindNext:
		return m.matchNext(s)
	case KindRule:
		return m.grammar.resolve(m.rule).Match(s)
	}
	return ast.Node{}, fmt.Errorf("parse: unknown matcher kind %d", m.kind)
}

func (m *Matcher) accepts(tok token.Token) bool {
	switch m.kind {
	case KindTokenType:
		return tok.Type == m.tokenType
	case KindTokenValue:
		return tok.Value == m.value
	default:
		return tok.Type == m.tokenType && tok.Value == m.value
	}
}

func (m *Matcher) matchToken(s *State) (ast.Node, error) {
	tok, err := s.PeekToken(m)
	if err != nil {
		return ast.Node{}, err
	}
	if !m.accepts(tok) {
		return ast.Node{}, s.Fail(m)
	}
	from := s.Index()
	if _, err := s.PopToken(m); err != nil {
		return ast.Node{}, err
	}
	node := s.Tree().NewTokenNode(tok)
	node.SetSpan(from, s.Index())
	return node, nil
}

// matchBoolean always fails for false. For true it consumes one token so a
// stub rule still makes progress.
func (m *Matcher) matchBoolean(s *State) (ast.Node, error) {
	if !m.truth {
		return ast.Node{}, s.Fail(m)
	}
	from := s.Index()
	tok, err := s.PopToken(m)
	if err != nil {
		return ast.Node{}, err
	}
	node := s.Tree().NewNode(m, "trueMatcher", &tok)
	node.SetSpan(from, s.Index())
	return node, nil
}

func (m *Matcher) composite(s *State, mark Mark, results []ast.Node) ast.Node {
	node := s.Tree().NewNode(m, "", nil)
	for _, r := range results {
		node.AddChild(r)
	}
	node.SetSpan(mark.index, s.Index())
	node.SetSkipped(true)
	return node
}

func (m *Matcher) matchAnd(s *State) (ast.Node, error) {
	mark := s.Mark()
	results := make([]ast.Node, 0, len(m.children))
	for _, child := range m.children {
		node, err := child.Match(s)
		if err != nil {
			s.Restore(mark)
			return ast.Node{}, err
		}
		results = append(results, node)
	}
	return m.composite(s, mark, results), nil
}

// matchOr returns the first alternative that succeeds. When all fail, the
// failure that got furthest into the input is reported.
func (m *Matcher) matchOr(s *State) (ast.Node, error) {
	mark := s.Mark()
	var deepest *RecognitionError
	for _, child := range m.children {
		node, err := child.Match(s)
		if err == nil {
			return node, nil
		}
		s.Restore(mark)
		var re *RecognitionError
		if !errors.As(err, &re) {
			return ast.Node{}, err
		}
		if deepest == nil || re.Index > deepest.Index {
			deepest = re
		}
	}
	if deepest == nil {
		return ast.Node{}, s.Fail(m)
	}
	return ast.Node{}, deepest
}

func (m *Matcher) matchOptional(s *State) (ast.Node, error) {
	mark := s.Mark()
	node, err := m.children[0].Match(s)
	if err != nil {
		s.Restore(mark)
		if IsRecognition(err) {
			return ast.Node{}, nil
		}
		return ast.Node{}, err
	}
	return node, nil
}

func (m *Matcher) matchRepetition(s *State) (ast.Node, error) {
	start := s.Mark()
	var results []ast.Node
	for {
		mark := s.Mark()
		node, err := m.children[0].Match(s)
		if err != nil {
			s.Restore(mark)
			if !IsRecognition(err) {
				s.Restore(start)
				return ast.Node{}, err
			}
			if m.kind == KindOneOrMore && len(results) == 0 {
				return ast.Node{}, err
			}
			break
		}
		if s.Index() == mark.index {
			s.Restore(start)
			return ast.Node{}, fmt.Errorf("%w: %s", ErrNoProgress, m.Definition())
		}
		results = append(results, node)
	}
	if len(results) == 0 {
		return ast.Node{}, nil
	}
	return m.composite(s, start, results), nil
}

func (m *Matcher) matchNext(s *State) (ast.Node, error) {
	mark := s.Mark()
	_, err := m.children[0].Match(s)
	s.Restore(mark)
	return ast.Node{}, err
}

// Definition renders the grammar shape of m. The output is stable and is
// used for diagnostics and rule introspection.
func (m *Matcher) Definition() string {
	switch m.kind {
	case KindTokenType:
		return m.tokenType.Name()
	case KindTokenValue:
		return `"` + m.value + `"`
	case KindTokenTypeAndValue:
		return fmt.Sprintf(`token(%s, "%s")`, m.tokenType.Name(), m.value)
	case KindBoolean:
		return fmt.Sprint(m.truth)
	case KindRule:
		return m.grammar.resolve(m.rule).Name()
	}
	defs := make([]string, len(m.children))
	for i, child := range m.children {
		defs[i] = child.Definition()
	}
	return m.kind.String() + "(" + strings.Join(defs, ", ") + ")"
}

func (m *Matcher) String() string {
	return m.Definition()
}

// setParentRule records r as the owner of m and its sub-matchers. Rule
// references stop the walk and tell the referenced rule about its parent.
func (m *Matcher) setParentRule(r *Rule) {
	m.owner = r
	if m.kind == KindRule {
		m.grammar.resolve(m.rule).observeParent(r)
		return
	}
	for _, child := range m.children {
		child.setParentRule(r)
	}
}
