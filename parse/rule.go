package parse

import (
	"fmt"

	"github.com/dhamidi/recognizer/ast"
	"github.com/dhamidi/recognizer/token"
)

type RuleID int

type RuleState int

const (
	RuleUndefined RuleState = iota
	RuleDefined
	RuleRecovering
)

func (s RuleState) String() string {
	switch s {
	case RuleUndefined:
		return "undefined"
	case RuleDefined:
		return "defined"
	case RuleRecovering:
		return "recovering"
	}
	return "unknown"
}

// SkipPolicy decides whether a node built by a rule is flattened into its
// parent.
type SkipPolicy interface {
	HasToBeSkippedFromAST(n ast.Node) bool
}

type SkipPolicyFunc func(n ast.Node) bool

func (f SkipPolicyFunc) HasToBeSkippedFromAST(n ast.Node) bool {
	return f(n)
}

// SkipIfOnlyOneChild flattens nodes that wrap exactly one child.
var SkipIfOnlyOneChild SkipPolicy = SkipPolicyFunc(func(n ast.Node) bool {
	return !n.IsNil() && n.NumChildren() == 1
})

var skipAlways SkipPolicy = SkipPolicyFunc(func(ast.Node) bool { return true })

// Rule is a named matcher. Its definition may be given after the rule has
// been referenced, which is how recursive grammars are written.
type Rule struct {
	id      RuleID
	name    string
	grammar *Grammar

	state    RuleState
	matcher  *Matcher
	recovery *Matcher
	skip     SkipPolicy

	parent    *Rule
	ambiguous bool
}

func (r *Rule) ID() RuleID {
	return r.id
}

func (r *Rule) Name() string {
	return r.name
}

func (r *Rule) Grammar() *Grammar {
	return r.grammar
}

func (r *Rule) State() RuleState {
	return r.state
}

func (r *Rule) ref() *Matcher {
	return &Matcher{kind: KindRule, grammar: r.grammar, rule: r.id}
}

// Is gives the rule its definition: the parts in sequence.
func (r *Rule) Is(parts ...any) error {
	return r.initial(and, parts)
}

// IsOr gives the rule its definition: the first part that matches.
func (r *Rule) IsOr(parts ...any) error {
	return r.initial(or, parts)
}

func (r *Rule) initial(combine func([]any) (*Matcher, error), parts []any) error {
	if r.state != RuleUndefined {
		return fmt.Errorf("%w: rule %s is already defined", ErrInvalidState, r.name)
	}
	m, err := combine(parts)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.name, err)
	}
	r.define(m)
	r.state = RuleDefined
	return nil
}

// Or adds an alternative tried after the current definition.
func (r *Rule) Or(parts ...any) error {
	return r.extend(parts, false)
}

// OrBefore adds an alternative tried before the current definition.
func (r *Rule) OrBefore(parts ...any) error {
	return r.extend(parts, true)
}

func (r *Rule) extend(parts []any, before bool) error {
	if r.state == RuleUndefined {
		return fmt.Errorf("%w: rule %s must be defined before adding alternatives", ErrInvalidState, r.name)
	}
	alt, err := and(parts)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.name, err)
	}
	children := []*Matcher{r.matcher, alt}
	if before {
		children = []*Matcher{alt, r.matcher}
	}
	r.define(&Matcher{kind: KindOr, children: children})
	return nil
}

// Override replaces the definition whatever state the rule is in.
func (r *Rule) Override(parts ...any) error {
	m, err := and(parts)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.name, err)
	}
	r.define(m)
	if r.state == RuleUndefined {
		r.state = RuleDefined
	}
	return nil
}

func (r *Rule) define(m *Matcher) {
	r.matcher = m
	m.setParentRule(r)
}

func (r *Rule) Skip() {
	r.skip = skipAlways
}

func (r *Rule) SkipIf(policy SkipPolicy) {
	r.skip = policy
}

func (r *Rule) HasToBeSkippedFromAST(n ast.Node) bool {
	return r.skip != nil && r.skip.HasToBeSkippedFromAST(n)
}

// RecoveryRule switches the rule into recovery mode using its own
// definition. Every match in that mode reports a recognition failure at its
// start before matching.
func (r *Rule) RecoveryRule() error {
	if r.state == RuleUndefined {
		return fmt.Errorf("%w: rule %s must be defined before recovering", ErrInvalidState, r.name)
	}
	r.state = RuleRecovering
	return nil
}

// RecoverWith switches the rule into recovery mode, matching parts instead
// of the definition.
func (r *Rule) RecoverWith(parts ...any) error {
	if err := r.RecoveryRule(); err != nil {
		return err
	}
	m, err := and(parts)
	if err != nil {
		return fmt.Errorf("rule %s: %w", r.name, err)
	}
	r.recovery = m
	m.setParentRule(r)
	return nil
}

// Matcher returns the matcher the rule currently delegates to.
func (r *Rule) Matcher() *Matcher {
	if r.state == RuleRecovering && r.recovery != nil {
		return r.recovery
	}
	return r.matcher
}

// ParentRule returns the rule whose definition references r. It is nil when
// r is unreferenced or referenced by more than one rule.
func (r *Rule) ParentRule() *Rule {
	return r.parent
}

func (r *Rule) observeParent(p *Rule) {
	if p == r || r.ambiguous {
		return
	}
	switch r.parent {
	case nil:
		r.parent = p
	case p:
	default:
		r.parent = nil
		r.ambiguous = true
	}
}

// Match wraps the result of the active matcher in a node typed by the rule.
// The node carries the first consumed token, if any.
func (r *Rule) Match(s *State) (ast.Node, error) {
	switch r.state {
	case RuleUndefined:
		return ast.Node{}, fmt.Errorf("%w: rule %s is not defined", ErrInvalidState, r.name)
	case RuleRecovering:
		s.notify(&RecognitionError{
			Index:     s.Index(),
			Token:     s.Token(s.Index()),
			Recovered: true,
			Rule:      r,
		})
	}

	from := s.Index()
	child, err := r.Matcher().Match(s)
	if err != nil {
		return ast.Node{}, err
	}

	var first *token.Token
	if s.Index() > from {
		tok := s.Token(from)
		first = &tok
	}
	node := s.Tree().NewNode(r, r.name, first)
	node.AddChild(child)
	node.SetSpan(from, s.Index())
	node.SetSkipped(r.HasToBeSkippedFromAST(node))
	return node, nil
}

// Definition renders the rule as Name.is(<definition>).
func (r *Rule) Definition() string {
	if r.matcher == nil {
		return r.name + ".is()"
	}
	return r.name + ".is(" + r.matcher.Definition() + ")"
}

func (r *Rule) String() string {
	return r.name
}
