package parse

import (
	"strings"
)

// Grammar owns a set of rules addressed by RuleID. Rule references resolve
// through the grammar at match time.
type Grammar struct {
	rules  []*Rule
	byName map[string]RuleID
}

func NewGrammar() *Grammar {
	return &Grammar{byName: map[string]RuleID{}}
}

// NewRule returns a rule in a grammar of its own.
func NewRule(name string) *Rule {
	return NewGrammar().Rule(name)
}

// Rule returns the rule called name, creating it undefined if needed.
func (g *Grammar) Rule(name string) *Rule {
	if id, ok := g.byName[name]; ok {
		return g.rules[id]
	}
	r := &Rule{id: RuleID(len(g.rules)), name: name, grammar: g}
	g.rules = append(g.rules, r)
	g.byName[name] = r.id
	return r
}

func (g *Grammar) Lookup(name string) (*Rule, bool) {
	id, ok := g.byName[name]
	if !ok {
		return nil, false
	}
	return g.rules[id], true
}

// Rules returns every rule in creation order.
func (g *Grammar) Rules() []*Rule {
	return append([]*Rule(nil), g.rules...)
}

// Undefined returns the rules that were referenced or created but never
// given a definition.
func (g *Grammar) Undefined() []*Rule {
	var out []*Rule
	for _, r := range g.rules {
		if r.state == RuleUndefined {
			out = append(out, r)
		}
	}
	return out
}

// Definitions renders every rule definition, one per line.
func (g *Grammar) Definitions() string {
	var sb strings.Builder
	for _, r := range g.rules {
		sb.WriteString(r.Definition())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (g *Grammar) resolve(id RuleID) *Rule {
	return g.rules[id]
}
