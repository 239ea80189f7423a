// Package grammar turns EBNF grammar files into parse grammars.
//
// One file describes both the lexer and the parser. Token productions (all
// upper case names) and the lexical helpers they use (lower case names) are
// left to ebnflex. Every other production becomes a parse.Rule:
//
//	Sequence     -> parse.And
//	Alternative  -> parse.Or
//	( ... )      -> the body
//	[ ... ]      -> parse.Opt
//	{ ... }      -> parse.ZeroOrMore
//	"literal"    -> parse.Value
//	TOKEN        -> parse.Token
//	Rule         -> rule reference
package grammar

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/recognizer/ebnflex"
	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/parse"
	"github.com/dhamidi/recognizer/token"
)

// ErrStart is returned when the start production is missing or is not a
// syntax production.
var ErrStart = errors.New("invalid start production")

// verifyRoot names the production added during verification so token
// productions count as reachable.
const verifyRoot = "Verify·root"

// Compiled is a grammar ready for lexing and parsing.
type Compiled struct {
	Source  ebnf.Grammar
	Grammar *parse.Grammar
	Start   *parse.Rule
}

// Load reads, verifies and compiles an EBNF file.
func Load(filename, start string) (*Compiled, error) {
	src, err := ebnflex.LoadGrammar(filename)
	if err != nil {
		return nil, err
	}
	return Compile(src, start)
}

// Compile verifies src from start, rejects left recursion and repetitions
// of nullable bodies, and builds a rule for every syntax production. Rules are created start first, then in name order.
func Compile(src ebnf.Grammar, start string) (*Compiled, error) {
	prod, ok := src[start]
	if !ok {
		return nil, fmt.Errorf("%w: no production %s", ErrStart, start)
	}
	if !isSyntaxName(start) {
		return nil, fmt.Errorf("%w: %s is a lexical production", ErrStart, start)
	}
	if err := Verify(src, start); err != nil {
		return nil, err
	}
	if err := checkTermination(src); err != nil {
		return nil, err
	}

	c := &compiler{src: src, g: parse.NewGrammar()}
	root := c.g.Rule(start)
	if err := c.define(prod); err != nil {
		return nil, err
	}
	for _, name := range syntaxNames(src) {
		if name == start {
			continue
		}
		if err := c.define(src[name]); err != nil {
			return nil, err
		}
	}
	return &Compiled{Source: src, Grammar: c.g, Start: root}, nil
}

// Verify checks that every production is defined, that lexical productions
// only use lexical productions and that every syntax production is
// reachable from start. Token productions are reachable by definition.
func Verify(src ebnf.Grammar, start string) error {
	roots := ebnf.Alternative{&ebnf.Name{String: start}}
	for _, name := range ebnflex.TokenNames(src) {
		if name != start {
			roots = append(roots, &ebnf.Name{String: name})
		}
	}
	augmented := make(ebnf.Grammar, len(src)+1)
	for name, prod := range src {
		augmented[name] = prod
	}
	augmented[verifyRoot] = &ebnf.Production{Name: &ebnf.Name{String: verifyRoot}, Expr: roots}

	if err := ebnf.Verify(augmented, verifyRoot); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}

func isSyntaxName(name string) bool {
	return !ebnflex.IsTokenName(name) && !ebnflex.IsLexicalName(name)
}

func syntaxNames(src ebnf.Grammar) []string {
	var names []string
	for name := range src {
		if isSyntaxName(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

type compiler struct {
	src ebnf.Grammar
	g   *parse.Grammar
}

func (c *compiler) define(prod *ebnf.Production) error {
	name := prod.Name.String
	if prod.Expr == nil {
		return fmt.Errorf("%s: production %s is empty", prod.Pos(), name)
	}
	part, err := c.part(name, prod.Expr)
	if err != nil {
		return err
	}
	return c.g.Rule(name).Is(part)
}

// part converts expr into a value accepted by the parse constructors.
func (c *compiler) part(rule string, expr ebnf.Expression) (any, error) {
	switch e := expr.(type) {
	case ebnf.Sequence:
		parts, err := c.parts(rule, e)
		if err != nil {
			return nil, err
		}
		return parse.And(parts...), nil

	case ebnf.Alternative:
		parts, err := c.parts(rule, e)
		if err != nil {
			return nil, err
		}
		return parse.Or(parts...), nil

	case *ebnf.Group:
		return c.part(rule, e.Body)

	case *ebnf.Option:
		body, err := c.part(rule, e.Body)
		if err != nil {
			return nil, err
		}
		return parse.Opt(body), nil

	case *ebnf.Repetition:
		body, err := c.part(rule, e.Body)
		if err != nil {
			return nil, err
		}
		return parse.ZeroOrMore(body), nil

	case *ebnf.Token:
		if e.String == "" {
			return nil, fmt.Errorf("%s: empty literal in %s", e.Pos(), rule)
		}
		return parse.Value(e.String), nil

	case *ebnf.Name:
		switch {
		case ebnflex.IsTokenName(e.String):
			return parse.Token(token.Kind(e.String)), nil
		case ebnflex.IsLexicalName(e.String):
			return nil, fmt.Errorf("%s: %s refers to lexical production %s", e.Pos(), rule, e.String)
		}
		return c.g.Rule(e.String), nil

	case *ebnf.Range:
		return nil, fmt.Errorf("%s: character range in syntax production %s", e.Pos(), rule)

	case *ebnf.Bad:
		return nil, fmt.Errorf("%s: %s", e.Pos(), e.Error)

	case nil:
		return nil, fmt.Errorf("empty expression in %s", rule)
	}
	return nil, fmt.Errorf("unexpected expression %T in %s", expr, rule)
}

func (c *compiler) parts(rule string, exprs []ebnf.Expression) ([]any, error) {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		p, err := c.part(rule, e)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Policy names the rules that are flattened or put in recovery mode.
type Policy struct {
	Skip           []string
	SkipIfOneChild []string
	Recover        []string
}

// Apply configures the compiled rules. Unknown rule names are an error.
func (c *Compiled) Apply(p Policy) error {
	lookup := func(name string) (*parse.Rule, error) {
		r, ok := c.Grammar.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule %s", name)
		}
		return r, nil
	}
	for _, name := range p.Skip {
		r, err := lookup(name)
		if err != nil {
			return err
		}
		r.Skip()
	}
	for _, name := range p.SkipIfOneChild {
		r, err := lookup(name)
		if err != nil {
			return err
		}
		r.SkipIf(parse.SkipIfOnlyOneChild)
	}
	for _, name := range p.Recover {
		r, err := lookup(name)
		if err != nil {
			return err
		}
		if err := r.RecoveryRule(); err != nil {
			return err
		}
	}
	return nil
}

// Tokenize lexes buf with the token productions of the grammar.
func (c *Compiled) Tokenize(buf *input.Buffer, filename string, ignore ...string) ([]token.Token, error) {
	return ebnflex.Tokenize(c.Source, buf, filename, ignore...)
}

// Parser returns a parser for the start rule.
func (c *Compiled) Parser(opts ...parse.Option) *parse.Parser {
	return parse.NewParser(c.Start, opts...)
}
