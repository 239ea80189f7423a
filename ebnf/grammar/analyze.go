package grammar

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/ebnf"
)

var (
	// ErrLeftRecursion reports a rule that can reach itself without
	// consuming a token. Matching such a rule never terminates.
	ErrLeftRecursion = errors.New("left recursion")

	// ErrNullableRepetition reports a repetition whose body can match
	// empty input.
	ErrNullableRepetition = errors.New("repetition body can match empty input")
)

// analysis records which syntax productions can match empty input.
type analysis struct {
	nullable map[string]bool
}

// checkTermination rejects grammars whose rules would recurse or repeat
// without consuming input.
func checkTermination(src ebnf.Grammar) error {
	a := &analysis{nullable: make(map[string]bool)}
	names := syntaxNames(src)

	for changed := true; changed; {
		changed = false
		for _, name := range names {
			if !a.nullable[name] && a.isNullable(src[name].Expr) {
				a.nullable[name] = true
				changed = true
			}
		}
	}

	for _, name := range names {
		if err := a.checkRepetitions(name, src[name].Expr); err != nil {
			return err
		}
	}

	edges := make(map[string][]string, len(names))
	for _, name := range names {
		refs := make(map[string]bool)
		a.leftRefs(src[name].Expr, refs)
		for ref := range refs {
			edges[name] = append(edges[name], ref)
		}
		slices.Sort(edges[name])
	}
	if cycle := findCycle(names, edges); cycle != nil {
		return fmt.Errorf("%w: %s", ErrLeftRecursion, strings.Join(cycle, " -> "))
	}
	return nil
}

func (a *analysis) isNullable(expr ebnf.Expression) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case ebnf.Sequence:
		for _, x := range e {
			if !a.isNullable(x) {
				return false
			}
		}
		return true
	case ebnf.Alternative:
		for _, x := range e {
			if a.isNullable(x) {
				return true
			}
		}
		return false
	case *ebnf.Group:
		return a.isNullable(e.Body)
	case *ebnf.Option, *ebnf.Repetition:
		return true
	case *ebnf.Token:
		return e.String == ""
	case *ebnf.Name:
		return isSyntaxName(e.String) && a.nullable[e.String]
	}
	return false
}

func (a *analysis) checkRepetitions(rule string, expr ebnf.Expression) error {
	switch e := expr.(type) {
	case ebnf.Sequence:
		for _, x := range e {
			if err := a.checkRepetitions(rule, x); err != nil {
				return err
			}
		}
	case ebnf.Alternative:
		for _, x := range e {
			if err := a.checkRepetitions(rule, x); err != nil {
				return err
			}
		}
	case *ebnf.Group:
		return a.checkRepetitions(rule, e.Body)
	case *ebnf.Option:
		return a.checkRepetitions(rule, e.Body)
	case *ebnf.Repetition:
		if a.isNullable(e.Body) {
			return fmt.Errorf("%s: %w in %s", e.Pos(), ErrNullableRepetition, rule)
		}
		return a.checkRepetitions(rule, e.Body)
	}
	return nil
}

// leftRefs adds to refs every syntax production expr can enter before
// consuming a token.
func (a *analysis) leftRefs(expr ebnf.Expression, refs map[string]bool) {
	switch e := expr.(type) {
	case ebnf.Sequence:
		for _, x := range e {
			a.leftRefs(x, refs)
			if !a.isNullable(x) {
				return
			}
		}
	case ebnf.Alternative:
		for _, x := range e {
			a.leftRefs(x, refs)
		}
	case *ebnf.Group:
		a.leftRefs(e.Body, refs)
	case *ebnf.Option:
		a.leftRefs(e.Body, refs)
	case *ebnf.Repetition:
		a.leftRefs(e.Body, refs)
	case *ebnf.Name:
		if isSyntaxName(e.String) {
			refs[e.String] = true
		}
	}
}

// findCycle returns the first cycle found by a depth-first walk in name
// order, starting and ending with the same rule.
func findCycle(names []string, edges map[string][]string) []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(names))
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = active
		path = append(path, name)
		for _, next := range edges[name] {
			switch state[next] {
			case active:
				start := slices.Index(path, next)
				return append(slices.Clone(path[start:]), next)
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range names {
		if state[name] == unvisited {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
