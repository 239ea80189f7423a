package ast

import (
	"strings"

	"github.com/dhamidi/recognizer/token"
)

func (n Node) Parent() Node {
	return n.handle(n.rec().parent)
}

func (n Node) Children() []Node {
	ids := n.rec().children
	if len(ids) == 0 {
		return nil
	}
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = n.handle(id)
	}
	return out
}

func (n Node) NumChildren() int {
	return len(n.rec().children)
}

func (n Node) Child(i int) Node {
	return n.handle(n.rec().children[i])
}

func (n Node) FirstChild() Node {
	ids := n.rec().children
	if len(ids) == 0 {
		return Node{}
	}
	return n.handle(ids[0])
}

func (n Node) LastChild() Node {
	ids := n.rec().children
	if len(ids) == 0 {
		return Node{}
	}
	return n.handle(ids[len(ids)-1])
}

// indexInParent scans the parent's children for n.
func (n Node) indexInParent() (Node, int) {
	parent := n.Parent()
	if parent.IsNil() {
		return parent, -1
	}
	for i, id := range parent.rec().children {
		if id == n.id {
			return parent, i
		}
	}
	return parent, -1
}

func (n Node) NextSibling() Node {
	parent, i := n.indexInParent()
	if i < 0 || i+1 >= parent.NumChildren() {
		return Node{}
	}
	return parent.Child(i + 1)
}

func (n Node) PreviousSibling() Node {
	parent, i := n.indexInParent()
	if i <= 0 {
		return Node{}
	}
	return parent.Child(i - 1)
}

// NextAstNode returns the first node following n's subtree in pre-order:
// the next sibling, or the next node after the parent.
func (n Node) NextAstNode() Node {
	if next := n.NextSibling(); !next.IsNil() {
		return next
	}
	if parent := n.Parent(); !parent.IsNil() {
		return parent.NextAstNode()
	}
	return Node{}
}

func (n Node) Is(types ...token.Type) bool {
	typ := n.rec().typ
	for _, t := range types {
		if typ == t {
			return true
		}
	}
	return false
}

func (n Node) IsNot(types ...token.Type) bool {
	return !n.Is(types...)
}

func (n Node) FindFirstDirectChild(types ...token.Type) Node {
	for _, child := range n.Children() {
		if child.Is(types...) {
			return child
		}
	}
	return Node{}
}

// FindFirstChild searches the subtree depth-first, excluding n itself.
func (n Node) FindFirstChild(types ...token.Type) Node {
	for _, child := range n.Children() {
		if child.Is(types...) {
			return child
		}
		if found := child.FindFirstChild(types...); !found.IsNil() {
			return found
		}
	}
	return Node{}
}

func (n Node) FindDirectChildren(types ...token.Type) []Node {
	var out []Node
	for _, child := range n.Children() {
		if child.Is(types...) {
			out = append(out, child)
		}
	}
	return out
}

// FindChildren returns every descendant of one of the given types in
// pre-order.
func (n Node) FindChildren(types ...token.Type) []Node {
	var out []Node
	var walk func(Node)
	walk = func(node Node) {
		for _, child := range node.Children() {
			if child.Is(types...) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(n)
	return out
}

func (n Node) FindFirstParent(types ...token.Type) Node {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if p.Is(types...) {
			return p
		}
	}
	return Node{}
}

func (n Node) HasDirectChildren(types ...token.Type) bool {
	return !n.FindFirstDirectChild(types...).IsNil()
}

// HasChildren reports whether n has any children, or with types given,
// whether any descendant has one of them.
func (n Node) HasChildren(types ...token.Type) bool {
	if len(types) == 0 {
		return n.NumChildren() > 0
	}
	return !n.FindFirstChild(types...).IsNil()
}

func (n Node) HasParents(types ...token.Type) bool {
	return !n.FindFirstParent(types...).IsNil()
}

// Tokens returns the tokens of the leaves under n, left to right.
func (n Node) Tokens() []token.Token {
	var out []token.Token
	var walk func(Node)
	walk = func(node Node) {
		r := node.rec()
		if len(r.children) == 0 {
			if r.hasTok {
				out = append(out, r.tok)
			}
			return
		}
		for _, id := range r.children {
			walk(node.handle(id))
		}
	}
	walk(n)
	return out
}

// TokenValues returns the values of Tokens.
func (n Node) TokenValues() []string {
	toks := n.Tokens()
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Value
	}
	return out
}

// Dump renders the subtree with one node per line, children indented.
func (n Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n Node) dump(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	r := n.rec()
	sb.WriteString(r.name)
	if r.hasTok && len(r.children) == 0 {
		sb.WriteString(" ")
		sb.WriteString(r.tok.Value)
	}
	sb.WriteString("\n")
	for _, child := range n.Children() {
		child.dump(sb, indent+1)
	}
}
