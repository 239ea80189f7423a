// Package ast holds the trees produced by a successful recognition.
//
// Nodes are stored in a Tree arena and addressed through Node handles.
// Parent and child links are arena indices, so reparenting during skip
// splicing is an index update and rolling back a failed match attempt is a
// truncation of the arena.
package ast

import (
	"fmt"

	"github.com/dhamidi/recognizer/input"
	"github.com/dhamidi/recognizer/token"
)

type record struct {
	typ      token.Type
	name     string
	tok      token.Token
	hasTok   bool
	parent   int
	children []int
	from     int
	to       int
	skip     bool
}

// Tree is the arena owning every node created during one recognition.
type Tree struct {
	nodes []record
}

func NewTree() *Tree {
	return &Tree{}
}

// NewNode allocates a detached node. An empty name defaults to the type name.
func (t *Tree) NewNode(typ token.Type, name string, tok *token.Token) Node {
	if name == "" && typ != nil {
		name = typ.Name()
	}
	rec := record{typ: typ, name: name, parent: -1}
	if tok != nil {
		rec.tok = *tok
		rec.hasTok = true
	}
	t.nodes = append(t.nodes, rec)
	return Node{tree: t, id: len(t.nodes) - 1}
}

// NewTokenNode allocates a leaf for tok typed by the token type.
func (t *Tree) NewTokenNode(tok token.Token) Node {
	return t.NewNode(tok.Type, "", &tok)
}

func (t *Tree) Len() int {
	return len(t.nodes)
}

// Truncate discards every node allocated at or after index n. Nodes kept
// must not reference discarded ones; backtracking guarantees this because a
// failed attempt only links nodes it allocated itself.
func (t *Tree) Truncate(n int) {
	if n < len(t.nodes) {
		clear(t.nodes[n:])
		t.nodes = t.nodes[:n]
	}
}

// Node is a handle to a node in a Tree. The zero Node is absent.
type Node struct {
	tree *Tree
	id   int
}

func (n Node) IsNil() bool {
	return n.tree == nil
}

func (n Node) Tree() *Tree {
	return n.tree
}

func (n Node) rec() *record {
	return &n.tree.nodes[n.id]
}

func (n Node) handle(id int) Node {
	if id < 0 {
		return Node{}
	}
	return Node{tree: n.tree, id: id}
}

func (n Node) Type() token.Type {
	return n.rec().typ
}

func (n Node) Name() string {
	return n.rec().name
}

func (n Node) HasToken() bool {
	return n.rec().hasTok
}

// Token returns a copy of the node's token, or nil for structural nodes.
func (n Node) Token() *token.Token {
	r := n.rec()
	if !r.hasTok {
		return nil
	}
	tok := r.tok
	return &tok
}

func (n Node) TokenValue() string {
	r := n.rec()
	if !r.hasTok {
		return ""
	}
	return r.tok.Value
}

func (n Node) TokenLine() int {
	return n.rec().tok.Line
}

func (n Node) FromIndex() int {
	return n.rec().from
}

func (n Node) ToIndex() int {
	return n.rec().to
}

// SetSpan records the half-open range of token indices the node consumed.
func (n Node) SetSpan(from, to int) {
	r := n.rec()
	r.from, r.to = from, to
}

func (n Node) IsSkipped() bool {
	return n.rec().skip
}

// SetSkipped marks the node to be replaced by its children when it is added
// to a parent.
func (n Node) SetSkipped(skip bool) {
	n.rec().skip = skip
}

func (n Node) IsIncludedOrGenerated() bool {
	r := n.rec()
	return r.hasTok && (r.tok.IsIncluded() || r.tok.IsGenerated())
}

// AddChild attaches child as the last child of n. A skipped child is not
// attached itself: its children are spliced in its place and reparented to n.
func (n Node) AddChild(child Node) {
	if child.IsNil() {
		return
	}
	if child.tree != n.tree {
		panic("ast: AddChild across trees")
	}
	r := n.rec()
	c := child.rec()
	if c.skip {
		for _, id := range c.children {
			r.children = append(r.children, id)
			n.tree.nodes[id].parent = n.id
		}
		return
	}
	r.children = append(r.children, child.id)
	c.parent = n.id
}

// Position resolves the node's line and column from its token offset. Nodes
// without a token use their first descendant token.
func (n Node) Position(buf *input.Buffer) input.Position {
	if n.HasToken() {
		return buf.Position(n.rec().tok.Offset)
	}
	if toks := n.Tokens(); len(toks) > 0 {
		return buf.Position(toks[0].Offset)
	}
	return input.Position{}
}

func (n Node) String() string {
	if n.IsNil() {
		return "<nil>"
	}
	r := n.rec()
	if !r.hasTok {
		return r.name
	}
	return fmt.Sprintf("%s value=%q line=%d column=%d", r.name, r.tok.Value, r.tok.Line, r.tok.Column)
}
