package ast

import "encoding/json"

type jsonNode struct {
	Type     string      `json:"type"`
	Name     string      `json:"name,omitempty"`
	Token    *jsonToken  `json:"token,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonToken struct {
	Value  string `json:"value"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (n Node) MarshalJSON() ([]byte, error) {
	if n.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(n.toJSON())
}

func (n Node) toJSON() *jsonNode {
	r := n.rec()
	jn := &jsonNode{}
	if r.typ != nil {
		jn.Type = r.typ.Name()
	}
	if r.name != jn.Type {
		jn.Name = r.name
	}
	if r.hasTok {
		jn.Token = &jsonToken{Value: r.tok.Value, Line: r.tok.Line, Column: r.tok.Column}
	}
	if len(r.children) > 0 {
		jn.Children = make([]*jsonNode, len(r.children))
		for i, child := range n.Children() {
			jn.Children[i] = child.toJSON()
		}
	}
	return jn
}
