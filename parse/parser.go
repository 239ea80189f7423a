package parse

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/recognizer/ast"
	"github.com/dhamidi/recognizer/token"
)

var log = commonlog.GetLogger("recognizer.parse")

// Parser runs a root rule over complete token sequences.
type Parser struct {
	root      *Rule
	listeners []Listener
	log       commonlog.Logger
	state     *State
}

type Option func(*Parser)

func WithListener(l Listener) Option {
	return func(p *Parser) {
		p.listeners = append(p.listeners, l)
	}
}

func WithLogger(l commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

func NewParser(root *Rule, opts ...Option) *Parser {
	p := &Parser{root: root, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Root() *Rule {
	return p.root
}

// State returns the state of the most recent Parse call.
func (p *Parser) State() *State {
	return p.state
}

// Parse matches the root rule against tokens. Every token other than the EOF
// sentinel must be consumed. On failure the deepest recognition error
// observed during the attempt is returned.
func (p *Parser) Parse(tokens []token.Token) (ast.Node, error) {
	s := NewState(tokens)
	rec := &Recorder{}
	s.AddListener(rec)
	for _, l := range p.listeners {
		s.AddListener(l)
	}
	p.state = s

	p.log.Debug("parse started", "rule", p.root.Name(), "tokens", s.Len())
	node, err := p.root.Match(s)
	if err == nil && s.HasNextToken() {
		err = s.Fail(nil)
	}
	if err != nil {
		if IsRecognition(err) {
			if deepest := rec.Deepest(); deepest != nil {
				err = deepest
			}
			p.log.Info("parse failed", "rule", p.root.Name(), "error", err.Error())
		} else {
			p.log.Error("grammar error", "rule", p.root.Name(), "error", err.Error())
		}
		return ast.Node{}, err
	}
	p.log.Debug("parse finished", "rule", p.root.Name(), "nodes", s.Tree().Len())
	return node, nil
}
