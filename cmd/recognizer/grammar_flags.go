package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/recognizer/ebnf/grammar"
	"github.com/dhamidi/recognizer/project"
)

// grammarFlags selects a grammar either from the flags alone or from the
// nearest project file, with flags overriding its values.
type grammarFlags struct {
	grammar        string
	start          string
	sources        []string
	ignore         []string
	skip           []string
	skipIfOneChild []string
	recover        []string
}

func (f *grammarFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.grammar, "grammar", "g", "", "EBNF grammar file (default: from "+project.FileName+")")
	flags.StringVarP(&f.start, "start", "s", "", "start production")
	flags.StringSliceVar(&f.sources, "sources", nil, "file name patterns of source files")
	flags.StringSliceVar(&f.ignore, "ignore", nil, "token kinds dropped before parsing")
	flags.StringSliceVar(&f.skip, "skip", nil, "rules left out of the syntax tree")
	flags.StringSliceVar(&f.skipIfOneChild, "skip-if-one-child", nil, "rules left out of the syntax tree when they have one child")
	flags.StringSliceVar(&f.recover, "recover", nil, "rules switched to recovery mode")
}

func (f *grammarFlags) project(cmd *cobra.Command) (*project.Project, error) {
	p := &project.Project{RootDir: "."}
	path, err := project.Find(".")
	switch {
	case err == nil:
		if p, err = project.ReadFile(path); err != nil {
			return nil, err
		}
	case errors.Is(err, project.ErrNotFound) && f.grammar != "":
	default:
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("grammar") {
		path, err := filepath.Abs(f.grammar)
		if err != nil {
			return nil, err
		}
		p.Grammar = path
	}
	if flags.Changed("start") {
		p.Start = f.start
	}
	if flags.Changed("sources") {
		p.Sources = f.sources
	}
	if flags.Changed("ignore") {
		p.Ignore = f.ignore
	}
	if flags.Changed("skip") {
		p.Skip = f.skip
	}
	if flags.Changed("skip-if-one-child") {
		p.SkipIfOneChild = f.skipIfOneChild
	}
	if flags.Changed("recover") {
		p.Recover = f.recover
	}

	project.ApplyDefaults(p)
	if err := project.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *grammarFlags) compile(cmd *cobra.Command) (*project.Project, *grammar.Compiled, error) {
	p, err := f.project(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, err := p.Compile()
	if err != nil {
		return nil, nil, fmt.Errorf("compile grammar: %w", err)
	}
	return p, c, nil
}
