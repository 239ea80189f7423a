package main

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/dhamidi/recognizer/ebnf/grammar"
	"github.com/dhamidi/recognizer/ebnflex"
)

func newCheckCmd() *cobra.Command {
	var startProduction string
	var showDefinitions bool

	cmd := &cobra.Command{
		Use:           "check <grammar>",
		Short:         "Parse, verify and compile an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			src, err := ebnflex.LoadGrammar(filename)
			if err != nil {
				printErrors(err)
				return err
			}
			if startProduction == "" {
				return nil
			}

			c, err := grammar.Compile(src, startProduction)
			if err != nil {
				printErrors(err)
				return err
			}
			if showDefinitions {
				fmt.Print(c.Grammar.Definitions())
			}
			log.Infof("%s: %d rules, %d token kinds", filename, len(c.Grammar.Rules()), len(ebnflex.TokenNames(src)))
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production to compile from (if empty, only checks syntax)")
	cmd.Flags().BoolVarP(&showDefinitions, "definitions", "d", false, "print the compiled rule definitions")

	return cmd
}

// printErrors prints one line per error of the first error list in the
// chain of err.
func printErrors(err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Println(v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Println(err)
}
