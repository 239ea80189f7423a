package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/recognizer/input"
)

func newTokensCmd() *cobra.Command {
	var flags grammarFlags
	var all bool

	cmd := &cobra.Command{
		Use:          "tokens <file>",
		Short:        "Print the tokens the grammar's lexer produces for a file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, c, err := flags.compile(cmd)
			if err != nil {
				return err
			}

			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read %s: %w", filename, err)
			}

			ignore := p.Ignore
			if all {
				ignore = nil
			}
			toks, err := c.Tokenize(input.New(data), filename, ignore...)
			if err != nil {
				return fmt.Errorf("tokenize: %w", err)
			}
			for _, tok := range toks {
				fmt.Println(tok)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include ignored token kinds")

	return cmd
}
