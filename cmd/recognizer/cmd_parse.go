package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/recognizer/ast"
	"github.com/dhamidi/recognizer/diag"
	"github.com/dhamidi/recognizer/ebnf/grammar"
	"github.com/dhamidi/recognizer/input"
)

var log = commonlog.GetLogger("recognizer.cmd")

func newParseCmd() *cobra.Command {
	var flags grammarFlags
	var outputFormat string
	var contextLines int
	var quiet bool

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse files and print their syntax trees",
		Long: `Parse files with the grammar and print their syntax trees.
Without arguments every source file of the project is parsed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, c, err := flags.compile(cmd)
			if err != nil {
				return err
			}

			files := args
			if len(files) == 0 {
				if files, err = p.SourceFiles(); err != nil {
					return err
				}
			}

			failed := 0
			for _, filename := range files {
				data, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read %s: %w", filename, err)
				}
				buf := input.New(data)

				node, err := parseBuffer(c, p.Ignore, filename, buf)
				if err != nil {
					failed++
					printFailure(os.Stderr, filename, buf, err, contextLines)
					continue
				}
				if quiet {
					continue
				}
				if err := printTree(os.Stdout, node, outputFormat); err != nil {
					return err
				}
			}

			log.Infof("parsed %d files, %d failed", len(files), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to parse", failed, len(files))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format (tree, json)")
	cmd.Flags().IntVarP(&contextLines, "context", "C", 0, "source lines shown around a failure")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report failures")

	return cmd
}

func parseBuffer(c *grammar.Compiled, ignore []string, filename string, buf *input.Buffer) (ast.Node, error) {
	toks, err := c.Tokenize(buf, filename, ignore...)
	if err != nil {
		return ast.Node{}, fmt.Errorf("tokenize: %w", err)
	}
	return c.Parser().Parse(toks)
}

func printTree(w io.Writer, node ast.Node, outputFormat string) error {
	switch outputFormat {
	case "tree":
		fmt.Fprint(w, node.Dump())
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s (expected tree or json)", outputFormat)
	}
	return nil
}

func printFailure(w io.Writer, filename string, buf *input.Buffer, err error, contextLines int) {
	if contextLines == 0 {
		fmt.Fprint(w, diag.Format(filename, buf, err))
		return
	}
	d := diag.FromError(filename, buf, err)
	fmt.Fprintln(w, d.String())
	if d.HasPosition() {
		fmt.Fprint(w, diag.Context(buf, d.Pos, contextLines))
	}
}
