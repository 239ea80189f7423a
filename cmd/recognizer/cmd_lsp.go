package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/recognizer/lsp"
)

func newLSPCmd() *cobra.Command {
	var flags grammarFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start a language server on stdio that reports recognition failures
as diagnostics. Without grammar flags the project is loaded from the
workspace root sent by the editor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var server *lsp.Server
			if cmd.Flags().Changed("grammar") {
				p, err := flags.project(cmd)
				if err != nil {
					return err
				}
				server = lsp.NewServer(version, p)
			} else {
				server = lsp.NewServer(version, nil)
			}
			return server.RunStdio()
		},
	}

	flags.register(cmd)

	return cmd
}
