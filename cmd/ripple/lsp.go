package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ripple/internal/lsp"
)

var lspMaxDiagnostics int

func init() {
	lspCmd.Flags().IntVar(&lspMaxDiagnostics, "max-diagnostics", 0, "cap per-file diagnostics (0 = default)")
}

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the Ripple language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(cmd *cobra.Command, _ []string) error {
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		MaxDiagnostics: lspMaxDiagnostics,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
