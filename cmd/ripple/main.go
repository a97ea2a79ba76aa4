package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ripple/internal/logging"
	"ripple/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Ripple language toolchain",
	Long:  `Ripple provides the language server and workspace tools for the Ripple language`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "info", "log verbosity (debug|info|warn|error)")

	cobra.OnInitialize(func() {
		applyColorMode(rootCmd)
		if level, err := rootCmd.PersistentFlags().GetString("log-level"); err == nil {
			logging.SetLevel(level)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode(cmd *cobra.Command) {
	mode, err := cmd.PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stderr)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
