package cmd

import "github.com/spf13/cobra"

var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"interactive", "i"},
	Short:   "Launch interactive TUI",
	Long: `Launch the interactive terminal UI.

Features:
  - Type or paste a prompt and analyze it against a domain or mode
  - Highlighted biased phrases with a per-category legend
  - Bias score, breakdown, rewrite and alternatives
  - Live bias score while typing
  - Copy the rewrite or an alternative to the clipboard

Controls:
  ctrl+s  Analyze prompt
  ctrl+d  Cycle domain / mode
  ?       Help
  ctrl+c  Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
