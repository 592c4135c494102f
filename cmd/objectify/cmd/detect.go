package cmd

import (
	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/logging"
	"github.com/spf13/cobra"
)

var (
	detectFormat      string
	detectFile        string
	detectConcurrency int
	detectWidth       int
)

var detectCmd = &cobra.Command{
	Use:   "detect [prompt...]",
	Short: "Detect bias in a prompt without rewriting it",
	Long: `Run bias detection only: score, highlighted phrases and breakdown.

Example:
  objectify detect "Everyone knows this never works"
  echo "Clearly the best option" | objectify detect --format json`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&detectFormat, "format", "f", formatText, "output format: text, plain, json")
	detectCmd.Flags().StringVar(&detectFile, "file", "", "read prompts from a file, one per line")
	detectCmd.Flags().IntVarP(&detectConcurrency, "concurrency", "c", 4, "concurrent requests with --file")
	detectCmd.Flags().IntVarP(&detectWidth, "width", "w", 80, "wrap width for text output")
}

func runDetect(cmd *cobra.Command, args []string) error {
	if err := validateFormat(detectFormat); err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	prompts, err := collectPrompts(args, detectFile, cmd.InOrStdin())
	if err != nil {
		return inputError(err)
	}

	logger, err := logging.NewCLI(verbose())
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	outs, err := runAll(cmd.Context(), prompts, detectConcurrency, logger, detectCall(client))
	if err != nil {
		return err
	}
	return writeOutcomes(cmd.OutOrStdout(), outs, detectFormat, detectWidth, api.FallbackDetect)
}
