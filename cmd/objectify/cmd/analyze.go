package cmd

import (
	"fmt"

	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/f3rmion/objectify/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyzeDomain      string
	analyzeMode        string
	analyzeFormat      string
	analyzeFile        string
	analyzeConcurrency int
	analyzeWidth       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [prompt...]",
	Short: "Analyze a prompt for bias and suggest a neutral rewrite",
	Long: `Send a prompt to the analysis service and print its bias score, the
highlighted biased phrases, a per-category breakdown, a rewritten prompt and
alternative suggestions.

The prompt is taken from the arguments, from stdin when no arguments (or "-")
are given, or from --file with one prompt per line.

Example:
  objectify analyze "Obviously this is a terrible idea"
  objectify analyze --domain medical "Prove that vaccines are always safe"
  objectify analyze --mode ai --format json < prompt.txt
  objectify analyze --file prompts.txt --concurrency 4`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeDomain, "domain", "", "analysis domain: general, political, science, medical")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "analysis mode: nlp, ai (uses the mode request shape)")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", formatText, "output format: text, plain, json")
	analyzeCmd.Flags().StringVar(&analyzeFile, "file", "", "read prompts from a file, one per line")
	analyzeCmd.Flags().IntVarP(&analyzeConcurrency, "concurrency", "c", 4, "concurrent requests with --file")
	analyzeCmd.Flags().IntVarP(&analyzeWidth, "width", "w", 80, "wrap width for text output")
	analyzeCmd.MarkFlagsMutuallyExclusive("domain", "mode")
}

// resolveAxis picks the selector and axis for this run. --mode switches the
// request shape to mode; --domain to domain; otherwise the config decides.
func resolveAxis(cfg *config.Config, domain, mode string) (string, error) {
	switch {
	case domain != "" && mode != "":
		return "", fmt.Errorf("--domain and --mode cannot be combined")
	case mode != "":
		cfg.Selector = string(api.SelectorMode)
		cfg.DefaultAxis = mode
	case domain != "":
		cfg.Selector = string(api.SelectorDomain)
		cfg.DefaultAxis = domain
	}

	sel, err := api.ParseSelector(cfg.Selector)
	if err != nil {
		return "", err
	}
	axis := cfg.DefaultAxis
	if axis == "" {
		axis = sel.Axes()[0]
	}
	if err := sel.ValidateAxis(axis); err != nil {
		return "", err
	}
	return axis, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := validateFormat(analyzeFormat); err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	axis, err := resolveAxis(cfg, analyzeDomain, analyzeMode)
	if err != nil {
		return err
	}

	prompts, err := collectPrompts(args, analyzeFile, cmd.InOrStdin())
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

	logger.Debug("analyzing",
		zap.Int("prompts", len(prompts)),
		zap.String("selector", cfg.Selector),
		zap.String("axis", axis))

	outs, err := runAll(cmd.Context(), prompts, analyzeConcurrency, logger, analyzeCall(client, axis))
	if err != nil {
		return err
	}
	return writeOutcomes(cmd.OutOrStdout(), outs, analyzeFormat, analyzeWidth, api.FallbackAnalyze)
}
