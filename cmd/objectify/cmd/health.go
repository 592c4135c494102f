package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/logging"
	"github.com/f3rmion/objectify/internal/render"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis service is reachable",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
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

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	start := time.Now()
	h, err := client.Health(ctx)
	if err != nil {
		logger.Debug("health check failed", zap.Error(err))
		return errors.New(api.UserMessage(err, api.FallbackHealth))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Service:"), client.BaseURL())
	fmt.Fprintf(out, "%s %s (%s)\n", render.LabelStyle.Render("Status:"),
		render.RewriteStyle.Render(h.Status), time.Since(start).Round(time.Millisecond))
	if h.Message != "" {
		fmt.Fprintf(out, "%s %s\n", render.LabelStyle.Render("Message:"), render.Sanitize(h.Message))
	}
	return nil
}
