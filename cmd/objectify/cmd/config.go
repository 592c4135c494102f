package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/f3rmion/objectify/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize objectify configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration objectify will use after applying the config
file, .env, OBJECTIFY_* environment variables and flags.`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write the default configuration to the config file so it can be edited.

Keys:
  api_url            analysis service root
  selector           request shape: domain or mode
  default_axis       initial domain (general, political, science, medical)
                     or mode (nlp, ai)
  timeout            per-request timeout
  cache_ttl          response cache lifetime, 0 disables
  rate_limit         requests per second, 0 disables
  rate_burst         limiter burst
  live_detect        score the prompt while typing in the TUI
  live_detect_delay  typing pause before a live detection
  log_file           TUI log file, empty disables`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "overwrite existing configuration")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "# %s\n", path)
	_, err = w.Write(out)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	path, err := configPath()
	if err != nil {
		return err
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s\nUse --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := config.Save(path, config.Default()); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Created %s\n\n", path)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  1. Set api_url to your analysis service")
	fmt.Fprintln(w, "  2. Run 'objectify health' to check the connection")
	fmt.Fprintln(w, "  3. Run 'objectify' to open the TUI")
	return nil
}
