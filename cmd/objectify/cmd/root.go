// Package cmd contains all CLI commands for objectify.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/f3rmion/objectify/internal/logging"
	"github.com/f3rmion/objectify/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "objectify",
	Short: "Check prompts for bias and get neutral rewrites",
	Long: `objectify sends prompts to a bias analysis service and shows where the
wording is loaded, which categories of bias were found, how biased the prompt
scores overall, and a more neutral rewrite with alternatives.

Configuration is read from $HOME/.config/objectify/config.yaml, then .env,
then OBJECTIFY_* environment variables, then flags.

Running 'objectify' without arguments launches the interactive TUI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/objectify/config.yaml)")
	flags.Bool("verbose", false, "verbose output")
	flags.String("api-url", "", "analysis service URL")
	flags.String("selector", "", "request shape: domain or mode")
	flags.Duration("timeout", 0, "request timeout")

	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("api_url", flags.Lookup("api-url"))
	viper.BindPFlag("selector", flags.Lookup("selector"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
}

// initConfig reads .env files and ENV variables if set.
func initConfig() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	viper.SetEnvPrefix("OBJECTIFY")
	viper.AutomaticEnv()
}

// configPath returns the config file in use.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// loadConfig builds the effective configuration: defaults, file, then the
// viper layer of env vars and flags.
func loadConfig() (*config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return nil, "", fmt.Errorf("locating config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	config.Overlay(cfg, viper.GetViper())

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func verbose() bool {
	return viper.GetBool("verbose")
}

func newClient(cfg *config.Config, logger *zap.Logger) (*api.Client, error) {
	opts := cfg.ClientOptions()
	opts.Logger = logger
	client, err := api.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}
	return client, nil
}

// runTUI launches the TUI application.
func runTUI(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.NewFile(cfg.LogFile, verbose())
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting TUI",
		zap.String("api_url", client.BaseURL()),
		zap.String("selector", string(client.Selector())))

	p := tea.NewProgram(
		tui.NewApp(client, cfg, path, logger),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
