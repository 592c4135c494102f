// Package config handles loading and saving user configuration for objectify.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/objectify/internal/api"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all user configuration.
type Config struct {
	APIURL          string        `yaml:"api_url" mapstructure:"api_url"`                     // Analysis service root
	Selector        string        `yaml:"selector" mapstructure:"selector"`                   // "domain" or "mode"
	DefaultAxis     string        `yaml:"default_axis" mapstructure:"default_axis"`           // Initial domain or mode
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`                     // Per-request timeout
	CacheTTL        time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`                 // 0 disables the response cache
	RateLimit       float64       `yaml:"rate_limit" mapstructure:"rate_limit"`               // Requests per second
	RateBurst       int           `yaml:"rate_burst" mapstructure:"rate_burst"`               // Limiter burst
	LiveDetect      bool          `yaml:"live_detect" mapstructure:"live_detect"`             // Detect while typing in the TUI
	LiveDetectDelay time.Duration `yaml:"live_detect_delay" mapstructure:"live_detect_delay"` // Typing pause before detecting
	LogFile         string        `yaml:"log_file" mapstructure:"log_file"`                   // TUI log destination
}

// Keys lists the configuration keys in file order.
var Keys = []string{
	"api_url", "selector", "default_axis", "timeout", "cache_ttl",
	"rate_limit", "rate_burst", "live_detect", "live_detect_delay", "log_file",
}

// Default returns the built-in configuration.
func Default() *Config {
	logFile := ""
	if dir, err := GetConfigDir(); err == nil {
		logFile = filepath.Join(dir, "objectify.log")
	}

	return &Config{
		APIURL:          "http://localhost:5001",
		Selector:        string(api.SelectorDomain),
		DefaultAxis:     "general",
		Timeout:         30 * time.Second,
		CacheTTL:        5 * time.Minute,
		RateLimit:       4,
		RateBurst:       2,
		LiveDetect:      true,
		LiveDetectDelay: 700 * time.Millisecond,
		LogFile:         logFile,
	}
}

// Load reads the config file at path over the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Source is a layered key/value lookup such as *viper.Viper.
type Source interface {
	IsSet(key string) bool
	GetString(key string) string
	GetDuration(key string) time.Duration
	GetFloat64(key string) float64
	GetInt(key string) int
	GetBool(key string) bool
}

// Overlay copies every key that src has set onto cfg.
func Overlay(cfg *Config, src Source) {
	if src.IsSet("api_url") {
		cfg.APIURL = src.GetString("api_url")
	}
	if src.IsSet("selector") {
		cfg.Selector = src.GetString("selector")
	}
	if src.IsSet("default_axis") {
		cfg.DefaultAxis = src.GetString("default_axis")
	}
	if src.IsSet("timeout") {
		cfg.Timeout = src.GetDuration("timeout")
	}
	if src.IsSet("cache_ttl") {
		cfg.CacheTTL = src.GetDuration("cache_ttl")
	}
	if src.IsSet("rate_limit") {
		cfg.RateLimit = src.GetFloat64("rate_limit")
	}
	if src.IsSet("rate_burst") {
		cfg.RateBurst = src.GetInt("rate_burst")
	}
	if src.IsSet("live_detect") {
		cfg.LiveDetect = src.GetBool("live_detect")
	}
	if src.IsSet("live_detect_delay") {
		cfg.LiveDetectDelay = src.GetDuration("live_detect_delay")
	}
	if src.IsSet("log_file") {
		cfg.LogFile = src.GetString("log_file")
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api_url %q must be an http(s) URL", c.APIURL))
	}

	sel, err := api.ParseSelector(c.Selector)
	if err != nil {
		problems = append(problems, err.Error())
	} else if c.DefaultAxis != "" {
		if err := sel.ValidateAxis(c.DefaultAxis); err != nil {
			problems = append(problems, fmt.Sprintf("default_axis: %v", err))
		}
	}

	if c.Timeout < 0 {
		problems = append(problems, "timeout must not be negative")
	}
	if c.CacheTTL < 0 {
		problems = append(problems, "cache_ttl must not be negative")
	}
	if c.RateLimit < 0 {
		problems = append(problems, "rate_limit must not be negative")
	}
	if c.LiveDetectDelay < 0 {
		problems = append(problems, "live_detect_delay must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ClientOptions converts the configuration into API client options.
func (c *Config) ClientOptions() api.Options {
	sel, _ := api.ParseSelector(c.Selector)
	return api.Options{
		BaseURL:   c.APIURL,
		Selector:  sel,
		Timeout:   c.Timeout,
		CacheTTL:  c.CacheTTL,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
	}
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "objectify"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "objectify"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
