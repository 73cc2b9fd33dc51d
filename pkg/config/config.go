// Package config loads the ambient configuration consumed by session
// creation and waiter construction. Values come from an optional YAML file,
// WEBTEST_* environment variables, and built-in defaults, in that order of
// precedence (highest last). The library only ever reads configuration; it
// never writes it.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the values read once per session creation or waiter
// construction.
type Config struct {
	// Browser is the free-text variant name, e.g. "chrome-headless".
	// Empty selects the default family.
	Browser string `mapstructure:"browser"`

	// Headless requests headless mode in addition to the variant's own flag
	Headless bool `mapstructure:"headless"`

	// WindowWidth and WindowHeight set the initial window geometry
	WindowWidth  int `mapstructure:"window_width"`
	WindowHeight int `mapstructure:"window_height"`

	// ImplicitWait is applied to every constructed handle
	ImplicitWait time.Duration `mapstructure:"implicit_wait"`

	// ExplicitWait is the default timeout for polling waits
	ExplicitWait time.Duration `mapstructure:"explicit_wait"`

	// PollInterval is the fixed sleep between wait evaluations
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// RemoteURL is the WebDriver endpoint sessions are created against
	RemoteURL string `mapstructure:"remote_url"`

	// StrictHeadless makes a headless request against a family without
	// headless support fail fast instead of being silently ignored
	StrictHeadless bool `mapstructure:"strict_headless"`
}

// Defaults.
const (
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	DefaultExplicitWait = 10 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultRemoteURL    = "http://127.0.0.1:4444/wd/hub"

	envPrefix       = "WEBTEST"
	defaultFileName = "webtest"
)

// Load reads configuration from the file at path, falling back to a
// "webtest.yaml" in the working directory when path is empty. A missing
// default file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("browser", "")
	v.SetDefault("headless", false)
	v.SetDefault("window_width", DefaultWindowWidth)
	v.SetDefault("window_height", DefaultWindowHeight)
	v.SetDefault("implicit_wait", time.Duration(0))
	v.SetDefault("explicit_wait", DefaultExplicitWait)
	v.SetDefault("poll_interval", DefaultPollInterval)
	v.SetDefault("remote_url", DefaultRemoteURL)
	v.SetDefault("strict_headless", false)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(defaultFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()
	return &cfg, nil
}

// Default returns a Config populated with the built-in defaults, bypassing
// file and environment lookup.
func Default() *Config {
	cfg := &Config{
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		ExplicitWait: DefaultExplicitWait,
		PollInterval: DefaultPollInterval,
		RemoteURL:    DefaultRemoteURL,
	}
	return cfg
}

// normalize clamps nonsensical values back to the defaults.
func (c *Config) normalize() {
	if c.WindowWidth <= 0 {
		c.WindowWidth = DefaultWindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = DefaultWindowHeight
	}
	if c.ExplicitWait <= 0 {
		c.ExplicitWait = DefaultExplicitWait
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ImplicitWait < 0 {
		c.ImplicitWait = 0
	}
	if c.RemoteURL == "" {
		c.RemoteURL = DefaultRemoteURL
	}
}
