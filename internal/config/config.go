// Package config provides configuration management for the trading agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Exchange    ExchangeConfig `mapstructure:"exchange"`
	Scan        ScanConfig     `mapstructure:"scan"`
	Agent       AgentConfig    `mapstructure:"agent"`
	Journal     JournalConfig  `mapstructure:"journal"`
	UI          UIConfig       `mapstructure:"ui"`
	Credentials Credentials    `mapstructure:"-"` // Loaded separately
}

// ExchangeConfig holds exchange endpoint configuration.
type ExchangeConfig struct {
	APIURL       string `mapstructure:"api_url"`
	WSURL        string `mapstructure:"ws_url"`
	Wallet       string `mapstructure:"wallet"`
	SentimentURL string `mapstructure:"sentiment_url"`
}

// ScanConfig holds market scan configuration.
type ScanConfig struct {
	Symbols     []string `mapstructure:"symbols"`
	Interval    string   `mapstructure:"interval"`
	CandleLimit int      `mapstructure:"candle_limit"`
	Concurrency int      `mapstructure:"concurrency"`
}

// AgentConfig holds AI agent configuration.
type AgentConfig struct {
	Model           string  `mapstructure:"model"`
	SessionTTLHours float64 `mapstructure:"session_ttl_hours"`
	MaxTurns        int     `mapstructure:"max_turns"`
}

// JournalConfig holds journal persistence configuration.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// UIConfig holds output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	LogLevel     string `mapstructure:"log_level"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/hyperliquid-agent"
	}
	return filepath.Join(home, ".config", "hyperliquid-agent")
}

// Load loads configuration from the specified directory. If configDir
// is empty, the default config directory is used. Missing files are
// replaced with commented templates so a first run leaves something to
// edit.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return err
			}
			return v.Unmarshal(target)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("exchange.api_url", "https://api.hyperliquid.xyz")
	v.SetDefault("exchange.ws_url", "wss://api.hyperliquid.xyz/ws")
	v.SetDefault("exchange.sentiment_url", "https://api.alternative.me/fng/?limit=1")
	v.SetDefault("scan.symbols", []string{"BTC", "ETH", "SOL", "AVAX", "ARB"})
	v.SetDefault("scan.interval", "1h")
	v.SetDefault("scan.candle_limit", 100)
	v.SetDefault("scan.concurrency", 4)
	v.SetDefault("agent.model", "gpt-4o")
	v.SetDefault("agent.session_ttl_hours", 24.0)
	v.SetDefault("agent.max_turns", 8)
	v.SetDefault("journal.path", "")
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.log_level", "info")
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HYPERLIQUID_API_URL"); v != "" {
		cfg.Exchange.APIURL = v
	}
	if v := os.Getenv("HYPERLIQUID_WS_URL"); v != "" {
		cfg.Exchange.WSURL = v
	}
	if v := os.Getenv("HYPERLIQUID_WALLET"); v != "" {
		cfg.Exchange.Wallet = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, ok := validIntervals[c.Scan.Interval]; !ok {
		return fmt.Errorf("invalid scan interval: %s", c.Scan.Interval)
	}
	if c.Scan.CandleLimit <= 0 {
		return fmt.Errorf("candle_limit must be positive")
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive")
	}
	if c.Agent.SessionTTLHours <= 0 {
		return fmt.Errorf("session_ttl_hours must be positive")
	}
	return nil
}

// Interval returns the configured scan interval as a typed value.
func (c *Config) Interval() models.Interval {
	return models.Interval(c.Scan.Interval)
}

var validIntervals = map[string]struct{}{
	string(models.Interval1m):  {},
	string(models.Interval5m):  {},
	string(models.Interval15m): {},
	string(models.Interval1h):  {},
	string(models.Interval4h):  {},
	string(models.Interval1d):  {},
}
