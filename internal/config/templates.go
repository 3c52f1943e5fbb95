package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Hyperliquid Trading Agent Configuration

[exchange]
# Hyperliquid REST endpoint
api_url = "https://api.hyperliquid.xyz"
# Hyperliquid websocket endpoint
ws_url = "wss://api.hyperliquid.xyz/ws"
# Wallet address used for account queries (0x...)
wallet = ""
# Fear & Greed index endpoint
sentiment_url = "https://api.alternative.me/fng/?limit=1"

[scan]
# Symbols to scan
symbols = ["BTC", "ETH", "SOL", "AVAX", "ARB"]
# Candle interval: 1m, 5m, 15m, 1h, 4h, 1d
interval = "1h"
# Candles fetched per symbol
candle_limit = 100
# Parallel fetches during a scan
concurrency = 4

[agent]
# OpenAI model for the chat agent
model = "gpt-4o"
# Conversation session lifetime in hours
session_ttl_hours = 24.0
# Maximum tool-call turns per request
max_turns = 8

[journal]
# SQLite journal location (empty disables persistence)
path = ""

[ui]
# Enable colored output
color_enabled = true
# Log level: debug, info, warn, error
log_level = "info"
`

const credentialsTemplate = `# Hyperliquid Trading Agent Credentials
# Keep this file private (chmod 600)

[openai]
api_key = ""
`

func createTemplateConfig(configDir string) error {
	return writeTemplate(configDir, "config.toml", configTemplate, 0o644)
}

func createTemplateCredentials(configDir string) error {
	return writeTemplate(configDir, "credentials.toml", credentialsTemplate, 0o600)
}

func writeTemplate(configDir, name, content string, perm os.FileMode) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
