package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/cli"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/config"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/logging"
)

func main() {
	_ = godotenv.Load()

	configDir := ""
	for i, arg := range os.Args {
		if arg == "--config" && i+1 < len(os.Args) {
			configDir = os.Args[i+1]
		}
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultLogConfig()
	logCfg.Level = cfg.UI.LogLevel
	logger := logging.NewLoggerWithConfig(logCfg)

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
