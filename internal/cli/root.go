// Package cli provides the command-line interface for the trading agent.
package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/agents"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/config"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/exchange"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/logging"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/risk"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/scanner"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Exchange  *exchange.Hyperliquid
	Sentiment *exchange.FearGreed
	Scanner   *scanner.Scanner
	Sizer     *risk.Sizer
	Journal   store.Journal
	Agent     *agents.Agent
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if !cfg.UI.ColorEnabled {
		color.NoColor = true
	}

	app.Exchange = exchange.NewHyperliquid(cfg.Exchange.APIURL, logger)
	app.Sentiment = exchange.NewFearGreed(cfg.Exchange.SentimentURL, logger)
	app.Scanner = scanner.New(app.Exchange, app.Sentiment, logger)
	app.Scanner.Configure(cfg.Scan.Concurrency, cfg.Scan.CandleLimit)
	app.Sizer = risk.NewSizer(logger)

	if cfg.Journal.Path != "" {
		journal, err := store.NewSQLiteJournal(cfg.Journal.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open journal, scans will not be persisted")
		} else {
			app.Journal = journal
			logger.Debug().Str("path", cfg.Journal.Path).Msg("Journal opened")
		}
	}

	if cfg.Credentials.OpenAI.APIKey != "" {
		llm := agents.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Agent.Model)
		executor := agents.NewToolExecutor(
			app.Scanner, app.Exchange, app.Exchange, app.Exchange, app.Sentiment,
			app.Sizer, cfg.Exchange.Wallet, cfg.Scan.Symbols, cfg.Interval(),
		)
		ttl := time.Duration(cfg.Agent.SessionTTLHours * float64(time.Hour))
		app.Agent = agents.NewAgent(llm, executor, ttl, cfg.Agent.MaxTurns, logger)
		logger.Debug().Str("model", cfg.Agent.Model).Msg("OpenAI agent initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "hlagent",
		Short: "Hyperliquid Trading Agent - AI-assisted opportunity scanning and position sizing",
		Long: `Hyperliquid Trading Agent scans perpetual futures markets, scores
opportunities, detects chart patterns and computes risk-bounded position
sizes. An optional AI chat mode drives the same tools conversationally.

The agent never places orders.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/hyperliquid-agent)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newSizeCmd(app))
	rootCmd.AddCommand(newSentimentCmd(app))
	rootCmd.AddCommand(newAccountCmd(app))
	rootCmd.AddCommand(newWatchCmd(app))
	rootCmd.AddCommand(newChatCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("hlagent %s\n", Version)
		},
	}
}
