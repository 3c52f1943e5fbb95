package cli

import (
	"context"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/exchange"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/logging"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

func newScanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [symbols...]",
		Short: "Scan symbols and rank trading opportunities",
		Long: `Scan fetches candles for each symbol, computes technical and
performance metrics, detects chart patterns, scores every symbol and
classifies the best setup. Results are sorted by score.`,
		Example: `  hlagent scan
  hlagent scan BTC ETH SOL
  hlagent scan --interval 4h --top 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
			defer cancel()

			symbols := app.Config.Scan.Symbols
			if len(args) > 0 {
				symbols = make([]string, len(args))
				for i, a := range args {
					symbols[i] = strings.ToUpper(a)
				}
			}

			interval := scanInterval(cmd, app)
			top, _ := cmd.Flags().GetInt("top")

			opportunities, err := app.Scanner.Scan(ctx, symbols, interval)
			if err != nil {
				output.Error("Scan failed: %v", err)
				return err
			}
			if len(opportunities) == 0 {
				output.Warning("No symbols could be evaluated")
				return nil
			}

			sentiment := exchange.NeutralSentiment
			if reading, err := app.Sentiment.Sentiment(ctx); err == nil {
				sentiment = reading.Value
			}
			logging.LogScan(app.Logger, string(interval), len(symbols), len(opportunities), sentiment)

			if app.Journal != nil {
				if err := app.Journal.SaveScan(ctx, interval, sentiment, opportunities); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to journal scan")
				}
			}

			if top > 0 && len(opportunities) > top {
				opportunities = opportunities[:top]
			}

			if output.IsJSON() {
				return output.JSON(opportunities)
			}

			printOpportunities(output, opportunities, interval)
			return nil
		},
	}

	cmd.Flags().String("interval", "", "candle interval (1m, 5m, 15m, 1h, 4h, 1d)")
	cmd.Flags().Int("top", 0, "show only the top N opportunities")
	return cmd
}

func scanInterval(cmd *cobra.Command, app *App) models.Interval {
	if s, _ := cmd.Flags().GetString("interval"); s != "" {
		return models.Interval(s)
	}
	return app.Config.Interval()
}

func printOpportunities(output *Output, opportunities []models.Opportunity, interval models.Interval) {
	color.Cyan("🔎 Market Scan (%s)", interval)
	output.Println()

	for i, opp := range opportunities {
		output.Printf("%d. %s  score %s  %s %s (%.0f%%)\n",
			i+1,
			output.ColoredString(ColorBold, opp.Symbol),
			output.ScoreColor(opp.Score),
			opp.Setup.Type,
			output.DirectionColor(string(opp.Setup.Direction)),
			opp.Setup.Confidence,
		)
		output.Printf("   price %s  24h %s  RSI %.1f  win %.0f%%  sharpe %.2f  dd %.1f%%\n",
			FormatPrice(opp.Metrics.Price),
			FormatPercent(opp.Metrics.Change24h),
			opp.Metrics.RSI,
			opp.Metrics.WinRate,
			opp.Metrics.SharpeRatio,
			opp.Metrics.MaxDrawdown,
		)
		if len(opp.Signals) > 0 {
			output.Dim("   %s", strings.Join(opp.Signals, "; "))
		}
		for _, p := range opp.Patterns {
			output.Printf("   pattern: %s (%s, %.0f%%)  entry %s  target %s  stop %s\n",
				p.Name, p.Signal, p.Confidence,
				FormatPrice(p.Entry), FormatPrice(p.Target), FormatPrice(p.StopLoss))
		}
		output.Println()
	}
}

func newWatchCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [symbols...]",
		Short: "Stream live mid prices",
		Long:  `Watch subscribes to the exchange's price feed and prints ticks for the given symbols until interrupted.`,
		Example: `  hlagent watch BTC ETH
  hlagent watch --min-move 0.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			watched := make(map[string]bool, len(args))
			for _, a := range args {
				watched[strings.ToUpper(a)] = true
			}
			if len(watched) == 0 {
				for _, s := range app.Config.Scan.Symbols {
					watched[s] = true
				}
			}

			minMove, _ := cmd.Flags().GetFloat64("min-move")
			last := make(map[string]float64)

			stream := exchange.NewPriceStream(app.Config.Exchange.WSURL, app.Logger)
			stream.OnMid(func(u exchange.MidUpdate) {
				if !watched[u.Symbol] {
					return
				}
				prev, seen := last[u.Symbol]
				if seen && minMove > 0 {
					movePct := (u.Price - prev) / prev * 100
					if movePct < minMove && movePct > -minMove {
						return
					}
				}
				last[u.Symbol] = u.Price
				output.Printf("%s  %-6s %s\n", u.At.Format("15:04:05"), u.Symbol, FormatPrice(u.Price))
			})

			color.Cyan("📡 Watching %d symbols (Ctrl+C to stop)", len(watched))
			err := stream.Run(cmd.Context())
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().Float64("min-move", 0, "only print moves larger than this percent")
	return cmd
}
