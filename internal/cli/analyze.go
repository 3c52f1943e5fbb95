package cli

import (
	"context"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Full analysis for one symbol",
		Long: `Analyze computes price metrics, RSI, win rate, Sharpe ratio, max
drawdown and average volatility for a symbol, detects chart patterns,
scores the opportunity and classifies the best setup.`,
		Example: `  hlagent analyze BTC
  hlagent analyze ETH --interval 4h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			interval := scanInterval(cmd, app)

			opp, err := app.Scanner.Evaluate(ctx, symbol, interval)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(opp)
			}

			color.Cyan("📊 %s (%s)", symbol, interval)
			output.Println()
			output.Printf("Price:          %s (%s 24h)\n", FormatPrice(opp.Metrics.Price), FormatPercent(opp.Metrics.Change24h))
			output.Printf("24h volume:     %s\n", FormatUSD(opp.Metrics.Volume24h))
			output.Printf("RSI(14):        %.1f\n", opp.Metrics.RSI)
			output.Printf("Win rate:       %.1f%%\n", opp.Metrics.WinRate)
			output.Printf("Sharpe:         %.2f\n", opp.Metrics.SharpeRatio)
			output.Printf("Max drawdown:   %.1f%%\n", opp.Metrics.MaxDrawdown)
			output.Printf("Avg volatility: %.2f%%\n", opp.Metrics.AvgVolatility)
			output.Println()
			output.Printf("Score: %s  Setup: %s %s (%.0f%%)\n",
				output.ScoreColor(opp.Score),
				opp.Setup.Type,
				output.DirectionColor(string(opp.Setup.Direction)),
				opp.Setup.Confidence,
			)
			output.Dim("%s", opp.Setup.Reasoning)

			if len(opp.Patterns) > 0 {
				output.Println()
				for _, p := range opp.Patterns {
					output.Printf("Pattern: %s (%s, %.0f%%)\n", p.Name, p.Signal, p.Confidence)
					output.Printf("  entry %s  target %s  stop %s\n",
						FormatPrice(p.Entry), FormatPrice(p.Target), FormatPrice(p.StopLoss))
				}
			}
			if len(opp.Signals) > 0 {
				output.Println()
				for _, s := range opp.Signals {
					output.Printf("• %s\n", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("interval", "", "candle interval (1m, 5m, 15m, 1h, 4h, 1d)")
	return cmd
}

func newPatternsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns <symbol>",
		Short:   "Detect chart patterns for a symbol",
		Example: `  hlagent patterns BTC --interval 4h`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			interval := scanInterval(cmd, app)

			opp, err := app.Scanner.Evaluate(ctx, symbol, interval)
			if err != nil {
				output.Error("Pattern detection failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(opp.Patterns)
			}

			if len(opp.Patterns) == 0 {
				output.Info("No chart patterns detected for %s on %s", symbol, interval)
				return nil
			}

			color.Cyan("📐 Patterns - %s (%s)", symbol, interval)
			output.Println()
			for _, p := range opp.Patterns {
				output.Bold("%s  %s  %.0f%% confidence", p.Name, p.Signal, p.Confidence)
				output.Printf("  %s\n", p.Description)
				output.Printf("  entry %s  target %s  stop %s\n\n",
					FormatPrice(p.Entry), FormatPrice(p.Target), FormatPrice(p.StopLoss))
			}
			return nil
		},
	}

	cmd.Flags().String("interval", "", "candle interval (1m, 5m, 15m, 1h, 4h, 1d)")
	return cmd
}
