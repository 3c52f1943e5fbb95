package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/logging"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/risk"
)

func newSizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size <symbol> <stop>",
		Short: "Compute a risk-bounded position size",
		Long: `Size computes the largest position the account's risk tier allows
for a trade, applying the per-trade risk cap, available margin, the
exchange minimum order value and lot/tick rounding.

The entry price defaults to the current mid.`,
		Example: `  hlagent size BTC 48000
  hlagent size ETH 3200 --entry 3350 --leverage 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			stop, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				output.Error("Invalid stop price: %s", args[1])
				return err
			}

			entry, _ := cmd.Flags().GetFloat64("entry")
			leverage, _ := cmd.Flags().GetFloat64("leverage")

			if entry == 0 {
				entry, err = app.Exchange.Price(ctx, symbol)
				if err != nil {
					output.Error("Could not fetch price: %v", err)
					return err
				}
			}

			inst, err := app.Exchange.Instrument(ctx, symbol)
			if err != nil {
				output.Error("Unknown instrument: %v", err)
				return err
			}

			account, err := app.Exchange.AccountState(ctx, app.Config.Exchange.Wallet)
			if err != nil {
				output.Error("Could not fetch account state: %v", err)
				return err
			}

			result, err := app.Sizer.Size(risk.SizeRequest{
				Symbol:   symbol,
				Entry:    entry,
				Stop:     stop,
				Leverage: leverage,
				Account:  account,
			}, inst)
			if err != nil {
				output.Error("Sizing failed: %v", err)
				return err
			}

			logging.LogSizing(app.Logger, symbol, result.PositionSize, result.NotionalValue,
				result.RiskAmount, result.Profile.Tier)

			if app.Journal != nil {
				if err := app.Journal.SaveSizing(ctx, account.AccountValue, result); err != nil {
					app.Logger.Warn().Err(err).Msg("Failed to journal sizing decision")
				}
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			color.Cyan("⚖ Position Size - %s", symbol)
			output.Println()
			output.Printf("Size:      %s %s\n", FormatSize(result.PositionSize), symbol)
			output.Printf("Entry:     %s\n", FormatPrice(result.EntryPrice))
			output.Printf("Notional:  %s\n", FormatUSD(result.NotionalValue))
			output.Printf("Margin:    %s at %.0fx\n", FormatUSD(result.MarginRequired), result.Leverage)
			output.Printf("Risk:      %s if stopped out\n", FormatUSD(result.RiskAmount))
			output.Printf("Tier:      %s (usage %.0f%%, risk %.0f%%)\n",
				result.Profile.Tier, result.Profile.UsagePct, result.Profile.RiskPct)

			for _, w := range result.Warnings {
				output.Warning("⚠ %s", w)
			}
			return nil
		},
	}

	cmd.Flags().Float64("entry", 0, "entry price (default: current mid)")
	cmd.Flags().Float64("leverage", 3, "requested leverage")
	return cmd
}

func newAccountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show account equity, margin and risk tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			account, err := app.Exchange.AccountState(ctx, app.Config.Exchange.Wallet)
			if err != nil {
				output.Error("Could not fetch account state: %v", err)
				return err
			}

			profile := risk.ProfileFor(account.AccountValue)

			if output.IsJSON() {
				return output.JSON(map[string]any{
					"account":          account,
					"available_margin": account.AvailableMargin(),
					"profile":          profile,
				})
			}

			color.Cyan("💰 Account")
			output.Println()
			output.Printf("Equity:            %s\n", FormatUSD(account.AccountValue))
			output.Printf("Margin used:       %s\n", FormatUSD(account.TotalMarginUsed))
			output.Printf("Available margin:  %s\n", FormatUSD(account.AvailableMargin()))
			output.Printf("Risk tier:         %s (usage %.0f%%, risk %.0f%%)\n",
				profile.Tier, profile.UsagePct, profile.RiskPct)
			return nil
		},
	}
}

func newSentimentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sentiment",
		Short: "Show the crypto Fear & Greed index",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			reading, err := app.Sentiment.Sentiment(ctx)
			if err != nil {
				output.Error("Could not fetch sentiment: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(reading)
			}

			color.Cyan("🌡 Fear & Greed Index")
			output.Println()
			output.Printf("%d - %s (as of %s)\n",
				reading.Value, reading.Classification, reading.Timestamp.Format("2006-01-02"))
			return nil
		},
	}
}
