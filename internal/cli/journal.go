package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/store"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Review past scans and sizing decisions",
	}

	cmd.AddCommand(newJournalScansCmd(app))
	cmd.AddCommand(newJournalSizingsCmd(app))
	return cmd
}

func journalFilter(cmd *cobra.Command) store.ScanFilter {
	symbol, _ := cmd.Flags().GetString("symbol")
	limit, _ := cmd.Flags().GetInt("limit")
	days, _ := cmd.Flags().GetInt("days")

	filter := store.ScanFilter{
		Symbol: strings.ToUpper(symbol),
		Limit:  limit,
	}
	if days > 0 {
		filter.Since = time.Now().AddDate(0, 0, -days)
	}
	return filter
}

func addJournalFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Int("limit", 20, "maximum entries to show")
	cmd.Flags().Int("days", 0, "only entries from the last N days")
}

func newJournalScansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "List journaled scan results",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Journal == nil {
				output.Error("Journal not configured. Set journal.path in config.toml.")
				return fmt.Errorf("journal not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			records, err := app.Journal.GetScans(ctx, journalFilter(cmd))
			if err != nil {
				output.Error("Failed to read journal: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Info("No journaled scans")
				return nil
			}

			color.Cyan("📓 Scan Journal")
			output.Println()
			for _, rec := range records {
				output.Printf("%s  %-6s score %s  %s %s (%.0f%%)  sentiment %d\n",
					rec.ScannedAt.Format("2006-01-02 15:04"),
					rec.Opportunity.Symbol,
					output.ScoreColor(rec.Opportunity.Score),
					rec.Opportunity.Setup.Type,
					output.DirectionColor(string(rec.Opportunity.Setup.Direction)),
					rec.Opportunity.Setup.Confidence,
					rec.Sentiment,
				)
			}
			return nil
		},
	}

	addJournalFlags(cmd)
	return cmd
}

func newJournalSizingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sizings",
		Short: "List journaled position sizing decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Journal == nil {
				output.Error("Journal not configured. Set journal.path in config.toml.")
				return fmt.Errorf("journal not configured")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			records, err := app.Journal.GetSizings(ctx, journalFilter(cmd))
			if err != nil {
				output.Error("Failed to read journal: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Info("No journaled sizing decisions")
				return nil
			}

			color.Cyan("📓 Sizing Journal")
			output.Println()
			for _, rec := range records {
				output.Printf("%s  %-6s size %s  notional %s  risk %s  %s tier\n",
					rec.DecidedAt.Format("2006-01-02 15:04"),
					rec.Result.Symbol,
					FormatSize(rec.Result.PositionSize),
					FormatUSD(rec.Result.NotionalValue),
					FormatUSD(rec.Result.RiskAmount),
					rec.Result.Profile.Tier,
				)
			}
			return nil
		},
	}

	addJournalFlags(cmd)
	return cmd
}
