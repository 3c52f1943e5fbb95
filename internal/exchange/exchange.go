// Package exchange provides market data, account state and sentiment
// access for the trading agent.
package exchange

import (
	"context"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// MarketData defines the read-only market data operations the analysis
// layer depends on.
type MarketData interface {
	// Candles returns up to limit most-recent candles for the symbol at
	// the given interval, oldest first.
	Candles(ctx context.Context, symbol string, interval models.Interval, limit int) ([]models.Candle, error)

	// Price returns the current mid price for the symbol.
	Price(ctx context.Context, symbol string) (float64, error)

	// AllMids returns the current mid price for every listed symbol.
	AllMids(ctx context.Context) (map[string]float64, error)
}

// MetaReader exposes instrument metadata.
type MetaReader interface {
	Instruments(ctx context.Context) ([]models.Instrument, error)
	Instrument(ctx context.Context, symbol string) (models.Instrument, error)
}

// AccountReader exposes the account margin summary.
type AccountReader interface {
	AccountState(ctx context.Context, address string) (models.AccountState, error)
}

// SentimentReader exposes a market-wide sentiment reading.
type SentimentReader interface {
	Sentiment(ctx context.Context) (models.Sentiment, error)
}
