// Package scanner ranks symbols by trading opportunity quality. It pulls
// candles and a market-wide sentiment reading, computes technical and
// performance metrics per symbol, detects chart patterns and produces a
// scored, sorted opportunity list.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/analysis/indicators"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/analysis/patterns"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/analysis/performance"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/analysis/scoring"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/exchange"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

const (
	// DefaultCandleLimit gives every detector and calculator enough
	// history to run at full fidelity.
	DefaultCandleLimit = 100

	// DefaultConcurrency bounds parallel candle fetches.
	DefaultConcurrency = 4

	// dailyCandleSpan is how many hourly candles make up the 24h change
	// and volume figures.
	dailyCandleSpan = 24

	rsiOverbought  = 70.0
	rsiOversold    = 30.0
	bigMovePct     = 5.0
	strongWinRate  = 60.0
	fearThreshold  = 25
	greedThreshold = 75
)

// Scanner orchestrates one market scan.
type Scanner struct {
	market      exchange.MarketData
	sentiment   exchange.SentimentReader
	detector    *patterns.Detector
	concurrency int
	candleLimit int
	log         zerolog.Logger
}

func New(market exchange.MarketData, sentiment exchange.SentimentReader, log zerolog.Logger) *Scanner {
	return &Scanner{
		market:      market,
		sentiment:   sentiment,
		detector:    patterns.NewDetector(log),
		concurrency: DefaultConcurrency,
		candleLimit: DefaultCandleLimit,
		log:         log.With().Str("component", "scanner").Logger(),
	}
}

// Configure overrides the worker count and candle fetch depth.
// Non-positive values keep the defaults.
func (s *Scanner) Configure(concurrency, candleLimit int) {
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	if candleLimit > 0 {
		s.candleLimit = candleLimit
	}
}

// Scan evaluates the given symbols on the interval and returns
// opportunities sorted by score, best first. Symbols that fail to fetch
// are logged and skipped rather than failing the whole scan.
func (s *Scanner) Scan(ctx context.Context, symbols []string, interval models.Interval) ([]models.Opportunity, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	sentimentValue := exchange.NeutralSentiment
	if reading, err := s.sentiment.Sentiment(ctx); err != nil {
		s.log.Warn().Err(err).Msg("sentiment unavailable, scoring with neutral reading")
	} else {
		sentimentValue = reading.Value
	}

	workChan := make(chan string, len(symbols))
	resultChan := make(chan *models.Opportunity, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range workChan {
				if ctx.Err() != nil {
					return
				}
				opp, err := s.evaluate(ctx, symbol, interval, sentimentValue)
				if err != nil {
					s.log.Warn().Err(err).Str("symbol", symbol).Msg("skipping symbol")
					continue
				}
				resultChan <- opp
			}
		}()
	}

	for _, symbol := range symbols {
		workChan <- symbol
	}
	close(workChan)

	wg.Wait()
	close(resultChan)

	opportunities := make([]models.Opportunity, 0, len(symbols))
	for opp := range resultChan {
		opportunities = append(opportunities, *opp)
	}

	sort.Slice(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})

	s.log.Info().
		Int("scanned", len(symbols)).
		Int("ranked", len(opportunities)).
		Int("sentiment", sentimentValue).
		Msg("scan complete")

	return opportunities, ctx.Err()
}

// Evaluate analyzes a single symbol without ranking it against others.
func (s *Scanner) Evaluate(ctx context.Context, symbol string, interval models.Interval) (*models.Opportunity, error) {
	sentimentValue := exchange.NeutralSentiment
	if reading, err := s.sentiment.Sentiment(ctx); err == nil {
		sentimentValue = reading.Value
	}
	return s.evaluate(ctx, symbol, interval, sentimentValue)
}

func (s *Scanner) evaluate(ctx context.Context, symbol string, interval models.Interval, sentiment int) (*models.Opportunity, error) {
	candles, err := s.market.Candles(ctx, symbol, interval, s.candleLimit)
	if err != nil {
		return nil, err
	}

	price, err := s.market.Price(ctx, symbol)
	if err != nil {
		return nil, err
	}

	metrics := buildMetrics(candles, price)
	detected := s.detector.Detect(symbol, string(interval), candles, price)
	score := scoring.Score(metrics, sentiment)
	setup := scoring.Classify(metrics.RSI, metrics.Change24h, sentiment, metrics.WinRate)

	return &models.Opportunity{
		Symbol:   symbol,
		Metrics:  metrics,
		Score:    score,
		Setup:    setup,
		Patterns: detected,
		Signals:  buildSignals(metrics, detected, sentiment),
	}, nil
}

func buildMetrics(candles []models.Candle, price float64) models.MarketMetrics {
	snapshot := indicators.Calculate(candles)
	perf := performance.Calculate(candles)

	return models.MarketMetrics{
		Price:         price,
		Change24h:     change24h(candles, price),
		Volume24h:     volume24h(candles),
		RSI:           snapshot.RSI,
		WinRate:       perf.WinRate,
		SharpeRatio:   perf.SharpeRatio,
		MaxDrawdown:   perf.MaxDrawdown,
		AvgVolatility: perf.AvgVolatility,
	}
}

// change24h measures price against the close one day's worth of candles
// back. With fewer candles than a day it falls back to the oldest close.
func change24h(candles []models.Candle, price float64) float64 {
	if len(candles) == 0 || price <= 0 {
		return 0
	}
	idx := len(candles) - dailyCandleSpan
	if idx < 0 {
		idx = 0
	}
	base := candles[idx].Close
	if base <= 0 {
		return 0
	}
	return (price - base) / base * 100
}

// volume24h sums notional volume over the most recent day of candles.
func volume24h(candles []models.Candle) float64 {
	start := len(candles) - dailyCandleSpan
	if start < 0 {
		start = 0
	}
	var total float64
	for _, c := range candles[start:] {
		total += c.Volume * c.Close
	}
	return total
}

func buildSignals(m models.MarketMetrics, detected []models.Pattern, sentiment int) []string {
	var signals []string

	switch {
	case m.RSI > rsiOverbought:
		signals = append(signals, fmt.Sprintf("RSI overbought at %.1f", m.RSI))
	case m.RSI < rsiOversold:
		signals = append(signals, fmt.Sprintf("RSI oversold at %.1f", m.RSI))
	}

	if m.Change24h > bigMovePct {
		signals = append(signals, fmt.Sprintf("up %.1f%% in 24h", m.Change24h))
	} else if m.Change24h < -bigMovePct {
		signals = append(signals, fmt.Sprintf("down %.1f%% in 24h", -m.Change24h))
	}

	if m.WinRate > strongWinRate {
		signals = append(signals, fmt.Sprintf("win rate %.0f%% over recent intervals", m.WinRate))
	}

	for _, p := range detected {
		signals = append(signals, fmt.Sprintf("%s pattern (%s, %.0f%% confidence)", p.Name, p.Signal, p.Confidence))
	}

	switch {
	case sentiment >= greedThreshold:
		signals = append(signals, fmt.Sprintf("market in greed (%d)", sentiment))
	case sentiment <= fearThreshold:
		signals = append(signals, fmt.Sprintf("market in fear (%d)", sentiment))
	}

	return signals
}
