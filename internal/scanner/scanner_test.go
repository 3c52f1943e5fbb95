package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

type fakeMarket struct {
	candles map[string][]models.Candle
	prices  map[string]float64
}

func (f *fakeMarket) Candles(_ context.Context, symbol string, _ models.Interval, _ int) ([]models.Candle, error) {
	cs, ok := f.candles[symbol]
	if !ok {
		return nil, errors.New("candles unavailable")
	}
	return cs, nil
}

func (f *fakeMarket) Price(_ context.Context, symbol string) (float64, error) {
	p, ok := f.prices[symbol]
	if !ok {
		return 0, errors.New("price unavailable")
	}
	return p, nil
}

func (f *fakeMarket) AllMids(_ context.Context) (map[string]float64, error) {
	return f.prices, nil
}

type fakeSentiment struct {
	value int
	err   error
}

func (f *fakeSentiment) Sentiment(_ context.Context) (models.Sentiment, error) {
	if f.err != nil {
		return models.Sentiment{}, f.err
	}
	return models.Sentiment{Value: f.value, Classification: "Neutral", Timestamp: time.Now()}, nil
}

func risingCandles(n int) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		close := 100.0 + float64(i)
		candles[i] = models.Candle{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
			Open:      close - 1,
			High:      close + 0.5,
			Low:       close - 1.5,
			Close:     close,
			Volume:    1000,
		}
	}
	return candles
}

func flatCandles(n int) []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
			Open:      100,
			High:      100.5,
			Low:       99.5,
			Close:     100,
			Volume:    1000,
		}
	}
	return candles
}

func newTestMarket() *fakeMarket {
	return &fakeMarket{
		candles: map[string][]models.Candle{
			"UP":   risingCandles(60),
			"FLAT": flatCandles(60),
		},
		prices: map[string]float64{
			"UP":   159,
			"FLAT": 100,
		},
	}
}

func TestScanRanksByScoreAndSkipsFailures(t *testing.T) {
	s := New(newTestMarket(), &fakeSentiment{value: 50}, zerolog.Nop())

	opps, err := s.Scan(context.Background(), []string{"FLAT", "BAD", "UP"}, models.Interval1h)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2 (failing symbol skipped)", len(opps))
	}
	if opps[0].Symbol != "UP" || opps[1].Symbol != "FLAT" {
		t.Errorf("order = [%s %s], want [UP FLAT]", opps[0].Symbol, opps[1].Symbol)
	}
	if opps[0].Score <= opps[1].Score {
		t.Errorf("scores not descending: %v <= %v", opps[0].Score, opps[1].Score)
	}
}

func TestScanSentimentFailureFallsBackToNeutral(t *testing.T) {
	failing := New(newTestMarket(), &fakeSentiment{err: errors.New("feed down")}, zerolog.Nop())
	neutral := New(newTestMarket(), &fakeSentiment{value: 50}, zerolog.Nop())

	got, err := failing.Scan(context.Background(), []string{"UP"}, models.Interval1h)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want, err := neutral.Scan(context.Background(), []string{"UP"}, models.Interval1h)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(got) != 1 || len(want) != 1 {
		t.Fatalf("got %d/%d opportunities, want 1/1", len(got), len(want))
	}
	if got[0].Score != want[0].Score {
		t.Errorf("score with failed sentiment = %v, want neutral score %v", got[0].Score, want[0].Score)
	}
}

func TestScanEmptySymbolList(t *testing.T) {
	s := New(newTestMarket(), &fakeSentiment{value: 50}, zerolog.Nop())

	opps, err := s.Scan(context.Background(), nil, models.Interval1h)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if opps != nil {
		t.Errorf("got %v, want nil", opps)
	}
}

func TestEvaluateSingleSymbol(t *testing.T) {
	s := New(newTestMarket(), &fakeSentiment{value: 50}, zerolog.Nop())

	opp, err := s.Evaluate(context.Background(), "UP", models.Interval1h)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if opp.Symbol != "UP" {
		t.Errorf("Symbol = %q, want UP", opp.Symbol)
	}
	if opp.Metrics.Price != 159 {
		t.Errorf("Price = %v, want 159", opp.Metrics.Price)
	}
	if opp.Metrics.WinRate != 100 {
		t.Errorf("WinRate = %v, want 100 for a monotone rise", opp.Metrics.WinRate)
	}
	if opp.Setup.Type == "" {
		t.Error("Setup.Type is empty")
	}
	if opp.Score <= 0 || opp.Score > 100 {
		t.Errorf("Score = %v, want within (0, 100]", opp.Score)
	}
}

func TestEvaluatePriceFailure(t *testing.T) {
	market := newTestMarket()
	delete(market.prices, "UP")
	s := New(market, &fakeSentiment{value: 50}, zerolog.Nop())

	if _, err := s.Evaluate(context.Background(), "UP", models.Interval1h); err == nil {
		t.Fatal("Evaluate succeeded without a live price")
	}
}

func TestChange24hUsesDayOldClose(t *testing.T) {
	candles := risingCandles(60)
	// Close one day back is candles[36].Close = 136.
	got := change24h(candles, 170)
	want := (170.0 - 136.0) / 136.0 * 100

	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("change24h = %v, want %v", got, want)
	}

	if change24h(nil, 100) != 0 {
		t.Error("change24h with no candles should be 0")
	}
}

func TestVolume24hSumsNotional(t *testing.T) {
	candles := flatCandles(60)
	// 24 candles at 1000 volume and close 100 each.
	if got := volume24h(candles); got != 24*1000*100 {
		t.Errorf("volume24h = %v, want %v", got, 24*1000*100)
	}
}

func TestBuildSignalsMentionsExtremes(t *testing.T) {
	m := models.MarketMetrics{RSI: 78, Change24h: 7, WinRate: 65}
	signals := buildSignals(m, nil, 80)

	if len(signals) != 4 {
		t.Fatalf("got %d signals, want 4: %v", len(signals), signals)
	}
	wantFragments := []string{"overbought", "up 7.0%", "win rate 65%", "greed"}
	for i, frag := range wantFragments {
		if !strings.Contains(signals[i], frag) {
			t.Errorf("signals[%d] = %q, want it to mention %q", i, signals[i], frag)
		}
	}
}
