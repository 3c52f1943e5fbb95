package performance

import (
	"math"
	"testing"
	"time"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

func candlesFromCloses(closes []float64) []models.Candle {
	candles := make([]models.Candle, len(closes))
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		candles[i] = models.Candle{
			OpenTime:  base.Add(time.Duration(i) * time.Hour),
			CloseTime: base.Add(time.Duration(i+1) * time.Hour),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return candles
}

func TestCalculateShortSeriesDefaults(t *testing.T) {
	candles := candlesFromCloses(make([]float64, 10))

	m := Calculate(candles)

	want := Metrics{WinRate: NeutralWinRate}
	if m != want {
		t.Errorf("short series metrics = %+v, want %+v", m, want)
	}
}

func TestWinRateAllRising(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	m := Calculate(candlesFromCloses(closes))

	if m.WinRate != 100 {
		t.Errorf("rising series win rate = %v, want 100", m.WinRate)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("rising series drawdown = %v, want 0", m.MaxDrawdown)
	}
	if m.SharpeRatio <= 0 {
		t.Errorf("rising series sharpe = %v, want > 0", m.SharpeRatio)
	}
}

func TestWinRateCountsOnlyStrictGains(t *testing.T) {
	// 39 returns: 13 up, 13 down, 13 flat. Flat intervals are not wins.
	closes := make([]float64, 0, 40)
	price := 1000.0
	closes = append(closes, price)
	for i := 0; i < 13; i++ {
		price += 1
		closes = append(closes, price)
		price -= 1
		closes = append(closes, price)
		closes = append(closes, price)
	}

	m := Calculate(candlesFromCloses(closes))

	want := 13.0 / 39.0 * 100
	if math.Abs(m.WinRate-want) > 1e-9 {
		t.Errorf("win rate = %v, want %v", m.WinRate, want)
	}
}

func TestFlatSeriesZeroSharpe(t *testing.T) {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 500
	}

	m := Calculate(candlesFromCloses(closes))

	if m.SharpeRatio != 0 {
		t.Errorf("flat series sharpe = %v, want 0", m.SharpeRatio)
	}
	if m.WinRate != 0 {
		t.Errorf("flat series win rate = %v, want 0", m.WinRate)
	}
	if m.MaxDrawdown != 0 {
		t.Errorf("flat series drawdown = %v, want 0", m.MaxDrawdown)
	}
}

func TestMaxDrawdownPeakToTrough(t *testing.T) {
	// Rise to 120, fall to 90, recover: worst decline is 25% from the peak.
	closes := make([]float64, 0, 40)
	for i := 0; i <= 20; i++ {
		closes = append(closes, 100+float64(i))
	}
	for i := 1; i <= 10; i++ {
		closes = append(closes, 120-3*float64(i))
	}
	for i := 0; i < 9; i++ {
		closes = append(closes, 95+float64(i))
	}

	m := Calculate(candlesFromCloses(closes))

	if math.Abs(m.MaxDrawdown-25) > 1e-9 {
		t.Errorf("max drawdown = %v, want 25", m.MaxDrawdown)
	}
}

func TestMaxDrawdownPeakResets(t *testing.T) {
	// A later, higher peak starts a fresh drawdown measurement.
	closes := []float64{100, 90, 130, 117}
	for len(closes) < 30 {
		closes = append(closes, 130)
	}

	m := Calculate(candlesFromCloses(closes))

	if math.Abs(m.MaxDrawdown-10) > 1e-9 {
		t.Errorf("max drawdown = %v, want 10 (decline from the second peak)", m.MaxDrawdown)
	}
}

func TestAvgVolatility(t *testing.T) {
	// Every candle spans high-low = 2 around close = 100: 2% per candle.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}

	m := Calculate(candlesFromCloses(closes))

	if math.Abs(m.AvgVolatility-2) > 1e-9 {
		t.Errorf("avg volatility = %v, want 2", m.AvgVolatility)
	}
}
