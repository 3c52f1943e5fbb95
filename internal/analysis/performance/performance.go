// Package performance derives historical performance metrics from a candle
// series: win rate, Sharpe ratio, maximum drawdown, and average volatility.
// All functions are pure and deterministic.
package performance

import (
	"math"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

const (
	// MinCandles is the minimum series length; below it Calculate returns
	// the neutral defaults.
	MinCandles = 30

	// AnnualizationPeriods feeds the sqrt factor applied to both the mean
	// and the deviation of returns. The factor cancels, so the reported
	// Sharpe equals the per-interval ratio.
	AnnualizationPeriods = 252

	// NeutralWinRate is reported when the series is too short to measure.
	NeutralWinRate = 50.0
)

// Metrics is the historical performance summary for one candle series.
type Metrics struct {
	WinRate       float64 // percent of strictly positive per-interval returns
	SharpeRatio   float64
	MaxDrawdown   float64 // percent, >= 0
	AvgVolatility float64 // percent, >= 0
}

// Calculate computes performance metrics for a chronological candle series.
// Series shorter than MinCandles produce {50, 0, 0, 0} rather than an error.
func Calculate(candles []models.Candle) Metrics {
	if len(candles) < MinCandles {
		return Metrics{WinRate: NeutralWinRate}
	}

	returns := intervalReturns(candles)

	return Metrics{
		WinRate:       winRate(returns),
		SharpeRatio:   sharpe(returns),
		MaxDrawdown:   maxDrawdown(candles),
		AvgVolatility: avgVolatility(candles),
	}
}

// intervalReturns computes simple per-interval returns from closes.
func intervalReturns(candles []models.Candle) []float64 {
	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev)
	}
	return returns
}

func winRate(returns []float64) float64 {
	if len(returns) == 0 {
		return NeutralWinRate
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns)) * 100
}

func sharpe(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	m := mean(returns)
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}

	factor := math.Sqrt(AnnualizationPeriods)
	return (m * factor) / (sd * factor)
}

// maxDrawdown tracks the peak-to-trough percentage decline in a single
// forward pass; the peak updates whenever a new high close is seen.
func maxDrawdown(candles []models.Candle) float64 {
	peak := candles[0].Close
	var worst float64

	for _, c := range candles {
		if c.Close > peak {
			peak = c.Close
		}
		if peak == 0 {
			continue
		}
		dd := (peak - c.Close) / peak * 100
		if dd > worst {
			worst = dd
		}
	}
	return worst
}

func avgVolatility(candles []models.Candle) float64 {
	var total float64
	n := 0
	for _, c := range candles {
		if c.Close == 0 {
			continue
		}
		total += (c.High - c.Low) / c.Close
		n++
	}
	if n == 0 {
		return 0
	}
	return total / float64(n) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		diff := v - m
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
