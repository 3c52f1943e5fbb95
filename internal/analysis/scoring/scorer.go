// Package scoring turns market metrics and crowd sentiment into a single
// 0-100 opportunity score and a discrete trade-setup classification.
package scoring

import (
	"math"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// Component weights and branch thresholds for the opportunity score. The
// weights sum to 1.0; each component is scored on 0-100 before weighting.
const (
	WeightWinRate   = 0.40
	WeightSharpe    = 0.20
	WeightMomentum  = 0.20
	WeightVolume    = 0.10
	WeightSentiment = 0.10

	momentumBase          = 50.0
	momentumOverbought    = 15.0 // RSI > 70
	momentumOversold      = 20.0 // RSI < 30, replaces the overbought bonus
	momentumChopPenalty   = 10.0 // RSI inside (45, 55)
	momentumMoveBonus     = 15.0 // |24h change| > 5%
	momentumMoveThreshold = 5.0

	volumeUnit  = 1_000_000.0
	volumeScale = 10.0

	sentimentEuphoric   = 80.0 // crowd greed with overbought RSI
	sentimentCapitulate = 70.0 // crowd fear with oversold RSI
	sentimentSkewed     = 30.0 // sentiment more than 20 points off center
	sentimentSkewBand   = 20.0

	drawdownPenaltyLimit  = 50.0
	drawdownPenaltyFactor = 0.8
)

// Score combines metrics and a 0-100 sentiment index into one 0-100 ranking
// score using fixed component weights. Pure and deterministic.
func Score(m models.MarketMetrics, sentiment int) float64 {
	total := math.Min(m.WinRate, 100) * WeightWinRate
	total += sharpeComponent(m.SharpeRatio) * WeightSharpe
	total += momentumComponent(m.RSI, m.Change24h) * WeightMomentum
	total += volumeComponent(m.Volume24h) * WeightVolume
	total += sentimentComponent(sentiment, m.RSI) * WeightSentiment

	if m.MaxDrawdown > drawdownPenaltyLimit {
		total *= drawdownPenaltyFactor
	}

	return clamp(total, 0, 100)
}

// sharpeComponent maps Sharpe from roughly [-2, 2] onto [0, 100].
func sharpeComponent(sharpe float64) float64 {
	return clamp((sharpe+2)*25, 0, 100)
}

func momentumComponent(rsi, change24h float64) float64 {
	score := momentumBase

	switch {
	case rsi < 30:
		score += momentumOversold
	case rsi > 70:
		score += momentumOverbought
	}

	if rsi > 45 && rsi < 55 {
		score -= momentumChopPenalty
	}
	if math.Abs(change24h) > momentumMoveThreshold {
		score += momentumMoveBonus
	}

	return clamp(score, 0, 100)
}

func volumeComponent(volume24h float64) float64 {
	return math.Min(100, volume24h/volumeUnit*volumeScale)
}

// sentimentComponent rewards alignment of crowd extremes with RSI extremes;
// a merely skewed crowd earns a small base.
func sentimentComponent(sentiment int, rsi float64) float64 {
	s := float64(sentiment)
	switch {
	case s > 75 && rsi > 65:
		return sentimentEuphoric
	case s < 25 && rsi < 35:
		return sentimentCapitulate
	case math.Abs(s-50) > sentimentSkewBand:
		return sentimentSkewed
	default:
		return 0
	}
}

func clamp(value, minVal, maxVal float64) float64 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
