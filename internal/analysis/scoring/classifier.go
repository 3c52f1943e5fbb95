package scoring

import (
	"fmt"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// Setup classification thresholds. The cascade below is ordered; later rules
// are reachable only when every earlier rule fails.
const (
	premiumWinRate   = 70.0
	premiumRSI       = 70.0
	premiumSentiment = 60.0

	reversalWinRate   = 65.0
	reversalRSI       = 30.0
	reversalSentiment = 40.0

	momentumWinRate = 60.0
	momentumMove    = 6.0

	trendWinRate = 55.0

	confidencePremium  = 85.0
	confidenceReversal = 80.0
	confidenceMomentum = 75.0
	confidenceTrend    = 65.0
	confidenceNeutral  = 40.0
)

// Classify maps win rate, RSI, 24h change, and sentiment onto a discrete
// trade-setup category. First matching rule wins.
func Classify(rsi, change24h float64, sentiment int, winRate float64) models.TradeSetup {
	s := float64(sentiment)

	switch {
	case winRate > premiumWinRate && rsi > premiumRSI && s > premiumSentiment:
		return models.TradeSetup{
			Type:       "premium_contrarian",
			Direction:  models.DirectionShort,
			Reasoning:  fmt.Sprintf("High win rate (%.0f%%) with overbought RSI (%.0f) into crowd greed; fading the extreme.", winRate, rsi),
			Confidence: confidencePremium,
		}

	case winRate > reversalWinRate && rsi < reversalRSI && s < reversalSentiment:
		return models.TradeSetup{
			Type:       "oversold_reversal",
			Direction:  models.DirectionLong,
			Reasoning:  fmt.Sprintf("Solid win rate (%.0f%%) with oversold RSI (%.0f) during crowd fear; buying the washout.", winRate, rsi),
			Confidence: confidenceReversal,
		}

	case winRate > momentumWinRate && abs(change24h) > momentumMove:
		direction := models.DirectionLong
		if change24h < 0 {
			direction = models.DirectionShort
		}
		return models.TradeSetup{
			Type:       "momentum_continuation",
			Direction:  direction,
			Reasoning:  fmt.Sprintf("Win rate %.0f%% with a %.1f%% 24h move; riding the impulse.", winRate, change24h),
			Confidence: confidenceMomentum,
		}

	case winRate > trendWinRate:
		direction := models.DirectionShort
		if rsi > 50 {
			direction = models.DirectionLong
		}
		return models.TradeSetup{
			Type:       "trend_follow",
			Direction:  direction,
			Reasoning:  fmt.Sprintf("Win rate %.0f%% with RSI %.0f; following the prevailing bias.", winRate, rsi),
			Confidence: confidenceTrend,
		}

	default:
		return models.TradeSetup{
			Type:       "no_edge",
			Direction:  models.DirectionNeutral,
			Reasoning:  "No statistical edge detected; standing aside.",
			Confidence: confidenceNeutral,
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
