// Package indicators computes a snapshot of technical indicators from a
// candle series. All functions are pure: identical input yields bit-identical
// output.
package indicators

import (
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// Indicator periods and seeds, kept in one place so the rulebook can be
// audited and asserted against directly.
const (
	// MinCandles is the minimum series length; below it every value falls
	// back to its neutral default.
	MinCandles = 20

	RSIPeriod       = 14
	SMAPeriod       = 20
	EMAPeriod       = 20
	BollingerPeriod = 20
	BollingerWidth  = 2.0
	MACDFastPeriod  = 12
	MACDSlowPeriod  = 26

	// NeutralRSI is returned when the series is too short to compute RSI.
	NeutralRSI = 50.0
)

// Bands holds Bollinger band values.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// MACDValues holds the MACD line, signal line, and histogram.
type MACDValues struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// Snapshot is the indicator set computed for the latest point of a series.
type Snapshot struct {
	RSI       float64
	SMA       float64
	EMA       float64
	Bollinger Bands
	MACD      MACDValues
}

// Calculate computes the indicator snapshot for a chronological candle
// series. Series shorter than MinCandles produce neutral defaults rather than
// an error: RSI 50, SMA and EMA pinned to the last close, bands and MACD zero.
func Calculate(candles []models.Candle) Snapshot {
	closes := closePrices(candles)

	if len(candles) < MinCandles {
		var last float64
		if len(closes) > 0 {
			last = closes[len(closes)-1]
		}
		return Snapshot{
			RSI: NeutralRSI,
			SMA: last,
			EMA: last,
		}
	}

	sma := mean(lastN(closes, SMAPeriod))
	sd := stdDev(lastN(closes, BollingerPeriod))
	macd := macdValue(closes)

	return Snapshot{
		RSI: rsi(closes),
		SMA: sma,
		EMA: ema(closes),
		Bollinger: Bands{
			Upper:  sma + BollingerWidth*sd,
			Middle: sma,
			Lower:  sma - BollingerWidth*sd,
		},
		MACD: MACDValues{
			MACD:   macd,
			Signal: macd, // signal tracks the MACD line itself; histogram stays 0
		},
	}
}

// rsi computes the 14-period RSI over the most recent 14 deltas of the whole
// series. A series with no losses over the window reads 100.
func rsi(closes []float64) float64 {
	window := lastN(closes, RSIPeriod+1)

	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / RSIPeriod
	avgLoss := losses / RSIPeriod
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ema seeds from the first close of the series and applies the 20-period
// smoothing factor across every subsequent close.
func ema(closes []float64) float64 {
	multiplier := 2.0 / float64(EMAPeriod+1)

	value := closes[0]
	for _, c := range closes[1:] {
		value = (c-value)*multiplier + value
	}
	return value
}

// macdValue approximates MACD as the difference between the 12-period and
// 26-period average close. This is not the textbook EMA construction; the
// simplification is deliberate and the signal line is defined equal to the
// MACD value, so the histogram is always zero.
func macdValue(closes []float64) float64 {
	fast := mean(lastN(closes, MACDFastPeriod))
	slow := mean(lastN(closes, MACDSlowPeriod))
	return fast - slow
}
