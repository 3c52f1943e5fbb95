// Package patterns scans a candle series for a fixed catalog of chart
// formations: rising wedge, double top, bullish flag, and descending
// triangle. Detection is deterministic and threshold-based; each pattern
// type carries a fixed confidence and fixed entry/target/stop offsets from
// the current price.
package patterns

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

// Detection thresholds and per-pattern constants. Lifted into one table so
// the rulebook can be audited and asserted against in one place.
const (
	// MinCandles is the minimum series length; shorter series yield no
	// patterns.
	MinCandles = 50

	// extremaSpan is the lookaround distance for local highs and lows: a
	// point is a local high when it exceeds the highs five bars to either
	// side.
	extremaSpan = 5

	recentVolumeSpan   = 5
	baselineVolumeSpan = 20
	lookbackSpan       = 20

	wedgeConfidence    = 78.0
	wedgeVolumeFade    = 0.8 // recent volume must sit below 0.8x baseline
	topConfidence      = 72.0
	topMatchTolerance  = 0.02 // last two highs within 2% of each other
	topPullbackRatio   = 0.95 // price below 95% of the rolling high
	flagConfidence     = 69.0
	flagBreakoutRatio  = 1.05 // price above 1.05x the 20-candle SMA
	flagRangeRatio     = 0.04 // consolidation range under 4% of price
	triangleConfidence = 75.0
	triangleSupportTol = 0.01 // retest lands within 1% of the rolling low
	triangleRetests    = 2
	triangleScanSpan   = 10
	triangleCeiling    = 0.98 // price below 98% of the rolling high
)

// tradeLevels holds entry/target/stop multipliers applied to current price.
type tradeLevels struct {
	entry  float64
	target float64
	stop   float64
}

var (
	wedgeLevels    = tradeLevels{entry: 0.998, target: 0.92, stop: 1.025}
	topLevels      = tradeLevels{entry: 0.997, target: 0.94, stop: 1.02}
	flagLevels     = tradeLevels{entry: 1.002, target: 1.08, stop: 0.97}
	triangleLevels = tradeLevels{entry: 0.996, target: 0.93, stop: 1.02}
)

// Detector scans candle series for chart formations.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a pattern detector. The logger is used only to trace
// which patterns fired for a symbol.
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{log: log}
}

// extremum is a local high or low: index into the series plus its price.
type extremum struct {
	index int
	price float64
}

// Detect returns all patterns found in the series, in detection order.
// Multiple patterns may coexist; no deduplication or ranking is applied.
// The symbol is used for logging only.
func (d *Detector) Detect(symbol, timeframe string, candles []models.Candle, currentPrice float64) []models.Pattern {
	if len(candles) < MinCandles || currentPrice <= 0 {
		return nil
	}

	highs := localHighs(candles)
	lows := localLows(candles)

	rollingHigh := highestHigh(candles, lookbackSpan)
	rollingLow := lowestLow(candles, lookbackSpan)
	sma := closeAverage(candles, lookbackSpan)
	recentVol := volumeAverage(candles, recentVolumeSpan)
	baselineVol := volumeAverage(candles, baselineVolumeSpan)

	var found []models.Pattern

	if d.risingWedge(highs, lows, recentVol, baselineVol) {
		found = append(found, pattern("Rising Wedge", timeframe, wedgeConfidence, models.SignalBearish,
			"Converging upward trendlines on fading volume; breakdown favored.",
			wedgeLevels, currentPrice))
	}

	if d.doubleTop(highs, currentPrice, rollingHigh) {
		found = append(found, pattern("Double Top", timeframe, topConfidence, models.SignalBearish,
			"Two matched highs with price rejected from the range top.",
			topLevels, currentPrice))
	}

	if d.bullishFlag(candles, currentPrice, sma, rollingHigh, rollingLow, recentVol, baselineVol) {
		found = append(found, pattern("Bullish Flag", timeframe, flagConfidence, models.SignalBullish,
			"Tight consolidation above the moving average on expanding volume.",
			flagLevels, currentPrice))
	}

	if d.descendingTriangle(candles, currentPrice, rollingHigh, rollingLow) {
		found = append(found, pattern("Descending Triangle", timeframe, triangleConfidence, models.SignalBearish,
			"Repeated support retests under a falling ceiling.",
			triangleLevels, currentPrice))
	}

	if len(found) > 0 {
		d.log.Debug().
			Str("symbol", symbol).
			Str("timeframe", timeframe).
			Int("patterns", len(found)).
			Msg("chart patterns detected")
	}

	return found
}

// risingWedge fires on two rising trendlines where the lows rise faster than
// the highs (converging upward) while volume fades.
func (d *Detector) risingWedge(highs, lows []extremum, recentVol, baselineVol float64) bool {
	if len(highs) < 2 || len(lows) < 2 {
		return false
	}

	highSlope := slope(highs[len(highs)-2], highs[len(highs)-1])
	lowSlope := slope(lows[len(lows)-2], lows[len(lows)-1])

	return highSlope > 0 &&
		lowSlope > 0 &&
		lowSlope > highSlope &&
		recentVol < wedgeVolumeFade*baselineVol
}

func (d *Detector) doubleTop(highs []extremum, currentPrice, rollingHigh float64) bool {
	if len(highs) < 2 {
		return false
	}

	first := highs[len(highs)-2].price
	second := highs[len(highs)-1].price
	if first == 0 {
		return false
	}

	return math.Abs(second-first)/first < topMatchTolerance &&
		currentPrice < topPullbackRatio*rollingHigh
}

func (d *Detector) bullishFlag(candles []models.Candle, currentPrice, sma, rollingHigh, rollingLow, recentVol, baselineVol float64) bool {
	return currentPrice > flagBreakoutRatio*sma &&
		rollingHigh-rollingLow < flagRangeRatio*currentPrice &&
		recentVol > baselineVol
}

func (d *Detector) descendingTriangle(candles []models.Candle, currentPrice, rollingHigh, rollingLow float64) bool {
	if rollingLow <= 0 {
		return false
	}

	retests := 0
	for _, c := range candles[len(candles)-triangleScanSpan:] {
		if math.Abs(c.Low-rollingLow)/rollingLow <= triangleSupportTol {
			retests++
		}
	}

	return retests >= triangleRetests && currentPrice < triangleCeiling*rollingHigh
}

func pattern(name, timeframe string, confidence float64, signal models.Signal, description string, levels tradeLevels, price float64) models.Pattern {
	return models.Pattern{
		Name:        name,
		Timeframe:   timeframe,
		Confidence:  confidence,
		Signal:      signal,
		Description: description,
		Entry:       price * levels.entry,
		Target:      price * levels.target,
		StopLoss:    price * levels.stop,
	}
}

// localHighs finds interior points whose high exceeds the highs extremaSpan
// bars to either side.
func localHighs(candles []models.Candle) []extremum {
	var out []extremum
	for i := extremaSpan; i < len(candles)-extremaSpan; i++ {
		if candles[i].High > candles[i-extremaSpan].High && candles[i].High > candles[i+extremaSpan].High {
			out = append(out, extremum{index: i, price: candles[i].High})
		}
	}
	return out
}

// localLows is the symmetric rule for lows.
func localLows(candles []models.Candle) []extremum {
	var out []extremum
	for i := extremaSpan; i < len(candles)-extremaSpan; i++ {
		if candles[i].Low < candles[i-extremaSpan].Low && candles[i].Low < candles[i+extremaSpan].Low {
			out = append(out, extremum{index: i, price: candles[i].Low})
		}
	}
	return out
}

func slope(a, b extremum) float64 {
	if b.index == a.index {
		return 0
	}
	return (b.price - a.price) / float64(b.index-a.index)
}

func highestHigh(candles []models.Candle, span int) float64 {
	window := tail(candles, span)
	h := window[0].High
	for _, c := range window[1:] {
		if c.High > h {
			h = c.High
		}
	}
	return h
}

func lowestLow(candles []models.Candle, span int) float64 {
	window := tail(candles, span)
	l := window[0].Low
	for _, c := range window[1:] {
		if c.Low < l {
			l = c.Low
		}
	}
	return l
}

func closeAverage(candles []models.Candle, span int) float64 {
	window := tail(candles, span)
	var total float64
	for _, c := range window {
		total += c.Close
	}
	return total / float64(len(window))
}

func volumeAverage(candles []models.Candle, span int) float64 {
	window := tail(candles, span)
	var total float64
	for _, c := range window {
		total += c.Volume
	}
	return total / float64(len(window))
}

func tail(candles []models.Candle, span int) []models.Candle {
	if len(candles) <= span {
		return candles
	}
	return candles[len(candles)-span:]
}
