// Package models provides domain models for the trading agent.
package models

import (
	"time"
)

// Interval represents a candle interval supported by the exchange.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// Signal represents the expected direction of a detected pattern.
type Signal string

const (
	SignalBullish Signal = "bullish"
	SignalBearish Signal = "bearish"
	SignalNeutral Signal = "neutral"
)

// Direction represents the side of a trade setup.
type Direction string

const (
	DirectionLong    Direction = "LONG"
	DirectionShort   Direction = "SHORT"
	DirectionNeutral Direction = "NEUTRAL"
)

// Candle represents one OHLCV sample for a symbol at a fixed interval.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Symbol    string
	Interval  Interval
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Trades    int
}

// MarketMetrics is a derived snapshot for one symbol at one evaluation instant.
// It is computed fresh on every request and never cached.
type MarketMetrics struct {
	Price         float64
	Change24h     float64 // percent
	Volume24h     float64
	RSI           float64 // 0-100
	WinRate       float64 // 0-100, percent of positive-return intervals
	SharpeRatio   float64
	MaxDrawdown   float64 // percent, >= 0
	AvgVolatility float64 // percent, >= 0
}

// Pattern represents one detected chart formation.
// Entry, Target and StopLoss are zero when the pattern carries no trade levels.
type Pattern struct {
	Name        string
	Timeframe   string
	Confidence  float64 // 0-100, fixed per pattern type
	Signal      Signal
	Description string
	Entry       float64
	Target      float64
	StopLoss    float64
}

// TradeSetup is the setup classifier output.
type TradeSetup struct {
	Type       string
	Direction  Direction
	Reasoning  string
	Confidence float64 // 0-100
}

// Opportunity is one ranked trading candidate produced by a scan.
// Opportunities live for the duration of a single response and are never stored
// by the core.
type Opportunity struct {
	Symbol   string
	Metrics  MarketMetrics
	Score    float64 // 0-100
	Setup    TradeSetup
	Patterns []Pattern
	Signals  []string
}

// RiskProfile selects how much margin may be deployed and what fraction of
// equity may be put at risk for a single trade. It is a function of account
// equity only.
type RiskProfile struct {
	Tier     string
	UsagePct float64 // percent of available margin that may be deployed
	RiskPct  float64 // percent of equity that may be lost on one trade
}

// PositionSizeResult is the output of position sizing.
type PositionSizeResult struct {
	Symbol         string
	PositionSize   float64 // base-asset units, lot-rounded
	EntryPrice     float64 // tick-rounded
	NotionalValue  float64
	MarginRequired float64
	RiskAmount     float64
	Leverage       float64
	Profile        RiskProfile
	Warnings       []string
}

// Instrument holds the exchange's live trading specification for a symbol.
type Instrument struct {
	Symbol        string
	LotSize       float64 // minimum quantity increment
	TickSize      float64 // minimum price increment
	MinOrderValue float64 // minimum notional in quote currency
	MaxLeverage   float64
}

// AccountState is a snapshot of account equity and margin usage.
type AccountState struct {
	AccountValue    float64
	TotalMarginUsed float64
}

// AvailableMargin returns the margin currently free for new positions.
func (a AccountState) AvailableMargin() float64 {
	return a.AccountValue - a.TotalMarginUsed
}

// Sentiment is an external 0-100 market-mood reading (Fear & Greed style).
type Sentiment struct {
	Value          int
	Classification string
	Timestamp      time.Time
}
