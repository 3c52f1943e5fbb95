package risk

import (
	"math"

	"github.com/rs/zerolog"

	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

const (
	// DefaultMinNotional is the exchange-wide minimum order value in USD,
	// used when an instrument does not carry its own.
	DefaultMinNotional = 10.0

	// maxLeverageBound caps both the requested leverage and the notional
	// envelope derived from usable margin.
	maxLeverageBound = 20.0

	highLeverageWarn   = 15.0
	wideStopRatio      = 0.10
	highUtilizationPct = 95.0
)

// SizeRequest carries everything the sizer needs to produce a position.
type SizeRequest struct {
	Symbol   string
	Entry    float64
	Stop     float64
	Leverage float64
	Account  models.AccountState
}

// Sizer converts a trade idea into an exchange-compliant position size
// bounded by the account's risk profile.
type Sizer struct {
	minNotional float64
	log         zerolog.Logger
}

func NewSizer(log zerolog.Logger) *Sizer {
	return &Sizer{minNotional: DefaultMinNotional, log: log.With().Str("component", "sizer").Logger()}
}

// Size computes the position for req against the given instrument. The
// returned result always carries the profile that was applied; warnings
// are advisory and never block the trade. Errors are fatal: the caller
// must not place an order when err is non-nil.
func (s *Sizer) Size(req SizeRequest, inst models.Instrument) (*models.PositionSizeResult, error) {
	if req.Entry <= 0 {
		return nil, apperrors.ErrPriceUnavailable
	}
	if req.Stop <= 0 || req.Stop == req.Entry {
		return nil, apperrors.ErrInvalidStop
	}

	leverage := clampLeverage(req.Leverage, inst.MaxLeverage)

	available := req.Account.AvailableMargin()
	if available <= 0 {
		return nil, apperrors.ErrNoMarginAvailable
	}

	equity := req.Account.AccountValue
	profile := ProfileFor(equity)
	usable := available * profile.UsagePct / 100

	// The envelope is the largest notional the usable margin could carry
	// at the exchange leverage ceiling, independent of the leverage the
	// caller actually requested.
	size := usable * maxLeverageBound / req.Entry

	stopDistance := math.Abs(req.Entry - req.Stop)

	// Micro accounts skip the per-trade risk cap: capping them would push
	// every order under the exchange minimum.
	if equity >= MicroEquityThreshold {
		riskBudget := equity * profile.RiskPct / 100
		if maxRiskSize := riskBudget / stopDistance; maxRiskSize < size {
			size = maxRiskSize
		}
	}

	var warnings []string

	margin := size * req.Entry / leverage
	if margin > available {
		size = available * leverage / req.Entry
		warnings = append(warnings, "size reduced to fit available margin")
	}

	size = roundToLot(size, inst.LotSize)
	entry := roundToTick(req.Entry, inst.TickSize)

	minNotional := s.minNotional
	if inst.MinOrderValue > 0 {
		minNotional = inst.MinOrderValue
	}

	notional := size * entry
	if notional < minNotional {
		return nil, apperrors.NewSizingError(req.Symbol, minNotional, notional)
	}

	margin = notional / leverage
	riskAmount := size * stopDistance

	if utilization := margin / available * 100; utilization > highUtilizationPct {
		warnings = append(warnings, "margin utilization above 95%")
	}
	if equity < MicroEquityThreshold {
		warnings = append(warnings, "micro account: sizing targets the exchange minimum order value")
	}
	if stopDistance/entry > wideStopRatio {
		warnings = append(warnings, "stop is more than 10% away from entry")
	}
	if leverage > highLeverageWarn {
		warnings = append(warnings, "leverage above 15x")
	}

	s.log.Debug().
		Str("symbol", req.Symbol).
		Float64("size", size).
		Float64("notional", notional).
		Float64("margin", margin).
		Float64("risk", riskAmount).
		Str("tier", profile.Tier).
		Msg("position sized")

	return &models.PositionSizeResult{
		Symbol:         req.Symbol,
		PositionSize:   size,
		EntryPrice:     entry,
		NotionalValue:  notional,
		MarginRequired: margin,
		RiskAmount:     riskAmount,
		Leverage:       leverage,
		Profile:        profile,
		Warnings:       warnings,
	}, nil
}

func clampLeverage(leverage, instrumentMax float64) float64 {
	if leverage < 1 {
		leverage = 1
	}
	max := maxLeverageBound
	if instrumentMax > 0 && instrumentMax < max {
		max = instrumentMax
	}
	if leverage > max {
		leverage = max
	}
	return leverage
}

// roundToLot truncates size down to a whole number of lots so the order
// never exceeds the computed envelope.
func roundToLot(size, lot float64) float64 {
	if lot <= 0 {
		return size
	}
	return math.Floor(size/lot+1e-9) * lot
}

// roundToTick snaps price to the nearest tick.
func roundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Round(price/tick) * tick
}
