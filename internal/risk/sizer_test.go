package risk

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/analysis/patterns"
	apperrors "github.com/chigozzdevv/hyperliquid-trading-agent/internal/errors"
	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

func newTestSizer() *Sizer {
	return NewSizer(zerolog.Nop())
}

func btcInstrument() models.Instrument {
	return models.Instrument{
		Symbol:        "BTC",
		LotSize:       0.001,
		TickSize:      0.1,
		MinOrderValue: 10,
		MaxLeverage:   50,
	}
}

func toyInstrument() models.Instrument {
	return models.Instrument{
		Symbol:        "TOY",
		LotSize:       0.01,
		TickSize:      0.01,
		MinOrderValue: 10,
		MaxLeverage:   20,
	}
}

func TestSizeConservativeAccountRiskCapped(t *testing.T) {
	s := newTestSizer()

	res, err := s.Size(SizeRequest{
		Symbol:   "BTC",
		Entry:    50000,
		Stop:     51000,
		Leverage: 3,
		Account:  models.AccountState{AccountValue: 1000},
	}, btcInstrument())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}

	if res.PositionSize != 0.02 {
		t.Errorf("PositionSize = %v, want 0.02", res.PositionSize)
	}
	if res.RiskAmount != 20 {
		t.Errorf("RiskAmount = %v, want 20", res.RiskAmount)
	}
	if res.NotionalValue != 1000 {
		t.Errorf("NotionalValue = %v, want 1000", res.NotionalValue)
	}
	if math.Abs(res.MarginRequired-1000.0/3) > 1e-9 {
		t.Errorf("MarginRequired = %v, want %v", res.MarginRequired, 1000.0/3)
	}
	if res.Profile.Tier != "conservative" {
		t.Errorf("Tier = %q, want conservative", res.Profile.Tier)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestSizeMicroAccountClampedToMargin(t *testing.T) {
	s := newTestSizer()

	res, err := s.Size(SizeRequest{
		Symbol:   "TOY",
		Entry:    100,
		Stop:     95,
		Leverage: 3,
		Account:  models.AccountState{AccountValue: 5},
	}, toyInstrument())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}

	if res.PositionSize != 0.15 {
		t.Errorf("PositionSize = %v, want 0.15", res.PositionSize)
	}
	if res.NotionalValue != 15 {
		t.Errorf("NotionalValue = %v, want 15", res.NotionalValue)
	}
	if res.Profile.Tier != "micro" {
		t.Errorf("Tier = %q, want micro", res.Profile.Tier)
	}

	wantWarnings := []string{
		"size reduced to fit available margin",
		"margin utilization above 95%",
		"micro account: sizing targets the exchange minimum order value",
	}
	if len(res.Warnings) != len(wantWarnings) {
		t.Fatalf("Warnings = %v, want %v", res.Warnings, wantWarnings)
	}
	for i, w := range wantWarnings {
		if res.Warnings[i] != w {
			t.Errorf("Warnings[%d] = %q, want %q", i, res.Warnings[i], w)
		}
	}
}

func TestSizeFatalErrors(t *testing.T) {
	s := newTestSizer()
	inst := btcInstrument()
	account := models.AccountState{AccountValue: 1000}

	tests := []struct {
		name string
		req  SizeRequest
		want error
	}{
		{
			name: "zero entry",
			req:  SizeRequest{Symbol: "BTC", Entry: 0, Stop: 100, Leverage: 3, Account: account},
			want: apperrors.ErrPriceUnavailable,
		},
		{
			name: "stop equals entry",
			req:  SizeRequest{Symbol: "BTC", Entry: 100, Stop: 100, Leverage: 3, Account: account},
			want: apperrors.ErrInvalidStop,
		},
		{
			name: "zero stop",
			req:  SizeRequest{Symbol: "BTC", Entry: 100, Stop: 0, Leverage: 3, Account: account},
			want: apperrors.ErrInvalidStop,
		},
		{
			name: "no free margin",
			req: SizeRequest{Symbol: "BTC", Entry: 100, Stop: 95, Leverage: 3,
				Account: models.AccountState{AccountValue: 100, TotalMarginUsed: 100}},
			want: apperrors.ErrNoMarginAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Size(tt.req, inst)
			if !errors.Is(err, tt.want) {
				t.Errorf("Size error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSizeBelowMinimumNotional(t *testing.T) {
	s := newTestSizer()

	_, err := s.Size(SizeRequest{
		Symbol:   "TOY",
		Entry:    100,
		Stop:     95,
		Leverage: 3,
		Account:  models.AccountState{AccountValue: 0.4},
	}, toyInstrument())

	var sizingErr *apperrors.SizingError
	if !errors.As(err, &sizingErr) {
		t.Fatalf("Size error = %v, want *SizingError", err)
	}
	if sizingErr.RequiredNotional != 10 {
		t.Errorf("RequiredNotional = %v, want 10", sizingErr.RequiredNotional)
	}
	if sizingErr.ActualNotional >= 10 {
		t.Errorf("ActualNotional = %v, want below 10", sizingErr.ActualNotional)
	}
}

func TestSizeWideStopAndHighLeverageWarnings(t *testing.T) {
	s := newTestSizer()

	res, err := s.Size(SizeRequest{
		Symbol:   "BTC",
		Entry:    50000,
		Stop:     40000,
		Leverage: 18,
		Account:  models.AccountState{AccountValue: 100000},
	}, btcInstrument())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}

	if !containsWarning(res.Warnings, "stop is more than 10% away from entry") {
		t.Errorf("missing wide-stop warning, got %v", res.Warnings)
	}
	if !containsWarning(res.Warnings, "leverage above 15x") {
		t.Errorf("missing high-leverage warning, got %v", res.Warnings)
	}
	if res.Leverage != 18 {
		t.Errorf("Leverage = %v, want 18", res.Leverage)
	}
}

func TestSizeLeverageClamped(t *testing.T) {
	s := newTestSizer()
	account := models.AccountState{AccountValue: 1000}

	res, err := s.Size(SizeRequest{Symbol: "BTC", Entry: 50000, Stop: 51000, Leverage: 100, Account: account}, btcInstrument())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if res.Leverage != 20 {
		t.Errorf("Leverage = %v, want global cap 20", res.Leverage)
	}

	lowMax := btcInstrument()
	lowMax.MaxLeverage = 5
	res, err = s.Size(SizeRequest{Symbol: "BTC", Entry: 50000, Stop: 51000, Leverage: 100, Account: account}, lowMax)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if res.Leverage != 5 {
		t.Errorf("Leverage = %v, want instrument cap 5", res.Leverage)
	}

	res, err = s.Size(SizeRequest{Symbol: "BTC", Entry: 50000, Stop: 51000, Leverage: 0, Account: account}, btcInstrument())
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if res.Leverage != 1 {
		t.Errorf("Leverage = %v, want floor 1", res.Leverage)
	}
}

func TestSizeRoundsToInstrumentSteps(t *testing.T) {
	s := newTestSizer()

	inst := models.Instrument{Symbol: "ETH", LotSize: 0.01, TickSize: 0.5, MinOrderValue: 10, MaxLeverage: 25}
	res, err := s.Size(SizeRequest{
		Symbol:   "ETH",
		Entry:    3000.37,
		Stop:     2950,
		Leverage: 5,
		Account:  models.AccountState{AccountValue: 20000},
	}, inst)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}

	if res.EntryPrice != 3000.5 {
		t.Errorf("EntryPrice = %v, want 3000.5", res.EntryPrice)
	}
	if rem := math.Mod(res.PositionSize+1e-9, inst.LotSize); rem > 1e-6 {
		t.Errorf("PositionSize %v is not a multiple of lot %v", res.PositionSize, inst.LotSize)
	}
}

// wedgeCandles builds a series whose last 60 bars carry converging upward
// trendlines on fading volume, so the detector reports a rising wedge.
func wedgeCandles() []models.Candle {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, 60)
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
	candles[30].High = 104
	candles[44].High = 107
	candles[46].Low = 92
	candles[52].Low = 99.4
	for i := 55; i < 60; i++ {
		candles[i].Volume = 400
	}
	return candles
}

func TestSizeAcceptsDetectedPatternLevels(t *testing.T) {
	detector := patterns.NewDetector(zerolog.Nop())
	detected := detector.Detect("TOY", "1h", wedgeCandles(), 100)
	if len(detected) != 1 || detected[0].Name != "Rising Wedge" {
		t.Fatalf("Detect = %v, want exactly one Rising Wedge", detected)
	}
	p := detected[0]

	inst := models.Instrument{Symbol: "TOY", LotSize: 0.1, TickSize: 0.1, MinOrderValue: 10, MaxLeverage: 20}
	s := newTestSizer()

	res, err := s.Size(SizeRequest{
		Symbol:   "TOY",
		Entry:    p.Entry,
		Stop:     p.StopLoss,
		Leverage: 3,
		Account:  models.AccountState{AccountValue: 999},
	}, inst)
	if err != nil {
		t.Fatalf("Size on pattern levels: %v", err)
	}

	if math.Abs(res.PositionSize-7.4) > 1e-9 {
		t.Errorf("PositionSize = %v, want 7.4", res.PositionSize)
	}
	if math.Abs(res.EntryPrice-99.8) > 1e-9 {
		t.Errorf("EntryPrice = %v, want 99.8", res.EntryPrice)
	}
	if lots := res.PositionSize / inst.LotSize; math.Abs(lots-math.Round(lots)) > 1e-6 {
		t.Errorf("PositionSize %v is not a whole number of %v lots", res.PositionSize, inst.LotSize)
	}
	if ticks := res.EntryPrice / inst.TickSize; math.Abs(ticks-math.Round(ticks)) > 1e-6 {
		t.Errorf("EntryPrice %v is not on the %v tick grid", res.EntryPrice, inst.TickSize)
	}
	if res.NotionalValue < inst.MinOrderValue {
		t.Errorf("NotionalValue = %v, want >= %v", res.NotionalValue, inst.MinOrderValue)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Warnings)
	}
}

func TestRoundingIdempotent(t *testing.T) {
	lotCases := []struct {
		size float64
		lot  float64
	}{
		{7.43, 0.1},
		{0.0234, 0.001},
		{2.7, 0.5},
		{15.0001, 0.01},
		{3.3, 0},
	}
	for _, tt := range lotCases {
		once := roundToLot(tt.size, tt.lot)
		if twice := roundToLot(once, tt.lot); twice != once {
			t.Errorf("roundToLot(%v, %v): second pass %v != first pass %v", tt.size, tt.lot, twice, once)
		}
	}

	tickCases := []struct {
		price float64
		tick  float64
	}{
		{99.83, 0.1},
		{3000.37, 0.5},
		{50000.04, 0.1},
		{0.123456, 0.0001},
		{42.42, 0},
	}
	for _, tt := range tickCases {
		once := roundToTick(tt.price, tt.tick)
		if twice := roundToTick(once, tt.tick); twice != once {
			t.Errorf("roundToTick(%v, %v): second pass %v != first pass %v", tt.price, tt.tick, twice, once)
		}
	}
}

func containsWarning(warnings []string, want string) bool {
	for _, w := range warnings {
		if w == want {
			return true
		}
	}
	return false
}
