package scoring

import (
	"testing"

	"github.com/chigozzdevv/hyperliquid-trading-agent/internal/models"
)

func TestClassifyCascade(t *testing.T) {
	tests := []struct {
		name      string
		rsi       float64
		change24h float64
		sentiment int
		winRate   float64
		wantType  string
		wantDir   models.Direction
		wantConf  float64
	}{
		{
			name:      "premium contrarian fade",
			rsi:       72,
			change24h: 3,
			sentiment: 65,
			winRate:   74,
			wantType:  "premium_contrarian",
			wantDir:   models.DirectionShort,
			wantConf:  85,
		},
		{
			name:      "oversold reversal buy",
			rsi:       26,
			change24h: -4,
			sentiment: 22,
			winRate:   68,
			wantType:  "oversold_reversal",
			wantDir:   models.DirectionLong,
			wantConf:  80,
		},
		{
			name:      "momentum continuation up",
			rsi:       62,
			change24h: 8,
			sentiment: 55,
			winRate:   63,
			wantType:  "momentum_continuation",
			wantDir:   models.DirectionLong,
			wantConf:  75,
		},
		{
			name:      "momentum continuation down",
			rsi:       40,
			change24h: -9,
			sentiment: 45,
			winRate:   63,
			wantType:  "momentum_continuation",
			wantDir:   models.DirectionShort,
			wantConf:  75,
		},
		{
			name:      "trend follow long above midline",
			rsi:       58,
			change24h: 2,
			sentiment: 50,
			winRate:   57,
			wantType:  "trend_follow",
			wantDir:   models.DirectionLong,
			wantConf:  65,
		},
		{
			name:      "trend follow short below midline",
			rsi:       42,
			change24h: -2,
			sentiment: 50,
			winRate:   57,
			wantType:  "trend_follow",
			wantDir:   models.DirectionShort,
			wantConf:  65,
		},
		{
			name:      "no edge",
			rsi:       50,
			change24h: 1,
			sentiment: 50,
			winRate:   48,
			wantType:  "no_edge",
			wantDir:   models.DirectionNeutral,
			wantConf:  40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.rsi, tt.change24h, tt.sentiment, tt.winRate)
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Direction != tt.wantDir {
				t.Errorf("Direction = %q, want %q", got.Direction, tt.wantDir)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
			if got.Reasoning == "" {
				t.Error("Reasoning is empty")
			}
		})
	}
}

func TestClassifyEarlierRuleWins(t *testing.T) {
	// Qualifies for premium_contrarian and momentum_continuation at once;
	// the premium rule is checked first.
	got := Classify(75, 9, 70, 80)
	if got.Type != "premium_contrarian" {
		t.Errorf("Type = %q, want premium_contrarian", got.Type)
	}
}

func TestClassifyThresholdsAreStrict(t *testing.T) {
	// Exactly-at-threshold inputs fall through to the next rule.
	got := Classify(70, 0, 60, 70)
	if got.Type == "premium_contrarian" {
		t.Error("boundary values should not satisfy the premium rule")
	}

	got = Classify(30, 0, 40, 65)
	if got.Type == "oversold_reversal" {
		t.Error("boundary values should not satisfy the reversal rule")
	}
}
