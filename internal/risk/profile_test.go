package risk

import "testing"

func TestProfileForTiers(t *testing.T) {
	tests := []struct {
		equity   float64
		tier     string
		usagePct float64
		riskPct  float64
	}{
		{0, "micro", 85, 85},
		{9.99, "micro", 85, 85},
		{10, "small", 50, 50},
		{49.99, "small", 50, 50},
		{50, "standard", 20, 20},
		{499.99, "standard", 20, 20},
		{500, "conservative", 5, 2},
		{1_000_000, "conservative", 5, 2},
	}

	for _, tt := range tests {
		p := ProfileFor(tt.equity)
		if p.Tier != tt.tier {
			t.Errorf("ProfileFor(%v).Tier = %q, want %q", tt.equity, p.Tier, tt.tier)
		}
		if p.UsagePct != tt.usagePct || p.RiskPct != tt.riskPct {
			t.Errorf("ProfileFor(%v) = {%v, %v}, want {%v, %v}",
				tt.equity, p.UsagePct, p.RiskPct, tt.usagePct, tt.riskPct)
		}
	}
}
