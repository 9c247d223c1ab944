package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeGST(t *testing.T) {
	tests := []struct {
		name         string
		total        float64
		rate         float64
		enabled      bool
		wantSubtotal float64
		wantTax      float64
	}{
		{"inclusive 18 percent", 118, 18, true, 100, 18},
		{"round figure", 100, 18, true, 84.75, 15.25},
		{"fractional total", 999.99, 18, true, 847.45, 152.54},
		{"five percent", 105, 5, true, 100, 5},
		// Exact .005 tie: 2.01 * 100 / 200 = 1.005. Half away from zero
		// gives 1.01; ties-to-even would give 1.00.
		{"tie rounds away from zero", 2.01, 100, true, 1.00, 1.01},
		{"disabled", 118, 18, false, 118, 0},
		{"zero total", 0, 18, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal, tax := ComputeGST(tt.total, tt.rate, tt.enabled)
			assert.Equal(t, tt.wantSubtotal, subtotal)
			assert.Equal(t, tt.wantTax, tax)
		})
	}
}

func TestRoundMoneyTies(t *testing.T) {
	assert.Equal(t, 1.01, roundMoney(1.005))
	assert.Equal(t, 2.68, roundMoney(2.675))
	assert.Equal(t, -1.01, roundMoney(-1.005))
	assert.Equal(t, 1.0, roundMoney(1.0049))
}

func TestComputeGSTPartsSumToTotal(t *testing.T) {
	for _, total := range []float64{1, 49.5, 118, 999.99, 123456.78} {
		subtotal, tax := ComputeGST(total, 18, true)
		assert.InDelta(t, total, subtotal+tax, 0.001, "total %v", total)
	}
}
