package drawdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnuityPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
		want      float64
		tol       float64
	}{
		{"zero rate splits evenly", 120000, 0, 12, 10000, 1e-9},
		{"zero years is zero payment", 50000, 0.03, 0, 0, 1e-9},
		{"positive rate closed form", 100000, 0.04, 15, 8994.17, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := annuityPayment(tt.principal, tt.rate, tt.years)
			assert.InDelta(t, tt.want, got, tt.tol)
		})
	}
}

func TestAnnuityPaymentAmortizesToZero(t *testing.T) {
	principal, rate, years := 200000.0, 0.035, 20
	payment := annuityPayment(principal, rate, years)

	balance := principal
	for y := 0; y < years; y++ {
		interest := balance * rate
		principalComp := payment - interest
		balance -= principalComp
	}
	assert.InDelta(t, 0, balance, 1.0)
}
