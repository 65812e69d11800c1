package workflow_test

import (
	"math"
	"testing"

	"pergola/internal/workflow"
)

func TestDerivePaymentSplit(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		seller    float64
		supplier  float64
		installer float64
		total     float64
	}{
		{name: "zero amount still pays installer", amount: 0, seller: 0, supplier: 0, installer: 150, total: 150},
		{name: "small deal", amount: 1000, seller: 50, supplier: 400, installer: 150, total: 600},
		{name: "typical deal", amount: 10000, seller: 500, supplier: 4000, installer: 150, total: 4650},
		{name: "negative amount clamps to zero", amount: -500, seller: 0, supplier: 0, installer: 150, total: 150},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			split := workflow.DerivePaymentSplit(tc.amount)
			check := func(label string, got, want float64) {
				if math.Abs(got-want) > 0.001 {
					t.Errorf("%s = %v, want %v", label, got, want)
				}
			}
			check("seller", split.Seller, tc.seller)
			check("supplier", split.Supplier, tc.supplier)
			check("installer", split.Installer, tc.installer)
			check("total", split.Total, tc.total)
		})
	}
}

func TestDerivePaymentSplitTotalIsShareSum(t *testing.T) {
	for _, amount := range []float64{0, 1, 999.99, 25000} {
		split := workflow.DerivePaymentSplit(amount)
		sum := split.Seller + split.Supplier + split.Installer
		if math.Abs(split.Total-sum) > 0.0001 {
			t.Errorf("amount %v: total %v != share sum %v", amount, split.Total, sum)
		}
	}
}
