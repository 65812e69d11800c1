package workflow

// Payment split parameters. The installer receives a flat fee; seller and
// supplier shares are proportional to the delivery's final amount.
const (
	sellerRate   = 0.05
	supplierRate = 0.40
	installerFee = 150.0
)

// PaymentSplit is the three-way division of a completed delivery's amount.
type PaymentSplit struct {
	Seller    float64
	Supplier  float64
	Installer float64
	Total     float64
}

// DerivePaymentSplit computes the payment instruction amounts for a final
// amount. Total is the sum of the three shares, not the input amount: the
// split intentionally covers 45% of the deal plus the installer fee.
func DerivePaymentSplit(amount float64) PaymentSplit {
	if amount < 0 {
		amount = 0
	}
	split := PaymentSplit{
		Seller:    amount * sellerRate,
		Supplier:  amount * supplierRate,
		Installer: installerFee,
	}
	split.Total = split.Seller + split.Supplier + split.Installer
	return split
}
