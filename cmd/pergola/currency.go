package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var brlPrinter = message.NewPrinter(language.BrazilianPortuguese)

// formatBRL renders an amount in Brazilian real with locale-aware grouping.
func formatBRL(amount float64) string {
	return brlPrinter.Sprintf("R$ %v", number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}
