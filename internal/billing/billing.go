// Package billing computes invoice totals from line items. It is the
// single numeric contract for invoice creation: subtotal, tax, and total
// are computed here once and frozen on the invoice row afterwards.
package billing

import (
	"encoding/json"
	"math"
	"strconv"
)

// Amount is a quantity or rate supplied by a client. It unmarshals from
// a JSON number or a numeric string; anything unparsable or negative
// coerces to zero instead of failing the whole request.
type Amount float64

// UnmarshalJSON implements permissive numeric decoding for Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Maybe a quoted numeric string.
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*a = 0
			return nil
		}
		n = json.Number(s)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f < 0 {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// Float64 returns the amount as a plain float64.
func (a Amount) Float64() float64 { return float64(a) }

// LineInput is a single line item as submitted for invoice creation.
type LineInput struct {
	Description string `json:"description" binding:"required,max=500"`
	Quantity    Amount `json:"quantity"`
	Rate        Amount `json:"rate"`
}

// Amount returns quantity × rate rounded to two decimals.
func (l LineInput) Amount() float64 {
	return Round2(l.Quantity.Float64() * l.Rate.Float64())
}

// Totals holds the computed financial summary of an invoice.
type Totals struct {
	Subtotal       float64
	TaxAmount      float64
	DiscountAmount float64
	Total          float64
}

// ComputeTotals computes subtotal, tax, and total for a set of line
// items. taxRatePercent is a percentage (8 means 8%); discountAmount is
// an absolute amount subtracted after tax. A discount larger than
// subtotal plus tax yields a negative total, passed through unchanged.
func ComputeTotals(items []LineInput, taxRatePercent, discountAmount float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Quantity.Float64() * item.Rate.Float64()
	}
	subtotal = Round2(subtotal)

	if taxRatePercent < 0 {
		taxRatePercent = 0
	}
	taxAmount := Round2(subtotal * taxRatePercent / 100)

	if discountAmount < 0 {
		discountAmount = 0
	}
	discountAmount = Round2(discountAmount)

	return Totals{
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		Total:          Round2(subtotal + taxAmount - discountAmount),
	}
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
