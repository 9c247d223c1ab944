package service

import "github.com/shopspring/decimal"

// ComputeGST extracts an inclusive tax from a tax-inclusive total:
//
//	tax      = total * rate / (100 + rate)
//	subtotal = total - tax
//
// Amounts are rounded to 2 decimal places, half away from zero. With GST
// disabled (or a zero total) the tax is zero and the subtotal is the total.
func ComputeGST(totalAmount, gstRate float64, gstEnabled bool) (subtotal, tax float64) {
	if !gstEnabled || totalAmount <= 0 {
		return roundMoney(totalAmount), 0
	}

	total := decimal.NewFromFloat(totalAmount)
	rate := decimal.NewFromFloat(gstRate)

	taxDec := total.Mul(rate).Div(rate.Add(decimal.NewFromInt(100))).Round(2)
	subDec := total.Sub(taxDec).Round(2)

	tax, _ = taxDec.Float64()
	subtotal, _ = subDec.Float64()
	return subtotal, tax
}

func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
