// Package ledger holds the pure quantity and amount arithmetic shared by the
// distribution workflow. Functions never mutate their inputs; all record
// mutation happens in the distribution service.
package ledger

import "math"

// Line is the minimal quantity/amount view of an order or sale item.
type Line struct {
	Quantity      float64
	PricePerLiter float64
	TotalAmount   float64
}

// Round2 rounds to two decimals, the smallest currency denomination used.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ItemTotal computes the amount of a line: quantity times price per liter.
func ItemTotal(quantity, pricePerLiter float64) float64 {
	return Round2(quantity * pricePerLiter)
}

// SumQuantity totals liters across lines.
func SumQuantity(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Quantity
	}
	return sum
}

// SumAmount totals currency amounts across lines.
func SumAmount(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.TotalAmount
	}
	return Round2(sum)
}

// Variance is the signed difference between what arrived and what was asked
// for. Positive means over-delivery, negative a shortage.
func Variance(actual, requested float64) float64 {
	return actual - requested
}
