/*
money.go - Fixed-point monetary arithmetic

PURPOSE:
  The two primitives every monetary value in this system goes through:
  rounding to invoice scale and drift-free summation. All amounts are
  decimal.Decimal; binary floats never touch money.

ROUNDING:
  Round2 rounds half away from zero (2.005 -> 2.01, -2.005 -> -2.01),
  the usual invoicing convention, not banker's rounding.

SUMMATION:
  Sum adds already-rounded per-line values and does not re-round the
  result. Rounding happens once per term; totals carry no drift beyond
  that.
*/
package invoice

import "github.com/shopspring/decimal"

// Round2 rounds to exactly 2 fractional digits, ties away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Sum adds values without re-rounding. Terms are expected to be rounded
// to 2 decimal places already.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
