/*
calculator.go - Line item and invoice total calculation

PURPOSE:
  Pure functions producing the derived monetary values of a line item
  (net, VAT, gross) and the invoice-level sums. Called whenever the item
  set of an invoice changes; totals are never patched incrementally.

CALCULATION:
  net   = round2(quantity x unitPrice)
  vat   = round2(net x vatRate / 100)
  gross = round2(net + vat)

  VAT rate is a per-line input, not a fixed constant.

SEE ALSO:
  - money.go: Round2 and Sum
  - reconcile.go: Recomputes items through CalculateItem on update
*/
package invoice

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// CalculateItem computes the derived values for one item entry.
// Pure: returns a new LineItem, no side effects.
func CalculateItem(in ItemInput) LineItem {
	net := Round2(decimal.NewFromInt(in.Quantity).Mul(in.UnitPrice))
	vat := Round2(net.Mul(in.VatRate).Div(hundred))
	gross := Round2(net.Add(vat))

	return LineItem{
		ID:          in.ID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		VatRate:     in.VatRate,
		Net:         net,
		Vat:         vat,
		Gross:       gross,
	}
}

// CalculateItems computes derived values for a whole request item list,
// preserving order.
func CalculateItems(inputs []ItemInput) []LineItem {
	items := make([]LineItem, len(inputs))
	for i, in := range inputs {
		items[i] = CalculateItem(in)
	}
	return items
}

// SumTotals sums each derived field independently across items.
func SumTotals(items []LineItem) (net, vat, gross decimal.Decimal) {
	net, vat, gross = decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range items {
		net = net.Add(it.Net)
		vat = vat.Add(it.Vat)
		gross = gross.Add(it.Gross)
	}
	return net, vat, gross
}
