package invoice_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/RoZ0o0/demo/invoice"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(qty int64, unitPrice, vatRate string) invoice.ItemInput {
	return invoice.ItemInput{
		Description: "test item",
		Quantity:    qty,
		UnitPrice:   dec(unitPrice),
		VatRate:     dec(vatRate),
	}
}

// =============================================================================
// LINE ITEM CALCULATION
// =============================================================================

func TestCalculateItem_Basic(t *testing.T) {
	// GIVEN: 2 units at 100.00, 23% VAT
	// WHEN: Calculating the line
	// THEN: net 200.00, vat 46.00, gross 246.00

	li := invoice.CalculateItem(item(2, "100.00", "23"))

	assert.True(t, li.Net.Equal(dec("200.00")), "net = %s", li.Net)
	assert.True(t, li.Vat.Equal(dec("46.00")), "vat = %s", li.Vat)
	assert.True(t, li.Gross.Equal(dec("246.00")), "gross = %s", li.Gross)
}

func TestCalculateItem_VatRoundsHalfUp(t *testing.T) {
	// GIVEN: 1 unit at 0.25, 50% VAT -> raw vat 0.125
	// WHEN: Calculating
	// THEN: the exact half rounds away from zero to 0.13

	li := invoice.CalculateItem(item(1, "0.25", "50"))

	assert.True(t, li.Net.Equal(dec("0.25")), "net = %s", li.Net)
	assert.True(t, li.Vat.Equal(dec("0.13")), "vat = %s", li.Vat)
	assert.True(t, li.Gross.Equal(dec("0.38")), "gross = %s", li.Gross)
}

func TestCalculateItem_NoFloatDrift(t *testing.T) {
	// GIVEN: 3 units at 33.33, 23% VAT
	// WHEN: Calculating with decimals (raw vat 22.9977)
	// THEN: net 99.99, vat 23.00, gross 122.99 - no binary-float artifacts

	li := invoice.CalculateItem(item(3, "33.33", "23"))

	assert.True(t, li.Net.Equal(dec("99.99")), "net = %s", li.Net)
	assert.True(t, li.Vat.Equal(dec("23.00")), "vat = %s", li.Vat)
	assert.True(t, li.Gross.Equal(dec("122.99")), "gross = %s", li.Gross)
}

func TestCalculateItem_ZeroVatRate(t *testing.T) {
	li := invoice.CalculateItem(item(4, "12.50", "0"))

	assert.True(t, li.Net.Equal(dec("50.00")))
	assert.True(t, li.Vat.IsZero(), "vat = %s", li.Vat)
	assert.True(t, li.Gross.Equal(dec("50.00")))
}

func TestCalculateItem_PreservesInputs(t *testing.T) {
	// Derived values are added; the entered quantity/price/rate survive.

	in := item(7, "19.99", "8")
	li := invoice.CalculateItem(in)

	assert.Equal(t, int64(7), li.Quantity)
	assert.True(t, li.UnitPrice.Equal(dec("19.99")))
	assert.True(t, li.VatRate.Equal(dec("8")))
	assert.Equal(t, "test item", li.Description)
}

// =============================================================================
// TOTALS
// =============================================================================

func TestSumTotals_SumsRoundedLineValues(t *testing.T) {
	// GIVEN: Two lines whose individually rounded values are known
	// WHEN: Summing totals
	// THEN: Totals are the sum of rounded line values, not a re-rounded
	//       grand computation

	items := invoice.CalculateItems([]invoice.ItemInput{
		item(1, "0.25", "50"), // net 0.25, vat 0.13
		item(1, "0.25", "50"), // net 0.25, vat 0.13
	})

	net, vat, gross := invoice.SumTotals(items)

	assert.True(t, net.Equal(dec("0.50")), "net = %s", net)
	// Per-line rounding first: 0.13 + 0.13 = 0.26 (a single rounding of
	// 0.25 total raw vat would give 0.25).
	assert.True(t, vat.Equal(dec("0.26")), "vat = %s", vat)
	assert.True(t, gross.Equal(dec("0.76")), "gross = %s", gross)
}

func TestSumTotals_Empty(t *testing.T) {
	net, vat, gross := invoice.SumTotals(nil)

	assert.True(t, net.IsZero())
	assert.True(t, vat.IsZero())
	assert.True(t, gross.IsZero())
}
