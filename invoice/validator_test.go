package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RoZ0o0/demo/invoice"
)

// =============================================================================
// ITEM VALIDATION
// =============================================================================

func TestValidateItems_Valid(t *testing.T) {
	err := invoice.ValidateItems([]invoice.ItemInput{
		item(1, "0.00", "23"),            // zero price is fine
		item(9_999_999_999, "0.01", "0"), // max quantity
		item(3, "99999999.99", "23"),     // max unit price
	})
	assert.NoError(t, err)
}

func TestValidateItems_Empty(t *testing.T) {
	err := invoice.ValidateItems(nil)

	assert.ErrorIs(t, err, invoice.ErrInvalidItem)
	assert.Contains(t, err.Error(), "at least one item")
}

func TestValidateItems_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		items  []invoice.ItemInput
		reason string
	}{
		{"zero quantity", []invoice.ItemInput{item(0, "10.00", "23")}, "quantity must be positive"},
		{"negative quantity", []invoice.ItemInput{item(-1, "10.00", "23")}, "quantity must be positive"},
		{"quantity over limit", []invoice.ItemInput{item(10_000_000_000, "10.00", "23")}, "quantity too large"},
		{"negative price", []invoice.ItemInput{item(1, "-0.01", "23")}, "unit price cannot be negative"},
		{"price over limit", []invoice.ItemInput{item(1, "100000000.00", "23")}, "unit price too large"},
		{"price with 3 decimals", []invoice.ItemInput{item(1, "9.999", "23")}, "2 decimal places"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := invoice.ValidateItems(tt.items)

			assert.ErrorIs(t, err, invoice.ErrInvalidItem)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestValidateItems_ReportsFailingIndex(t *testing.T) {
	// GIVEN: A valid first item and a broken second one
	// WHEN: Validating
	// THEN: The error names index 1

	err := invoice.ValidateItems([]invoice.ItemInput{
		item(1, "10.00", "23"),
		item(0, "10.00", "23"),
	})

	var itemErr *invoice.InvalidItemError
	assert.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
}

// =============================================================================
// TOTAL LIMITS
// =============================================================================

func TestValidateTotals_TenDigitsIsLargestAllowed(t *testing.T) {
	// 9,999,999,999.99 has 10 integer digits and fits; 10^10 does not.

	ok := dec("9999999999.99")
	assert.NoError(t, invoice.ValidateTotals(ok, ok, ok))

	over := dec("10000000000")
	err := invoice.ValidateTotals(over, dec("0"), dec("0"))
	assert.ErrorIs(t, err, invoice.ErrTotalExceeded)
}

func TestValidateTotals_NamesTheField(t *testing.T) {
	over := dec("10000000000")

	err := invoice.ValidateTotals(dec("1"), over, dec("1"))

	var totErr *invoice.TotalExceededError
	assert.ErrorAs(t, err, &totErr)
	assert.Equal(t, "vat", totErr.Field)
}

// =============================================================================
// DATE VALIDATION
// =============================================================================

func TestValidateDates(t *testing.T) {
	oct1 := invoice.NewDate(2025, time.October, 1)
	oct15 := invoice.NewDate(2025, time.October, 15)

	// issue before due
	assert.NoError(t, invoice.ValidateDates(oct1, oct15))

	// same day is valid
	assert.NoError(t, invoice.ValidateDates(oct1, oct1))

	// issue after due
	assert.ErrorIs(t, invoice.ValidateDates(oct15, oct1), invoice.ErrInvalidDateRange)

	// missing dates
	assert.ErrorIs(t, invoice.ValidateDates(invoice.Date{}, oct15), invoice.ErrInvalidDateRange)
	assert.ErrorIs(t, invoice.ValidateDates(oct1, invoice.Date{}), invoice.ErrInvalidDateRange)
}
