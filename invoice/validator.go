/*
validator.go - Input-shape and business-rule checks

PURPOSE:
  Pure, side-effect-free validation called before any mutation. A
  validation failure aborts the operation before anything is persisted.

LIMITS:
  Quantity:   integer in (0, 9,999,999,999]
  Unit price: [0, 99,999,999.99], at most 2 fractional digits
  Totals:     at most 10 integer digits (persisted column guard)
  Dates:      issue date <= due date (equal is valid)
*/
package invoice

import "github.com/shopspring/decimal"

var (
	maxQuantity  int64 = 9_999_999_999
	maxUnitPrice       = decimal.RequireFromString("99999999.99")

	// Totals must stay below 10^10, i.e. at most 10 integer digits.
	maxTotal = decimal.New(1, 10)
)

// ValidateItems checks every item entry of a request. An invoice must have
// at least one item.
func ValidateItems(items []ItemInput) error {
	if len(items) == 0 {
		return &InvalidItemError{Index: 0, Reason: "invoice must have at least one item"}
	}

	for i, it := range items {
		if it.Quantity <= 0 {
			return &InvalidItemError{Index: i, Reason: "quantity must be positive"}
		}
		if it.Quantity > maxQuantity {
			return &InvalidItemError{Index: i, Reason: "quantity too large"}
		}
		if it.UnitPrice.IsNegative() {
			return &InvalidItemError{Index: i, Reason: "unit price cannot be negative"}
		}
		if it.UnitPrice.GreaterThan(maxUnitPrice) {
			return &InvalidItemError{Index: i, Reason: "unit price too large"}
		}
		if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
			return &InvalidItemError{Index: i, Reason: "unit price must have at most 2 decimal places"}
		}
	}
	return nil
}

// ValidateTotals guards against numeric overflow in the persisted columns.
func ValidateTotals(net, vat, gross decimal.Decimal) error {
	if net.Abs().GreaterThanOrEqual(maxTotal) {
		return &TotalExceededError{Field: "net"}
	}
	if vat.Abs().GreaterThanOrEqual(maxTotal) {
		return &TotalExceededError{Field: "vat"}
	}
	if gross.Abs().GreaterThanOrEqual(maxTotal) {
		return &TotalExceededError{Field: "gross"}
	}
	return nil
}

// ValidateDates checks the issue/due ordering. Equal dates are valid.
func ValidateDates(issueDate, dueDate Date) error {
	if issueDate.IsZero() || dueDate.IsZero() {
		return ErrInvalidDateRange
	}
	if issueDate.After(dueDate) {
		return ErrInvalidDateRange
	}
	return nil
}
