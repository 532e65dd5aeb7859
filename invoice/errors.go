/*
errors.go - Centralized error types for the invoice core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify failures with errors.Is against the sentinels; the
  structured types carry detail and unwrap to the matching sentinel.

ERROR CATEGORIES:
  1. Validation errors - Bad item shape, bad dates, totals overflow
  2. Uniqueness errors - Invoice number / tax id conflicts
  3. Not-found errors  - Missing invoice, client, or item identity

USAGE:
  if errors.Is(err, invoice.ErrDuplicateInvoiceNumber) {
      // surface as a conflict, caller may retry with a different number
  }

SEE ALSO:
  - validator.go: Produces validation errors
  - service.go: Produces not-found and uniqueness errors
*/
package invoice

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidItem is returned when an item has a bad quantity or price.
	ErrInvalidItem = errors.New("invalid invoice item")

	// ErrInvalidDateRange is returned when the issue date is after the due date.
	ErrInvalidDateRange = errors.New("issue date cannot be after due date")

	// ErrTotalExceeded is returned when an invoice total exceeds the
	// 10 integer digits the persisted columns can hold.
	ErrTotalExceeded = errors.New("invoice total exceeds maximum allowed digits")

	// ErrDuplicateInvoiceNumber is returned when an invoice number is already
	// taken by a different invoice, including races lost to a concurrent
	// allocator.
	ErrDuplicateInvoiceNumber = errors.New("invoice number already exists")

	// ErrItemNotFound is returned when an update references an item identity
	// that does not belong to the invoice being updated.
	ErrItemNotFound = errors.New("item not found on invoice")

	// ErrInvoiceNotFound is returned when a referenced invoice doesn't exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrTaxIDExists is returned when creating a client whose tax id is
	// already registered.
	ErrTaxIDExists = errors.New("tax id already registered")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidItemError reports which item entry failed validation and why.
type InvalidItemError struct {
	Index  int
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// TotalExceededError names the overflowing total.
type TotalExceededError struct {
	Field string // "net", "vat", "gross"
}

func (e *TotalExceededError) Error() string {
	return fmt.Sprintf("%s total exceeds maximum allowed digits", e.Field)
}

func (e *TotalExceededError) Unwrap() error { return ErrTotalExceeded }

// DuplicateNumberError carries the conflicting invoice number.
type DuplicateNumberError struct {
	Number string
}

func (e *DuplicateNumberError) Error() string {
	return fmt.Sprintf("invoice number %q already exists", e.Number)
}

func (e *DuplicateNumberError) Unwrap() error { return ErrDuplicateInvoiceNumber }

// ItemNotFoundError carries the unknown item identity.
type ItemNotFoundError struct {
	ID ItemID
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %d not found on invoice", e.ID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrItemNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrItemNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateInvoiceNumber) ||
		errors.Is(err, ErrTaxIDExists)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrTotalExceeded)
}
