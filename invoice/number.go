/*
number.go - Invoice number generation and uniqueness

PURPOSE:
  Invoice numbers follow the literal format FV/YYYY/MM/DD/NNNNN where the
  date part is the invoice's issue date and NNNNN is a 5-digit zero-padded
  suffix, strictly increasing within that date's prefix.

CONCURRENCY:
  Two concurrent creates on the same day must never receive the same
  suffix. The Allocator serializes the read-max / format / persist
  sequence per prefix with a keyed mutex; different prefixes never
  contend with each other. The lock is held by the caller across the
  whole store transaction, so a rolled-back allocation is never
  observably consumed.

  The database UNIQUE constraint on invoice_number is the backstop: if a
  concurrent allocator (e.g. another process) wins the race anyway, the
  save fails with ErrDuplicateInvoiceNumber and the lifecycle retries
  generation exactly once.

SEE ALSO:
  - service.go: Holds the prefix lock around the persist transaction
  - store/sqlite/sqlite.go: MaxSuffixForPrefix query, unique index
*/
package invoice

import (
	"context"
	"fmt"
	"sync"
)

// PrefixFor returns the date-derived portion of an invoice number,
// e.g. "FV/2025/10/01/".
func PrefixFor(issueDate Date) string {
	t := issueDate.Time
	return fmt.Sprintf("FV/%04d/%02d/%02d/", t.Year(), int(t.Month()), t.Day())
}

// FormatNumber appends the 5-digit zero-padded suffix to a prefix.
func FormatNumber(prefix string, suffix int) string {
	return fmt.Sprintf("%s%05d", prefix, suffix)
}

// =============================================================================
// ALLOCATOR - Per-prefix serialization of number generation
// =============================================================================

// Allocator hands out invoice numbers. Generation for the same prefix is
// serialized; prefixes are independent.
type Allocator struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAllocator() *Allocator {
	return &Allocator{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a prefix and returns its release func.
// Callers must hold the lock from the max-suffix read until the saving
// transaction has committed or rolled back.
func (a *Allocator) Lock(prefix string) func() {
	a.mu.Lock()
	m, ok := a.locks[prefix]
	if !ok {
		m = &sync.Mutex{}
		a.locks[prefix] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Next generates the next number under the issue date's prefix: the current
// maximum suffix plus one, or 00001 when the prefix has no invoices yet.
// The caller must hold the prefix lock.
func (a *Allocator) Next(ctx context.Context, store InvoiceStore, issueDate Date) (string, error) {
	prefix := PrefixFor(issueDate)
	max, err := store.MaxSuffixForPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read max suffix for %s: %w", prefix, err)
	}
	return FormatNumber(prefix, max+1), nil
}

// Resolve returns the invoice number to persist. A non-blank requested
// number is used verbatim after a uniqueness check (excluding the invoice
// being updated, if any); a blank one is generated.
func (a *Allocator) Resolve(ctx context.Context, store InvoiceStore, requested string, issueDate Date, excludeID InvoiceID) (string, error) {
	if requested != "" {
		var exists bool
		var err error
		if excludeID != 0 {
			exists, err = store.InvoiceNumberExistsExcluding(ctx, requested, excludeID)
		} else {
			exists, err = store.InvoiceNumberExists(ctx, requested)
		}
		if err != nil {
			return "", fmt.Errorf("failed to check invoice number: %w", err)
		}
		if exists {
			return "", &DuplicateNumberError{Number: requested}
		}
		return requested, nil
	}

	return a.Next(ctx, store, issueDate)
}
