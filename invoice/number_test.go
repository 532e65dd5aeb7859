package invoice_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoZ0o0/demo/invoice"
	memstore "github.com/RoZ0o0/demo/invoice/store"
)

// =============================================================================
// FORMAT
// =============================================================================

func TestPrefixFor_ZeroPadsDateParts(t *testing.T) {
	prefix := invoice.PrefixFor(invoice.NewDate(2025, time.March, 7))
	assert.Equal(t, "FV/2025/03/07/", prefix)
}

func TestFormatNumber_ZeroPadsSuffix(t *testing.T) {
	prefix := invoice.PrefixFor(invoice.NewDate(2025, time.October, 1))

	assert.Equal(t, "FV/2025/10/01/00001", invoice.FormatNumber(prefix, 1))
	assert.Equal(t, "FV/2025/10/01/00123", invoice.FormatNumber(prefix, 123))
	// Suffixes past 5 digits widen rather than wrap
	assert.Equal(t, "FV/2025/10/01/123456", invoice.FormatNumber(prefix, 123456))
}

// =============================================================================
// ALLOCATION
// =============================================================================

func seedInvoice(t *testing.T, s invoice.Store, number string, issue invoice.Date) {
	t.Helper()
	inv := &invoice.Invoice{
		Number:      number,
		PublicToken: "token-" + number,
		IssueDate:   issue,
		DueDate:     issue,
		Client:      invoice.Client{ID: 1, Name: "Acme", TaxID: "111"},
		Items:       []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: dec("1"), VatRate: dec("0"), Net: dec("1"), Vat: dec("0"), Gross: dec("1")}},
	}
	require.NoError(t, s.SaveInvoice(context.Background(), inv))
}

func TestAllocatorNext_EmptyPrefixStartsAtOne(t *testing.T) {
	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()

	number, err := alloc.Next(context.Background(), store, invoice.NewDate(2025, time.October, 1))

	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/01/00001", number)
}

func TestAllocatorNext_ContinuesFromMaxSuffix(t *testing.T) {
	// GIVEN: Invoices 00001 and 00007 exist for the day (gap from deletions)
	// WHEN: Generating the next number
	// THEN: It is max+1 = 00008, not a gap fill

	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()
	oct1 := invoice.NewDate(2025, time.October, 1)

	seedInvoice(t, store, "FV/2025/10/01/00001", oct1)
	seedInvoice(t, store, "FV/2025/10/01/00007", oct1)

	number, err := alloc.Next(context.Background(), store, oct1)

	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/01/00008", number)
}

func TestAllocatorNext_PrefixesAreIndependent(t *testing.T) {
	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()
	oct1 := invoice.NewDate(2025, time.October, 1)
	oct2 := invoice.NewDate(2025, time.October, 2)

	seedInvoice(t, store, "FV/2025/10/01/00005", oct1)

	number, err := alloc.Next(context.Background(), store, oct2)

	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/02/00001", number, "a new day starts its own sequence")
}

// =============================================================================
// RESOLUTION
// =============================================================================

func TestAllocatorResolve_ExplicitNumberUsedVerbatim(t *testing.T) {
	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()

	number, err := alloc.Resolve(context.Background(), store, "CUSTOM/2025/42", invoice.NewDate(2025, time.October, 1), 0)

	require.NoError(t, err)
	assert.Equal(t, "CUSTOM/2025/42", number)
}

func TestAllocatorResolve_ExplicitDuplicateRejected(t *testing.T) {
	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()
	oct1 := invoice.NewDate(2025, time.October, 1)

	seedInvoice(t, store, "FV/2025/10/01/00001", oct1)

	_, err := alloc.Resolve(context.Background(), store, "FV/2025/10/01/00001", oct1, 0)

	assert.ErrorIs(t, err, invoice.ErrDuplicateInvoiceNumber)
	var dupErr *invoice.DuplicateNumberError
	assert.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "FV/2025/10/01/00001", dupErr.Number)
}

func TestAllocatorResolve_ExcludesInvoiceBeingUpdated(t *testing.T) {
	// GIVEN: Invoice 1 already holds the number
	// WHEN: Resolving that same number while updating invoice 1
	// THEN: No conflict - an invoice may keep its own number

	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()
	oct1 := invoice.NewDate(2025, time.October, 1)

	seedInvoice(t, store, "FV/2025/10/01/00001", oct1)

	number, err := alloc.Resolve(context.Background(), store, "FV/2025/10/01/00001", oct1, 1)

	require.NoError(t, err)
	assert.Equal(t, "FV/2025/10/01/00001", number)
}

// =============================================================================
// LOCKING
// =============================================================================

func TestAllocatorLock_SerializesSamePrefix(t *testing.T) {
	// GIVEN: Many goroutines allocating under one held prefix lock each
	// WHEN: Each reads max, formats, and saves before unlocking
	// THEN: Every goroutine gets a distinct suffix

	store := memstore.NewMemory()
	alloc := invoice.NewAllocator()
	oct1 := invoice.NewDate(2025, time.October, 1)
	prefix := invoice.PrefixFor(oct1)

	const n = 25
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			unlock := alloc.Lock(prefix)
			defer unlock()

			number, err := alloc.Next(context.Background(), store, oct1)
			if err != nil {
				errs <- err
				return
			}

			inv := &invoice.Invoice{
				Number:      number,
				PublicToken: "tok-" + number,
				IssueDate:   oct1,
				DueDate:     oct1,
				Client:      invoice.Client{ID: 1},
			}
			errs <- store.SaveInvoice(context.Background(), inv)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err, "no allocation may collide under the lock")
	}

	seen := make(map[string]bool)
	for i := 1; i <= n; i++ {
		number := fmt.Sprintf("%s%05d", prefix, i)
		exists, err := store.InvoiceNumberExists(context.Background(), number)
		require.NoError(t, err)
		assert.True(t, exists, "missing %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}
