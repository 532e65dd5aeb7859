/*
store.go - Persistence interfaces for clients and invoices

PURPOSE:
  Defines the interface between the invoice core and the database.
  Different implementations can use SQLite, PostgreSQL, or in-memory
  storage; the core only speaks these interfaces.

TRANSACTION BOUNDARY:
  Every lifecycle operation runs inside WithTx. If the callback returns
  an error the transaction rolls back and no partial state survives -
  client creation, number allocation and the invoice write commit or
  roll back together.

OWNERSHIP:
  SaveInvoice persists the invoice together with its item collection:
  new items (zero ID) are inserted and given identities, existing items
  are updated in place, and persisted items missing from the collection
  are deleted. DeleteInvoice cascades to the owned items.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - invoice/store/memory.go: In-memory for testing

SEE ALSO:
  - service.go: The only consumer of these interfaces
*/
package invoice

import "context"

// =============================================================================
// CLIENT STORE
// =============================================================================

type ClientStore interface {
	// FindClientByTaxID returns (nil, nil) when no client has the tax id.
	FindClientByTaxID(ctx context.Context, taxID string) (*Client, error)

	// FindClientByID returns (nil, nil) when absent.
	FindClientByID(ctx context.Context, id ClientID) (*Client, error)

	// SaveClient inserts (zero ID, assigns identity and creation timestamp)
	// or updates a client. Inserting a duplicate tax id returns
	// ErrTaxIDExists.
	SaveClient(ctx context.Context, c *Client) error

	// ClientTaxIDExists reports whether any client has the tax id.
	ClientTaxIDExists(ctx context.Context, taxID string) (bool, error)

	// ListClients returns a page of clients plus the unpaged total count.
	ListClients(ctx context.Context, q ListQuery) ([]Client, int, error)
}

// =============================================================================
// INVOICE STORE
// =============================================================================

type InvoiceStore interface {
	// FindInvoiceByID returns (nil, nil) when absent. Items are loaded in
	// their persisted order.
	FindInvoiceByID(ctx context.Context, id InvoiceID) (*Invoice, error)

	// FindInvoiceByToken returns (nil, nil) when no invoice has the token.
	FindInvoiceByToken(ctx context.Context, token string) (*Invoice, error)

	// InvoiceNumberExists reports whether any invoice has the number.
	InvoiceNumberExists(ctx context.Context, number string) (bool, error)

	// InvoiceNumberExistsExcluding ignores the given invoice, for the
	// update path's self-exclusion.
	InvoiceNumberExistsExcluding(ctx context.Context, number string, id InvoiceID) (bool, error)

	// MaxSuffixForPrefix returns the highest numeric suffix used under a
	// prefix, or 0 when the prefix has no invoices. Callers serialize
	// concurrent allocations for the same prefix (see number.go).
	MaxSuffixForPrefix(ctx context.Context, prefix string) (int, error)

	// SaveInvoice inserts (zero ID) or updates an invoice with its items.
	// A duplicate invoice number returns ErrDuplicateInvoiceNumber.
	SaveInvoice(ctx context.Context, inv *Invoice) error

	// DeleteInvoice removes the invoice and its owned items.
	// Returns ErrInvoiceNotFound when absent.
	DeleteInvoice(ctx context.Context, id InvoiceID) error

	// ListInvoices returns a page of invoices (without items) plus the
	// unpaged total count.
	ListInvoices(ctx context.Context, q ListQuery) ([]Invoice, int, error)
}

// =============================================================================
// COMBINED STORE WITH TRANSACTION CONTROL
// =============================================================================

// Store combines both stores with a transaction boundary.
type Store interface {
	ClientStore
	InvoiceStore

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// ListQuery is a page request with an optional search term.
type ListQuery struct {
	Page   int
	Size   int
	Search string
}

// Offset returns the row offset for the page.
func (q ListQuery) Offset() int {
	if q.Page < 0 {
		return 0
	}
	return q.Page * q.Size
}
