/*
Package invoice implements the billing document core: clients, invoices,
line items, monetary calculation, invoice numbering, and item reconciliation.

PURPOSE:
  This package contains the domain types and algorithms for managing
  invoices. The hard parts live here: sequential per-day invoice numbers
  that stay unique under concurrent creation, fixed-point net/VAT/gross
  calculation, and merging an update's item list against the persisted
  items by identity.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A calendar date (no clock, no timezone shifting)
  - Client: A billed party, looked up by tax identifier
  - Invoice: A billing document owning its line items
  - LineItem: One invoice position with derived net/VAT/gross values

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Derived totals: Invoice totals are recomputed from items, never set
  3. Exclusive ownership: Items live and die with their invoice
  4. Type Safety: Strong ID types prevent mixing client/invoice/item IDs

SEE ALSO:
  - calculator.go: Line item and total calculation
  - number.go: Invoice number generation
  - reconcile.go: Item list merging on update
  - service.go: Lifecycle orchestration
*/
package invoice

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ClientID int64
type InvoiceID int64
type ItemID int64

// =============================================================================
// DATE - Calendar date without time-of-day
// =============================================================================

// Date is a calendar date. The embedded time is always UTC midnight so that
// comparisons never shift across timezones.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) After(other Date) bool { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.Time.Format(dateLayout) }

// =============================================================================
// CLIENT
// =============================================================================

// Client is a billed party. TaxID is the unique business key used for
// find-or-create during invoice creation; it is never changed as a side
// effect of invoicing.
type Client struct {
	ID        ClientID
	Name      string
	TaxID     string
	Address   string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// =============================================================================
// INVOICE - Billing document owning its line items
// =============================================================================

type Invoice struct {
	ID     InvoiceID
	Number string

	// PublicToken allows unauthenticated read-only access to this invoice.
	// Assigned once at creation, never changed.
	PublicToken string

	IssueDate Date
	DueDate   Date

	// Client is referenced, not owned: the client outlives the invoice.
	Client Client

	// Items are owned exclusively. An item removed during reconciliation is
	// deleted, not orphaned.
	Items []LineItem

	// Derived totals. Always recomputed from Items, never patched.
	TotalNet   decimal.Decimal
	TotalVat   decimal.Decimal
	TotalGross decimal.Decimal

	CreatedAt time.Time
}

// LineItem is one invoice position. ID is zero until persisted; reconciliation
// matches update entries against persisted items by this identity.
type LineItem struct {
	ID          ItemID
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	VatRate     decimal.Decimal

	// Derived: Net = Quantity x UnitPrice, Vat = Net x VatRate/100,
	// Gross = Net + Vat. All rounded to 2 decimal places.
	Net   decimal.Decimal
	Vat   decimal.Decimal
	Gross decimal.Decimal
}

// =============================================================================
// REQUEST INPUTS
// =============================================================================

// ClientInput carries the client fields of a create/update request.
type ClientInput struct {
	Name    string
	TaxID   string
	Address string
	Email   string
	Phone   string
}

// ItemInput is one item entry of a create/update request. On the update path
// a non-zero ID refers to an existing item to update in place; a zero ID
// represents a new item to append.
type ItemInput struct {
	ID          ItemID
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	VatRate     decimal.Decimal
}

// Request is a create or update payload. A blank Number asks the allocator
// to generate the next sequential number for the issue date.
type Request struct {
	Number    string
	IssueDate Date
	DueDate   Date
	Client    ClientInput
	Items     []ItemInput
}
