// Package store provides an in-memory invoice.Store implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RoZ0o0/demo/invoice"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.Mutex
	clients  map[invoice.ClientID]invoice.Client
	invoices map[invoice.InvoiceID]invoice.Invoice

	nextClientID  int64
	nextInvoiceID int64
	nextItemID    int64
}

func NewMemory() *Memory {
	return &Memory{
		clients:  make(map[invoice.ClientID]invoice.Client),
		invoices: make(map[invoice.InvoiceID]invoice.Invoice),
	}
}

// WithTx executes fn against the store and restores the previous state if
// fn fails. The whole transaction runs under the store lock, which also
// serializes concurrent allocations (a stricter guarantee than the
// per-prefix one the contract requires).
func (m *Memory) WithTx(ctx context.Context, fn func(invoice.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapClients, snapInvoices := m.snapshot()
	snapIDs := [3]int64{m.nextClientID, m.nextInvoiceID, m.nextItemID}

	if err := fn(&txMemory{m: m}); err != nil {
		m.clients = snapClients
		m.invoices = snapInvoices
		m.nextClientID, m.nextInvoiceID, m.nextItemID = snapIDs[0], snapIDs[1], snapIDs[2]
		return err
	}
	return nil
}

func (m *Memory) snapshot() (map[invoice.ClientID]invoice.Client, map[invoice.InvoiceID]invoice.Invoice) {
	clients := make(map[invoice.ClientID]invoice.Client, len(m.clients))
	for id, c := range m.clients {
		clients[id] = c
	}
	invoices := make(map[invoice.InvoiceID]invoice.Invoice, len(m.invoices))
	for id, inv := range m.invoices {
		invoices[id] = cloneInvoice(inv)
	}
	return clients, invoices
}

func cloneInvoice(inv invoice.Invoice) invoice.Invoice {
	items := make([]invoice.LineItem, len(inv.Items))
	copy(items, inv.Items)
	inv.Items = items
	return inv
}

// =============================================================================
// CLIENT STORE
// =============================================================================

func (m *Memory) FindClientByTaxID(ctx context.Context, taxID string) (*invoice.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findClientByTaxIDLocked(taxID)
}

func (m *Memory) findClientByTaxIDLocked(taxID string) (*invoice.Client, error) {
	for _, c := range m.clients {
		if c.TaxID == taxID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *Memory) FindClientByID(ctx context.Context, id invoice.ClientID) (*invoice.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findClientByIDLocked(id)
}

func (m *Memory) findClientByIDLocked(id invoice.ClientID) (*invoice.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) SaveClient(ctx context.Context, c *invoice.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveClientLocked(c)
}

func (m *Memory) saveClientLocked(c *invoice.Client) error {
	for id, existing := range m.clients {
		if existing.TaxID == c.TaxID && id != c.ID {
			return invoice.ErrTaxIDExists
		}
	}
	if c.ID == 0 {
		m.nextClientID++
		c.ID = invoice.ClientID(m.nextClientID)
		c.CreatedAt = time.Now().UTC()
	}
	m.clients[c.ID] = *c
	return nil
}

func (m *Memory) ClientTaxIDExists(ctx context.Context, taxID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clientTaxIDExistsLocked(taxID)
}

func (m *Memory) clientTaxIDExistsLocked(taxID string) (bool, error) {
	c, _ := m.findClientByTaxIDLocked(taxID)
	return c != nil, nil
}

func (m *Memory) ListClients(ctx context.Context, q invoice.ListQuery) ([]invoice.Client, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listClientsLocked(q)
}

func (m *Memory) listClientsLocked(q invoice.ListQuery) ([]invoice.Client, int, error) {
	var all []invoice.Client
	for _, c := range m.clients {
		if q.Search == "" || containsFold(c.Name, q.Search) || containsFold(c.TaxID, q.Search) {
			all = append(all, c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, q), len(all), nil
}

// =============================================================================
// INVOICE STORE
// =============================================================================

func (m *Memory) FindInvoiceByID(ctx context.Context, id invoice.InvoiceID) (*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findInvoiceByIDLocked(id)
}

func (m *Memory) findInvoiceByIDLocked(id invoice.InvoiceID) (*invoice.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, nil
	}
	inv = cloneInvoice(inv)
	return &inv, nil
}

func (m *Memory) FindInvoiceByToken(ctx context.Context, token string) (*invoice.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findInvoiceByTokenLocked(token)
}

func (m *Memory) findInvoiceByTokenLocked(token string) (*invoice.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.PublicToken == token {
			inv = cloneInvoice(inv)
			return &inv, nil
		}
	}
	return nil, nil
}

func (m *Memory) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoiceNumberExistsLocked(number, 0)
}

func (m *Memory) InvoiceNumberExistsExcluding(ctx context.Context, number string, id invoice.InvoiceID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoiceNumberExistsLocked(number, id)
}

func (m *Memory) invoiceNumberExistsLocked(number string, exclude invoice.InvoiceID) (bool, error) {
	for id, inv := range m.invoices {
		if inv.Number == number && id != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) MaxSuffixForPrefix(ctx context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxSuffixForPrefixLocked(prefix)
}

func (m *Memory) maxSuffixForPrefixLocked(prefix string) (int, error) {
	max := 0
	for _, inv := range m.invoices {
		if !strings.HasPrefix(inv.Number, prefix) {
			continue
		}
		suffix, err := strconv.Atoi(inv.Number[len(prefix):])
		if err != nil {
			continue
		}
		if suffix > max {
			max = suffix
		}
	}
	return max, nil
}

func (m *Memory) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveInvoiceLocked(inv)
}

func (m *Memory) saveInvoiceLocked(inv *invoice.Invoice) error {
	if exists, _ := m.invoiceNumberExistsLocked(inv.Number, inv.ID); exists {
		return &invoice.DuplicateNumberError{Number: inv.Number}
	}

	if inv.ID == 0 {
		m.nextInvoiceID++
		inv.ID = invoice.InvoiceID(m.nextInvoiceID)
		inv.CreatedAt = time.Now().UTC()
	}
	for i := range inv.Items {
		if inv.Items[i].ID == 0 {
			m.nextItemID++
			inv.Items[i].ID = invoice.ItemID(m.nextItemID)
		}
	}

	m.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

func (m *Memory) DeleteInvoice(ctx context.Context, id invoice.InvoiceID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteInvoiceLocked(id)
}

func (m *Memory) deleteInvoiceLocked(id invoice.InvoiceID) error {
	if _, ok := m.invoices[id]; !ok {
		return invoice.ErrInvoiceNotFound
	}
	delete(m.invoices, id)
	return nil
}

func (m *Memory) ListInvoices(ctx context.Context, q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listInvoicesLocked(q)
}

func (m *Memory) listInvoicesLocked(q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	var all []invoice.Invoice
	for _, inv := range m.invoices {
		if q.Search == "" || containsFold(inv.Number, q.Search) || containsFold(inv.Client.Name, q.Search) {
			inv = cloneInvoice(inv)
			inv.Items = nil
			all = append(all, inv)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, q), len(all), nil
}

// =============================================================================
// TRANSACTION VIEW - Operates on the already-locked store
// =============================================================================

// txMemory forwards to the locked store methods; Memory.WithTx holds the
// lock for the duration of the callback and restores a snapshot on error.
type txMemory struct {
	m *Memory
}

func (t *txMemory) FindClientByTaxID(_ context.Context, taxID string) (*invoice.Client, error) {
	return t.m.findClientByTaxIDLocked(taxID)
}

func (t *txMemory) FindClientByID(_ context.Context, id invoice.ClientID) (*invoice.Client, error) {
	return t.m.findClientByIDLocked(id)
}

func (t *txMemory) SaveClient(_ context.Context, c *invoice.Client) error {
	return t.m.saveClientLocked(c)
}

func (t *txMemory) ClientTaxIDExists(_ context.Context, taxID string) (bool, error) {
	return t.m.clientTaxIDExistsLocked(taxID)
}

func (t *txMemory) ListClients(_ context.Context, q invoice.ListQuery) ([]invoice.Client, int, error) {
	return t.m.listClientsLocked(q)
}

func (t *txMemory) FindInvoiceByID(_ context.Context, id invoice.InvoiceID) (*invoice.Invoice, error) {
	return t.m.findInvoiceByIDLocked(id)
}

func (t *txMemory) FindInvoiceByToken(_ context.Context, token string) (*invoice.Invoice, error) {
	return t.m.findInvoiceByTokenLocked(token)
}

func (t *txMemory) InvoiceNumberExists(_ context.Context, number string) (bool, error) {
	return t.m.invoiceNumberExistsLocked(number, 0)
}

func (t *txMemory) InvoiceNumberExistsExcluding(_ context.Context, number string, id invoice.InvoiceID) (bool, error) {
	return t.m.invoiceNumberExistsLocked(number, id)
}

func (t *txMemory) MaxSuffixForPrefix(_ context.Context, prefix string) (int, error) {
	return t.m.maxSuffixForPrefixLocked(prefix)
}

func (t *txMemory) SaveInvoice(_ context.Context, inv *invoice.Invoice) error {
	return t.m.saveInvoiceLocked(inv)
}

func (t *txMemory) DeleteInvoice(_ context.Context, id invoice.InvoiceID) error {
	return t.m.deleteInvoiceLocked(id)
}

func (t *txMemory) ListInvoices(_ context.Context, q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	return t.m.listInvoicesLocked(q)
}

func (t *txMemory) WithTx(ctx context.Context, fn func(invoice.Store) error) error {
	// Already inside a transaction; run in the same scope.
	return fn(t)
}

// =============================================================================
// HELPERS
// =============================================================================

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func page[T any](all []T, q invoice.ListQuery) []T {
	if q.Size <= 0 {
		return all
	}
	start := q.Offset()
	if start >= len(all) {
		return nil
	}
	end := start + q.Size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
