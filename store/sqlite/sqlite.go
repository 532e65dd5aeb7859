/*
Package sqlite provides a SQLite-backed implementation of invoice.Store.

PURPOSE:
  Implements client and invoice persistence using SQLite. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  clients:       Billed parties, nip UNIQUE (tax id lookup key)
  invoices:      Billing documents, invoice_number and public_token UNIQUE
  invoice_items: Owned line items, ON DELETE CASCADE from invoices

OWNERSHIP:
  invoice_items rows exist only through their invoice. SaveInvoice
  updates items in place by id, inserts new ones, and deletes rows whose
  id is no longer in the invoice's collection. Deleting an invoice
  cascades to its items.

CONCURRENCY:
  Uses a sync.RWMutex around the single SQLite connection; WithTx holds
  the write lock for the whole transaction, so the max-suffix read and
  the invoice insert are serialized against every concurrent allocation.
  That is stricter than the per-prefix requirement but is what a single
  SQLite writer gives anyway. The UNIQUE index on invoice_number remains
  the cross-process backstop and is surfaced as a duplicate-number error.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) and foreign keys on.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - invoice/store.go: Interface definitions
  - invoice/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/RoZ0o0/demo/invoice"
)

// Store implements invoice.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: a ":memory:" database exists per connection, and the
	// store serializes writers anyway.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		nip TEXT NOT NULL UNIQUE,
		address TEXT,
		email TEXT,
		phone TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_number TEXT NOT NULL UNIQUE,
		public_token TEXT NOT NULL UNIQUE,
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		client_id INTEGER NOT NULL REFERENCES clients(id),
		total_net TEXT NOT NULL,
		total_vat TEXT NOT NULL,
		total_gross TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Prefix scans for number allocation (invoice_number LIKE 'FV/.../%')
	CREATE INDEX IF NOT EXISTS idx_invoices_number
		ON invoices(invoice_number);
	CREATE INDEX IF NOT EXISTS idx_invoices_client
		ON invoices(client_id);

	CREATE TABLE IF NOT EXISTS invoice_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		position INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price TEXT NOT NULL,
		vat_rate TEXT NOT NULL,
		net_value TEXT NOT NULL,
		vat_value TEXT NOT NULL,
		gross_value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_invoice
		ON invoice_items(invoice_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTION BOUNDARY (invoice.Store interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(invoice.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation on the open transaction.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) WithTx(ctx context.Context, fn func(invoice.Store) error) error {
	// Already inside a transaction; run in the same scope.
	return fn(t)
}

func (t *txStore) FindClientByTaxID(ctx context.Context, taxID string) (*invoice.Client, error) {
	return findClientByTaxID(ctx, t.tx, taxID)
}
func (t *txStore) FindClientByID(ctx context.Context, id invoice.ClientID) (*invoice.Client, error) {
	return findClientByID(ctx, t.tx, id)
}
func (t *txStore) SaveClient(ctx context.Context, c *invoice.Client) error {
	return saveClient(ctx, t.tx, c)
}
func (t *txStore) ClientTaxIDExists(ctx context.Context, taxID string) (bool, error) {
	return clientTaxIDExists(ctx, t.tx, taxID)
}
func (t *txStore) ListClients(ctx context.Context, q invoice.ListQuery) ([]invoice.Client, int, error) {
	return listClients(ctx, t.tx, q)
}
func (t *txStore) FindInvoiceByID(ctx context.Context, id invoice.InvoiceID) (*invoice.Invoice, error) {
	return findInvoice(ctx, t.tx, "i.id = ?", int64(id))
}
func (t *txStore) FindInvoiceByToken(ctx context.Context, token string) (*invoice.Invoice, error) {
	return findInvoice(ctx, t.tx, "i.public_token = ?", token)
}
func (t *txStore) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	return invoiceNumberExists(ctx, t.tx, number, 0)
}
func (t *txStore) InvoiceNumberExistsExcluding(ctx context.Context, number string, id invoice.InvoiceID) (bool, error) {
	return invoiceNumberExists(ctx, t.tx, number, id)
}
func (t *txStore) MaxSuffixForPrefix(ctx context.Context, prefix string) (int, error) {
	return maxSuffixForPrefix(ctx, t.tx, prefix)
}
func (t *txStore) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	return saveInvoice(ctx, t.tx, inv)
}
func (t *txStore) DeleteInvoice(ctx context.Context, id invoice.InvoiceID) error {
	return deleteInvoice(ctx, t.tx, id)
}
func (t *txStore) ListInvoices(ctx context.Context, q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	return listInvoices(ctx, t.tx, q)
}

// =============================================================================
// CLIENT STORE (invoice.ClientStore interface)
// =============================================================================

func (s *Store) FindClientByTaxID(ctx context.Context, taxID string) (*invoice.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findClientByTaxID(ctx, s.db, taxID)
}

func (s *Store) FindClientByID(ctx context.Context, id invoice.ClientID) (*invoice.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findClientByID(ctx, s.db, id)
}

func (s *Store) SaveClient(ctx context.Context, c *invoice.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveClient(ctx, s.db, c)
}

func (s *Store) ClientTaxIDExists(ctx context.Context, taxID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clientTaxIDExists(ctx, s.db, taxID)
}

func (s *Store) ListClients(ctx context.Context, q invoice.ListQuery) ([]invoice.Client, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listClients(ctx, s.db, q)
}

const clientColumns = "id, name, nip, address, email, phone, created_at"

func findClientByTaxID(ctx context.Context, db dbtx, taxID string) (*invoice.Client, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE nip = ?", taxID)
	return scanClient(row)
}

func findClientByID(ctx context.Context, db dbtx, id invoice.ClientID) (*invoice.Client, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+clientColumns+" FROM clients WHERE id = ?", int64(id))
	return scanClient(row)
}

func scanClient(row *sql.Row) (*invoice.Client, error) {
	var (
		c         invoice.Client
		address   sql.NullString
		email     sql.NullString
		phone     sql.NullString
		createdAt string
	)

	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &address, &email, &phone, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan client: %w", err)
	}

	c.Address = address.String
	c.Email = email.String
	c.Phone = phone.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func saveClient(ctx context.Context, db dbtx, c *invoice.Client) error {
	if c.ID == 0 {
		now := time.Now().UTC()
		res, err := db.ExecContext(ctx, `
			INSERT INTO clients (name, nip, address, email, phone, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.Name, c.TaxID, nullString(c.Address), nullString(c.Email),
			nullString(c.Phone), now.Format(time.RFC3339),
		)
		if err != nil {
			if isUniqueConstraintError(err, "clients.nip") {
				return fmt.Errorf("tax id %q: %w", c.TaxID, invoice.ErrTaxIDExists)
			}
			return fmt.Errorf("failed to insert client: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		c.ID = invoice.ClientID(id)
		c.CreatedAt = now
		return nil
	}

	_, err := db.ExecContext(ctx, `
		UPDATE clients SET name = ?, nip = ?, address = ?, email = ?, phone = ?
		WHERE id = ?`,
		c.Name, c.TaxID, nullString(c.Address), nullString(c.Email),
		nullString(c.Phone), int64(c.ID),
	)
	if err != nil {
		if isUniqueConstraintError(err, "clients.nip") {
			return fmt.Errorf("tax id %q: %w", c.TaxID, invoice.ErrTaxIDExists)
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

func clientTaxIDExists(ctx context.Context, db dbtx, taxID string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clients WHERE nip = ?", taxID).Scan(&count)
	return count > 0, err
}

func listClients(ctx context.Context, db dbtx, q invoice.ListQuery) ([]invoice.Client, int, error) {
	where := ""
	var args []any
	if q.Search != "" {
		where = " WHERE name LIKE ? OR nip LIKE ?"
		like := "%" + q.Search + "%"
		args = append(args, like, like)
	}

	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM clients"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + clientColumns + " FROM clients" + where + " ORDER BY id"
	if q.Size > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Size, q.Offset())
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var clients []invoice.Client
	for rows.Next() {
		var (
			c         invoice.Client
			address   sql.NullString
			email     sql.NullString
			phone     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &address, &email, &phone, &createdAt); err != nil {
			return nil, 0, err
		}
		c.Address = address.String
		c.Email = email.String
		c.Phone = phone.String
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		clients = append(clients, c)
	}
	return clients, total, rows.Err()
}

// =============================================================================
// INVOICE STORE (invoice.InvoiceStore interface)
// =============================================================================

func (s *Store) FindInvoiceByID(ctx context.Context, id invoice.InvoiceID) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findInvoice(ctx, s.db, "i.id = ?", int64(id))
}

func (s *Store) FindInvoiceByToken(ctx context.Context, token string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findInvoice(ctx, s.db, "i.public_token = ?", token)
}

func (s *Store) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return invoiceNumberExists(ctx, s.db, number, 0)
}

func (s *Store) InvoiceNumberExistsExcluding(ctx context.Context, number string, id invoice.InvoiceID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return invoiceNumberExists(ctx, s.db, number, id)
}

func (s *Store) MaxSuffixForPrefix(ctx context.Context, prefix string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maxSuffixForPrefix(ctx, s.db, prefix)
}

func (s *Store) SaveInvoice(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveInvoice(ctx, s.db, inv)
}

func (s *Store) DeleteInvoice(ctx context.Context, id invoice.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteInvoice(ctx, s.db, id)
}

func (s *Store) ListInvoices(ctx context.Context, q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listInvoices(ctx, s.db, q)
}

func findInvoice(ctx context.Context, db dbtx, where string, arg any) (*invoice.Invoice, error) {
	query := `
		SELECT i.id, i.invoice_number, i.public_token, i.issue_date, i.due_date,
		       i.total_net, i.total_vat, i.total_gross, i.created_at,
		       c.id, c.name, c.nip, c.address, c.email, c.phone, c.created_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		WHERE ` + where

	var (
		inv             invoice.Invoice
		issueDate       string
		dueDate         string
		totalNet        string
		totalVat        string
		totalGross      string
		createdAt       string
		clientAddress   sql.NullString
		clientEmail     sql.NullString
		clientPhone     sql.NullString
		clientCreatedAt string
	)

	err := db.QueryRowContext(ctx, query, arg).Scan(
		&inv.ID, &inv.Number, &inv.PublicToken, &issueDate, &dueDate,
		&totalNet, &totalVat, &totalGross, &createdAt,
		&inv.Client.ID, &inv.Client.Name, &inv.Client.TaxID,
		&clientAddress, &clientEmail, &clientPhone, &clientCreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}

	inv.IssueDate, _ = invoice.ParseDate(issueDate)
	inv.DueDate, _ = invoice.ParseDate(dueDate)
	inv.TotalNet = parseDecimal(totalNet)
	inv.TotalVat = parseDecimal(totalVat)
	inv.TotalGross = parseDecimal(totalGross)
	inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	inv.Client.Address = clientAddress.String
	inv.Client.Email = clientEmail.String
	inv.Client.Phone = clientPhone.String
	inv.Client.CreatedAt, _ = time.Parse(time.RFC3339, clientCreatedAt)

	items, err := loadItems(ctx, db, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return &inv, nil
}

func loadItems(ctx context.Context, db dbtx, id invoice.InvoiceID) ([]invoice.LineItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, description, quantity, unit_price, vat_rate,
		       net_value, vat_value, gross_value
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position ASC, id ASC`,
		int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []invoice.LineItem
	for rows.Next() {
		var (
			it        invoice.LineItem
			unitPrice string
			vatRate   string
			net       string
			vat       string
			gross     string
		)
		if err := rows.Scan(&it.ID, &it.Description, &it.Quantity,
			&unitPrice, &vatRate, &net, &vat, &gross); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.UnitPrice = parseDecimal(unitPrice)
		it.VatRate = parseDecimal(vatRate)
		it.Net = parseDecimal(net)
		it.Vat = parseDecimal(vat)
		it.Gross = parseDecimal(gross)
		items = append(items, it)
	}
	return items, rows.Err()
}

func invoiceNumberExists(ctx context.Context, db dbtx, number string, exclude invoice.InvoiceID) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices WHERE invoice_number = ? AND id != ?",
		number, int64(exclude),
	).Scan(&count)
	return count > 0, err
}

// maxSuffixForPrefix reads the highest numeric suffix under a prefix.
// Serialized against concurrent allocations by the store write lock when
// called through WithTx.
func maxSuffixForPrefix(ctx context.Context, db dbtx, prefix string) (int, error) {
	var max sql.NullInt64
	err := db.QueryRowContext(ctx, `
		SELECT MAX(CAST(SUBSTR(invoice_number, LENGTH(?) + 1) AS INTEGER))
		FROM invoices
		WHERE invoice_number LIKE ? || '%'`,
		prefix, prefix,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to query max suffix: %w", err)
	}
	return int(max.Int64), nil
}

func saveInvoice(ctx context.Context, db dbtx, inv *invoice.Invoice) error {
	if inv.Client.ID == 0 {
		return fmt.Errorf("invoice requires a persisted client")
	}

	if inv.ID == 0 {
		now := time.Now().UTC()
		res, err := db.ExecContext(ctx, `
			INSERT INTO invoices
			(invoice_number, public_token, issue_date, due_date, client_id,
			 total_net, total_vat, total_gross, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.Number, inv.PublicToken, inv.IssueDate.String(), inv.DueDate.String(),
			int64(inv.Client.ID), inv.TotalNet.String(), inv.TotalVat.String(),
			inv.TotalGross.String(), now.Format(time.RFC3339),
		)
		if err != nil {
			if isUniqueConstraintError(err, "invoices.invoice_number") {
				return &invoice.DuplicateNumberError{Number: inv.Number}
			}
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		inv.ID = invoice.InvoiceID(id)
		inv.CreatedAt = now
	} else {
		// public_token and created_at are immutable; never touched on update.
		_, err := db.ExecContext(ctx, `
			UPDATE invoices
			SET invoice_number = ?, issue_date = ?, due_date = ?, client_id = ?,
			    total_net = ?, total_vat = ?, total_gross = ?
			WHERE id = ?`,
			inv.Number, inv.IssueDate.String(), inv.DueDate.String(),
			int64(inv.Client.ID), inv.TotalNet.String(), inv.TotalVat.String(),
			inv.TotalGross.String(), int64(inv.ID),
		)
		if err != nil {
			if isUniqueConstraintError(err, "invoices.invoice_number") {
				return &invoice.DuplicateNumberError{Number: inv.Number}
			}
			return fmt.Errorf("failed to update invoice: %w", err)
		}
	}

	return saveItems(ctx, db, inv)
}

// saveItems reconciles the invoice_items rows with the invoice's collection:
// update by id, insert new, delete unreferenced.
func saveItems(ctx context.Context, db dbtx, inv *invoice.Invoice) error {
	kept := make([]string, 0, len(inv.Items))
	args := []any{int64(inv.ID)}
	for _, it := range inv.Items {
		if it.ID != 0 {
			kept = append(kept, "?")
			args = append(args, int64(it.ID))
		}
	}

	del := "DELETE FROM invoice_items WHERE invoice_id = ?"
	if len(kept) > 0 {
		del += " AND id NOT IN (" + strings.Join(kept, ", ") + ")"
	}
	if _, err := db.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("failed to delete removed items: %w", err)
	}

	for pos := range inv.Items {
		it := &inv.Items[pos]
		if it.ID == 0 {
			res, err := db.ExecContext(ctx, `
				INSERT INTO invoice_items
				(invoice_id, position, description, quantity, unit_price, vat_rate,
				 net_value, vat_value, gross_value)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				int64(inv.ID), pos, it.Description, it.Quantity,
				it.UnitPrice.String(), it.VatRate.String(),
				it.Net.String(), it.Vat.String(), it.Gross.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert item: %w", err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			it.ID = invoice.ItemID(id)
			continue
		}

		_, err := db.ExecContext(ctx, `
			UPDATE invoice_items
			SET position = ?, description = ?, quantity = ?, unit_price = ?,
			    vat_rate = ?, net_value = ?, vat_value = ?, gross_value = ?
			WHERE id = ? AND invoice_id = ?`,
			pos, it.Description, it.Quantity, it.UnitPrice.String(),
			it.VatRate.String(), it.Net.String(), it.Vat.String(),
			it.Gross.String(), int64(it.ID), int64(inv.ID),
		)
		if err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
	}
	return nil
}

func deleteInvoice(ctx context.Context, db dbtx, id invoice.InvoiceID) error {
	res, err := db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d: %w", id, invoice.ErrInvoiceNotFound)
	}
	return nil
}

func listInvoices(ctx context.Context, db dbtx, q invoice.ListQuery) ([]invoice.Invoice, int, error) {
	where := ""
	var args []any
	if q.Search != "" {
		where = " WHERE i.invoice_number LIKE ? OR c.name LIKE ? OR c.nip LIKE ?"
		like := "%" + q.Search + "%"
		args = append(args, like, like, like)
	}

	from := " FROM invoices i JOIN clients c ON c.id = i.client_id"

	var total int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*)"+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT i.id, i.invoice_number, i.public_token, i.issue_date, i.due_date,
		       i.total_net, i.total_vat, i.total_gross, i.created_at,
		       c.id, c.name, c.nip` + from + where + " ORDER BY i.id"
	if q.Size > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Size, q.Offset())
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []invoice.Invoice
	for rows.Next() {
		var (
			inv        invoice.Invoice
			issueDate  string
			dueDate    string
			totalNet   string
			totalVat   string
			totalGross string
			createdAt  string
		)
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.PublicToken,
			&issueDate, &dueDate, &totalNet, &totalVat, &totalGross, &createdAt,
			&inv.Client.ID, &inv.Client.Name, &inv.Client.TaxID); err != nil {
			return nil, 0, err
		}
		inv.IssueDate, _ = invoice.ParseDate(issueDate)
		inv.DueDate, _ = invoice.ParseDate(dueDate)
		inv.TotalNet = parseDecimal(totalNet)
		inv.TotalVat = parseDecimal(totalVat)
		inv.TotalGross = parseDecimal(totalGross)
		inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, column)
}
