/*
service.go - Invoice lifecycle orchestration

PURPOSE:
  Composes validation, calculation, client resolution, number allocation
  and reconciliation into the create/read/update/delete workflows. Each
  operation is atomic: everything happens inside one store transaction,
  and any failure leaves prior state untouched.

CREATE FLOW:
  validate dates -> validate items -> compute items/totals -> validate
  totals -> (lock prefix if number is generated) -> in tx: resolve client
  by tax id (find-or-create), resolve invoice number, persist.

UPDATE FLOW:
  in tx: load invoice (not found aborts) -> validate dates/items ->
  resolve client -> reconcile items by identity -> recompute and validate
  totals -> keep the assigned number, or check an explicit rename for
  uniqueness excluding self -> persist.

NUMBER IMMUTABILITY:
  The invoice number is assigned once, on create. An update payload with
  a blank number keeps the stored number; only an explicit rename
  changes it. Generation never runs on the update path.

RETRY POLICY:
  A generated number can still collide when another process allocates
  concurrently; the UNIQUE constraint surfaces that as
  ErrDuplicateInvoiceNumber and allocation is retried exactly once.
  Explicit numbers are never retried.

SEE ALSO:
  - number.go: Prefix locking and number resolution
  - reconcile.go: Item merging
  - store.go: Transaction boundary contract
*/
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service orchestrates the invoice lifecycle over a Store.
type Service struct {
	store Store
	alloc *Allocator
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		alloc: NewAllocator(),
		log:   log,
	}
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates the request, computes items and totals, allocates the
// invoice number and persists everything in one transaction. Returns the
// new invoice's ID.
func (s *Service) Create(ctx context.Context, req Request) (InvoiceID, error) {
	if err := ValidateDates(req.IssueDate, req.DueDate); err != nil {
		return 0, err
	}
	if err := ValidateItems(req.Items); err != nil {
		return 0, err
	}

	items := CalculateItems(req.Items)
	net, vat, gross := SumTotals(items)
	if err := ValidateTotals(net, vat, gross); err != nil {
		return 0, err
	}

	inv := &Invoice{
		PublicToken: uuid.NewString(),
		IssueDate:   req.IssueDate,
		DueDate:     req.DueDate,
		Items:       items,
		TotalNet:    net,
		TotalVat:    vat,
		TotalGross:  gross,
	}

	id, err := s.persist(ctx, inv, req, 0)
	if err != nil && req.Number == "" && errors.Is(err, ErrDuplicateInvoiceNumber) {
		// Lost the allocation race to another writer. Retry once.
		s.log.Warn().Str("prefix", PrefixFor(req.IssueDate)).
			Msg("invoice number collision, retrying allocation")
		id, err = s.persist(ctx, inv, req, 0)
	}
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("invoice_id", int64(id)).Str("number", inv.Number).
		Msg("invoice created")
	return id, nil
}

// persist resolves client and number inside one transaction and saves the
// invoice. For generated numbers the prefix lock is held until the
// transaction has committed or rolled back, so a rollback never consumes
// a number observably.
func (s *Service) persist(ctx context.Context, inv *Invoice, req Request, excludeID InvoiceID) (InvoiceID, error) {
	if req.Number == "" {
		unlock := s.alloc.Lock(PrefixFor(req.IssueDate))
		defer unlock()
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		client, err := s.resolveClient(ctx, tx, req.Client)
		if err != nil {
			return err
		}

		number, err := s.alloc.Resolve(ctx, tx, req.Number, req.IssueDate, excludeID)
		if err != nil {
			return err
		}

		inv.Client = *client
		inv.Number = number
		return tx.SaveInvoice(ctx, inv)
	})
	if err != nil {
		return 0, err
	}
	return inv.ID, nil
}

// resolveClient finds the client by tax id or creates it. A lost race on
// the unique tax id constraint means someone else just created the client;
// re-fetch instead of failing.
func (s *Service) resolveClient(ctx context.Context, tx Store, in ClientInput) (*Client, error) {
	taxID := strings.TrimSpace(in.TaxID)

	client, err := tx.FindClientByTaxID(ctx, taxID)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}

	client = &Client{
		Name:    strings.TrimSpace(in.Name),
		TaxID:   taxID,
		Address: strings.TrimSpace(in.Address),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
	}

	if err := tx.SaveClient(ctx, client); err != nil {
		if errors.Is(err, ErrTaxIDExists) {
			return tx.FindClientByTaxID(ctx, taxID)
		}
		return nil, err
	}
	return client, nil
}

// =============================================================================
// READ
// =============================================================================

// Get returns an invoice by ID.
func (s *Service) Get(ctx context.Context, id InvoiceID) (*Invoice, error) {
	inv, err := s.store.FindInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("invoice %d: %w", id, ErrInvoiceNotFound)
	}
	return inv, nil
}

// GetByPublicToken returns an invoice by its public preview token.
func (s *Service) GetByPublicToken(ctx context.Context, token string) (*Invoice, error) {
	inv, err := s.store.FindInvoiceByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}
	return inv, nil
}

// List returns a page of invoices plus the unpaged total.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Invoice, int, error) {
	return s.store.ListInvoices(ctx, q)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update reconciles the request against the stored invoice and persists the
// result. A blank request number keeps the invoice's assigned number; an
// explicit number renames it after a uniqueness check that excludes the
// invoice itself, so re-sending the current number always succeeds.
func (s *Service) Update(ctx context.Context, id InvoiceID, req Request) (InvoiceID, error) {
	if err := ValidateDates(req.IssueDate, req.DueDate); err != nil {
		return 0, err
	}
	if err := ValidateItems(req.Items); err != nil {
		return 0, err
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		inv, err := tx.FindInvoiceByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return fmt.Errorf("invoice %d: %w", id, ErrInvoiceNotFound)
		}

		client, err := s.resolveClient(ctx, tx, req.Client)
		if err != nil {
			return err
		}

		items, err := ReconcileItems(inv.Items, req.Items)
		if err != nil {
			return err
		}

		net, vat, gross := SumTotals(items)
		if err := ValidateTotals(net, vat, gross); err != nil {
			return err
		}

		// The number is immutable unless the request explicitly renames it.
		number := inv.Number
		if req.Number != "" {
			number, err = s.alloc.Resolve(ctx, tx, req.Number, req.IssueDate, id)
			if err != nil {
				return err
			}
		}

		inv.Number = number
		inv.IssueDate = req.IssueDate
		inv.DueDate = req.DueDate
		inv.Client = *client
		inv.Items = items
		inv.TotalNet = net
		inv.TotalVat = vat
		inv.TotalGross = gross

		return tx.SaveInvoice(ctx, inv)
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("invoice_id", int64(id)).Msg("invoice updated")
	return id, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes the invoice and its owned items.
func (s *Service) Delete(ctx context.Context, id InvoiceID) error {
	err := s.store.WithTx(ctx, func(tx Store) error {
		return tx.DeleteInvoice(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Int64("invoice_id", int64(id)).Msg("invoice deleted")
	return nil
}
