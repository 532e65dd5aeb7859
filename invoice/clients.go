/*
clients.go - Client management operations

PURPOSE:
  Standalone client CRUD used by the client endpoints. Invoice creation
  resolves clients through find-or-create (see service.go); these
  operations exist for managing clients directly.

  The tax id is the unique business key. Creating a client with a taken
  tax id fails with ErrTaxIDExists; updating an existing client may
  change its fields, including the tax id, as an explicit user action.
*/
package invoice

import (
	"context"
	"fmt"
	"strings"
)

// CreateClient registers a new client. The tax id must not be taken.
func (s *Service) CreateClient(ctx context.Context, in ClientInput) (ClientID, error) {
	taxID := strings.TrimSpace(in.TaxID)

	var id ClientID
	err := s.store.WithTx(ctx, func(tx Store) error {
		exists, err := tx.ClientTaxIDExists(ctx, taxID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("tax id %q: %w", taxID, ErrTaxIDExists)
		}

		client := &Client{
			Name:    strings.TrimSpace(in.Name),
			TaxID:   taxID,
			Address: strings.TrimSpace(in.Address),
			Email:   strings.TrimSpace(in.Email),
			Phone:   strings.TrimSpace(in.Phone),
		}
		if err := tx.SaveClient(ctx, client); err != nil {
			return err
		}
		id = client.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("client_id", int64(id)).Msg("client created")
	return id, nil
}

// UpdateClient replaces a client's fields.
func (s *Service) UpdateClient(ctx context.Context, id ClientID, in ClientInput) (ClientID, error) {
	err := s.store.WithTx(ctx, func(tx Store) error {
		client, err := tx.FindClientByID(ctx, id)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("client %d: %w", id, ErrClientNotFound)
		}

		client.Name = strings.TrimSpace(in.Name)
		client.TaxID = strings.TrimSpace(in.TaxID)
		client.Address = strings.TrimSpace(in.Address)
		client.Email = strings.TrimSpace(in.Email)
		client.Phone = strings.TrimSpace(in.Phone)

		return tx.SaveClient(ctx, client)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// TaxIDExists reports whether a client with the tax id is registered.
func (s *Service) TaxIDExists(ctx context.Context, taxID string) (bool, error) {
	return s.store.ClientTaxIDExists(ctx, strings.TrimSpace(taxID))
}

// ListClients returns a page of clients plus the unpaged total.
func (s *Service) ListClients(ctx context.Context, q ListQuery) ([]Client, int, error) {
	return s.store.ListClients(ctx, q)
}
