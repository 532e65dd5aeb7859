/*
handlers.go - HTTP handlers for the invoice service

PURPOSE:
  Exposes the invoice lifecycle via REST. Handles HTTP request/response,
  JSON serialization, and delegates to the invoice service.

ENDPOINTS:
  Invoices:
    POST   /api/invoices                  Create invoice
    GET    /api/invoices                  Paginated list (page, size, search)
    GET    /api/invoices/{id}             Get invoice with items
    PUT    /api/invoices/{id}             Update invoice
    DELETE /api/invoices/{id}             Delete invoice with items
    GET    /api/public/invoices/{token}   Public preview by token

  Clients:
    POST   /api/clients                   Create client
    PUT    /api/clients/{id}              Update client
    GET    /api/clients                   Paginated list (page, size, search)
    GET    /api/clients/nip/{nip}         Tax id existence check

ERROR HANDLING:
  Errors are returned as {"error": "..."} JSON with HTTP status:
  - 400: Validation errors, malformed payloads
  - 404: Invoice/client/item not found
  - 409: Duplicate invoice number or tax id
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/RoZ0o0/demo/invoice"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *invoice.Service
	log     zerolog.Logger
}

// NewHandler creates a new handler backed by the invoice service.
func NewHandler(svc *invoice.Service, log zerolog.Logger) *Handler {
	return &Handler{Service: svc, log: log}
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// CreateInvoice creates a new invoice.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var body InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := toRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IDResponse{ID: int64(id)})
}

// GetInvoice returns a single invoice with its items.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice id", err)
		return
	}

	inv, err := h.Service.Get(r.Context(), invoice.InvoiceID(id))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvoiceDTO(inv, true))
}

// GetInvoiceByToken returns an invoice by its public preview token.
// The token is the only credential; no authentication applies here.
func (h *Handler) GetInvoiceByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	inv, err := h.Service.GetByPublicToken(r.Context(), token)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dto := toInvoiceDTO(inv, true)
	dto.PublicToken = "" // do not echo the credential back
	writeJSON(w, http.StatusOK, dto)
}

// ListInvoices returns a paginated invoice list.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r)

	invoices, total, err := h.Service.List(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = toInvoiceDTO(&invoices[i], false)
	}
	writeJSON(w, http.StatusOK, PaginatedDTO[InvoiceDTO]{
		Content: dtos, Page: q.Page, Size: q.Size, Total: total,
	})
}

// UpdateInvoice reconciles an update payload against a stored invoice.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice id", err)
		return
	}

	var body InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := toRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	updatedID, err := h.Service.Update(r.Context(), invoice.InvoiceID(id), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IDResponse{ID: int64(updatedID)})
}

// DeleteInvoice removes an invoice and its items.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid invoice id", err)
		return
	}

	if err := h.Service.Delete(r.Context(), invoice.InvoiceID(id)); err != nil {
		h.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// CreateClient registers a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateClientRequest(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	id, err := h.Service.CreateClient(r.Context(), toClientInput(body))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, IDResponse{ID: int64(id)})
}

// UpdateClient replaces a client's fields.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid client id", err)
		return
	}

	var body ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validateClientRequest(body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	updatedID, err := h.Service.UpdateClient(r.Context(), invoice.ClientID(id), toClientInput(body))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, IDResponse{ID: int64(updatedID)})
}

// ListClients returns a paginated client list.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	q := listQuery(r)

	clients, total, err := h.Service.ListClients(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, PaginatedDTO[ClientDTO]{
		Content: dtos, Page: q.Page, Size: q.Size, Total: total,
	})
}

// CheckNipExists reports whether a client with the tax id is registered.
func (h *Handler) CheckNipExists(w http.ResponseWriter, r *http.Request) {
	nip := chi.URLParam(r, "nip")

	exists, err := h.Service.TaxIDExists(r.Context(), nip)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check tax id", err)
		return
	}

	writeJSON(w, http.StatusOK, ExistsResponse{Exists: exists})
}

// =============================================================================
// CONVERSION
// =============================================================================

// toRequest converts the wire payload into a domain request. Shape problems
// (unparseable numbers, fractional quantity) are reported here; business
// rules are the validator's job.
func toRequest(body InvoiceRequest) (invoice.Request, error) {
	issueDate, err := invoice.ParseDate(body.IssueDate)
	if err != nil {
		return invoice.Request{}, err
	}
	dueDate, err := invoice.ParseDate(body.DueDate)
	if err != nil {
		return invoice.Request{}, err
	}

	items := make([]invoice.ItemInput, len(body.Items))
	for i, it := range body.Items {
		qty, err := it.Quantity.Int64()
		if err != nil {
			return invoice.Request{}, &invoice.InvalidItemError{
				Index: i, Reason: "quantity must be a whole number",
			}
		}
		unitPrice, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return invoice.Request{}, &invoice.InvalidItemError{
				Index: i, Reason: "invalid unit price",
			}
		}
		vatRate, err := decimal.NewFromString(it.VatRate)
		if err != nil {
			return invoice.Request{}, &invoice.InvalidItemError{
				Index: i, Reason: "invalid vat rate",
			}
		}

		items[i] = invoice.ItemInput{
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   unitPrice,
			VatRate:     vatRate,
		}
		if it.ID != nil {
			items[i].ID = invoice.ItemID(*it.ID)
		}
	}

	return invoice.Request{
		Number:    body.InvoiceNumber,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Client:    toClientInput(body.Client),
		Items:     items,
	}, nil
}

func toClientInput(body ClientRequest) invoice.ClientInput {
	return invoice.ClientInput{
		Name:    body.Name,
		TaxID:   body.Nip,
		Address: body.Address,
		Email:   body.Email,
		Phone:   body.Phone,
	}
}

func validateClientRequest(body ClientRequest) error {
	if body.Name == "" {
		return errors.New("client name is required")
	}
	if body.Nip == "" {
		return errors.New("client nip is required")
	}
	return nil
}

func toClientDTO(c invoice.Client) ClientDTO {
	dto := ClientDTO{
		ID:      int64(c.ID),
		Name:    c.Name,
		Nip:     c.TaxID,
		Address: c.Address,
		Email:   c.Email,
		Phone:   c.Phone,
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return dto
}

func toInvoiceDTO(inv *invoice.Invoice, withItems bool) InvoiceDTO {
	dto := InvoiceDTO{
		ID:            int64(inv.ID),
		InvoiceNumber: inv.Number,
		PublicToken:   inv.PublicToken,
		IssueDate:     inv.IssueDate.String(),
		DueDate:       inv.DueDate.String(),
		Client:        toClientDTO(inv.Client),
		TotalNet:      inv.TotalNet.StringFixed(2),
		TotalVat:      inv.TotalVat.StringFixed(2),
		TotalGross:    inv.TotalGross.StringFixed(2),
	}
	if !inv.CreatedAt.IsZero() {
		dto.CreatedAt = inv.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	if withItems {
		dto.Items = make([]ItemDTO, len(inv.Items))
		for i, it := range inv.Items {
			dto.Items[i] = ItemDTO{
				ID:          int64(it.ID),
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice.StringFixed(2),
				VatRate:     it.VatRate.String(),
				NetValue:    it.Net.StringFixed(2),
				VatValue:    it.Vat.StringFixed(2),
				GrossValue:  it.Gross.StringFixed(2),
			}
		}
	}
	return dto
}

// =============================================================================
// HTTP PLUMBING
// =============================================================================

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func listQuery(r *http.Request) invoice.ListQuery {
	q := invoice.ListQuery{Page: 0, Size: 20, Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			q.Page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Size = n
		}
	}
	return q
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case invoice.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), err)
	case invoice.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), err)
	case invoice.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), err)
	default:
		h.log.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, _ error) {
	writeJSON(w, status, map[string]string{"error": message})
}
