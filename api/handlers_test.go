/*
handlers_test.go - HTTP-level tests for the invoice API

Exercises the full stack below the router: JSON parsing, the invoice
service, and the in-memory store. Covers the error-to-status mapping
(400 validation, 404 missing, 409 conflicts).
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RoZ0o0/demo/invoice"
	memstore "github.com/RoZ0o0/demo/invoice/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.NewMemory()
	svc := invoice.NewService(store, zerolog.Nop())
	return NewRouter(NewHandler(svc, zerolog.Nop()))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func invoicePayload() map[string]any {
	return map[string]any{
		"issueDate": "2025-10-01",
		"dueDate":   "2025-10-15",
		"client": map[string]any{
			"name": "Acme Sp. z o.o.",
			"nip":  "5213017228",
		},
		"items": []map[string]any{
			{
				"description": "Consulting",
				"quantity":    2,
				"unitPrice":   "100.00",
				"vatRate":     "23",
			},
		},
	}
}

// =============================================================================
// INVOICE ENDPOINTS
// =============================================================================

func TestCreateAndGetInvoice(t *testing.T) {
	// GIVEN: A valid invoice payload
	// WHEN: POSTing it and GETting the created invoice
	// THEN: 201 with id; the invoice carries number, token, and totals as
	//       decimal strings

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	created := decode[IDResponse](t, rec)
	require.NotZero(t, created.ID)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[InvoiceDTO](t, rec)

	assert.Equal(t, "FV/2025/10/01/00001", dto.InvoiceNumber)
	assert.NotEmpty(t, dto.PublicToken)
	assert.Equal(t, "2025-10-01", dto.IssueDate)
	assert.Equal(t, "200.00", dto.TotalNet)
	assert.Equal(t, "46.00", dto.TotalVat)
	assert.Equal(t, "246.00", dto.TotalGross)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, int64(2), dto.Items[0].Quantity)
	assert.Equal(t, "100.00", dto.Items[0].UnitPrice)
	assert.Equal(t, "Acme Sp. z o.o.", dto.Client.Name)
}

func TestCreateInvoice_FractionalQuantityRejected(t *testing.T) {
	router := newTestRouter(t)

	payload := invoicePayload()
	payload["items"].([]map[string]any)[0]["quantity"] = 2.5

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "whole number")
}

func TestCreateInvoice_ValidationErrorsMapTo400(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"issue after due", func(p map[string]any) { p["issueDate"] = "2025-11-01" }},
		{"bad date format", func(p map[string]any) { p["issueDate"] = "01.10.2025" }},
		{"no items", func(p map[string]any) { p["items"] = []map[string]any{} }},
		{"zero quantity", func(p map[string]any) {
			p["items"].([]map[string]any)[0]["quantity"] = 0
		}},
		{"unparseable price", func(p map[string]any) {
			p["items"].([]map[string]any)[0]["unitPrice"] = "abc"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := invoicePayload()
			tt.mutate(payload)

			rec := doJSON(t, router, http.MethodPost, "/api/invoices", payload)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", rec.Body.String())
		})
	}
}

func TestCreateInvoice_DuplicateNumberMapsTo409(t *testing.T) {
	router := newTestRouter(t)

	payload := invoicePayload()
	payload["invoiceNumber"] = "FV/2025/10/01/00042"

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/invoices", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestGetInvoice_MissingMapsTo404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/invoices/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/invoices/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateInvoice_UnknownItemMapsTo404(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[IDResponse](t, rec)

	payload := invoicePayload()
	payload["items"].([]map[string]any)[0]["id"] = 999

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/invoices/%d", created.ID), payload)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateInvoice_RecomputesTotals(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[IDResponse](t, rec)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	before := decode[InvoiceDTO](t, rec)
	require.Len(t, before.Items, 1)

	payload := invoicePayload()
	payload["invoiceNumber"] = before.InvoiceNumber
	payload["items"] = []map[string]any{
		{
			"id":          before.Items[0].ID,
			"description": "Consulting",
			"quantity":    3,
			"unitPrice":   "100.00",
			"vatRate":     "23",
		},
	}

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/invoices/%d", created.ID), payload)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	after := decode[InvoiceDTO](t, rec)
	assert.Equal(t, "300.00", after.TotalNet)
	assert.Equal(t, "369.00", after.TotalGross)
	assert.Equal(t, before.PublicToken, after.PublicToken)
}

func TestDeleteInvoice(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
	created := decode[IDResponse](t, rec)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListInvoices_Paginated(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/invoices?page=0&size=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PaginatedDTO[InvoiceDTO]](t, rec)

	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Content, 2)
	assert.Empty(t, page.Content[0].Items, "list entries omit items")
}

// =============================================================================
// PUBLIC ACCESS
// =============================================================================

func TestPublicInvoiceByToken(t *testing.T) {
	// GIVEN: A created invoice with its public token
	// WHEN: Fetching /api/public/invoices/{token}
	// THEN: The invoice is returned without echoing the token; a wrong
	//       token yields 404

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/invoices", invoicePayload())
	created := decode[IDResponse](t, rec)

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/invoices/%d", created.ID), nil)
	dto := decode[InvoiceDTO](t, rec)
	require.NotEmpty(t, dto.PublicToken)

	rec = doJSON(t, router, http.MethodGet, "/api/public/invoices/"+dto.PublicToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[InvoiceDTO](t, rec)
	assert.Equal(t, dto.InvoiceNumber, public.InvoiceNumber)
	assert.Empty(t, public.PublicToken, "token is not echoed back")
	assert.Len(t, public.Items, 1)

	rec = doJSON(t, router, http.MethodGet, "/api/public/invoices/wrong-token", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// CLIENT ENDPOINTS
// =============================================================================

func TestClientEndpoints(t *testing.T) {
	router := newTestRouter(t)

	client := map[string]any{
		"name":    "Acme Sp. z o.o.",
		"nip":     "5213017228",
		"address": "ul. Prosta 1",
	}

	// create
	rec := doJSON(t, router, http.MethodPost, "/api/clients", client)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	created := decode[IDResponse](t, rec)

	// duplicate tax id
	rec = doJSON(t, router, http.MethodPost, "/api/clients", client)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// missing name
	rec = doJSON(t, router, http.MethodPost, "/api/clients", map[string]any{"nip": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// nip existence check
	rec = doJSON(t, router, http.MethodGet, "/api/clients/nip/5213017228", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[ExistsResponse](t, rec).Exists)

	rec = doJSON(t, router, http.MethodGet, "/api/clients/nip/0000000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[ExistsResponse](t, rec).Exists)

	// update
	client["name"] = "Acme Renamed"
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/clients/%d", created.ID), client)
	require.Equal(t, http.StatusOK, rec.Code)

	// update of a missing client
	rec = doJSON(t, router, http.MethodPut, "/api/clients/999", client)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// list
	rec = doJSON(t, router, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[PaginatedDTO[ClientDTO]](t, rec)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Acme Renamed", page.Content[0].Name)
}
