/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

MONEY AND DATES:
  Monetary fields travel as decimal strings ("123.45"), never as JSON
  floats. Dates travel as YYYY-MM-DD strings. Quantity is decoded via
  json.Number so a fractional quantity is rejected instead of silently
  truncated.

SEE ALSO:
  - handlers.go: Parsing and conversion to invoice.Request
*/
package api

import "encoding/json"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ClientRequest carries client fields inside invoice payloads and the
// client endpoints.
type ClientRequest struct {
	Name    string `json:"name"`
	Nip     string `json:"nip"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// ItemRequest is one item entry. ID is present on the update path when the
// entry refers to an existing item.
type ItemRequest struct {
	ID          *int64      `json:"id,omitempty"`
	Description string      `json:"description"`
	Quantity    json.Number `json:"quantity"`
	UnitPrice   string      `json:"unitPrice"`
	VatRate     string      `json:"vatRate"`
}

// InvoiceRequest is the create/update payload. A blank invoiceNumber asks
// the server to generate the next sequential number for the issue date.
type InvoiceRequest struct {
	InvoiceNumber string        `json:"invoiceNumber,omitempty"`
	IssueDate     string        `json:"issueDate"`
	DueDate       string        `json:"dueDate"`
	Client        ClientRequest `json:"client"`
	Items         []ItemRequest `json:"items"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ClientDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Nip       string `json:"nip"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type ItemDTO struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	VatRate     string `json:"vatRate"`
	NetValue    string `json:"netValue"`
	VatValue    string `json:"vatValue"`
	GrossValue  string `json:"grossValue"`
}

type InvoiceDTO struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	PublicToken   string    `json:"publicToken,omitempty"`
	IssueDate     string    `json:"issueDate"`
	DueDate       string    `json:"dueDate"`
	Client        ClientDTO `json:"client"`
	Items         []ItemDTO `json:"items,omitempty"`
	TotalNet      string    `json:"totalNet"`
	TotalVat      string    `json:"totalVat"`
	TotalGross    string    `json:"totalGross"`
	CreatedAt     string    `json:"createdAt,omitempty"`
}

// PaginatedDTO wraps a page of results with the unpaged total.
type PaginatedDTO[T any] struct {
	Content []T `json:"content"`
	Page    int `json:"page"`
	Size    int `json:"size"`
	Total   int `json:"total"`
}

// IDResponse is returned from create/update operations.
type IDResponse struct {
	ID int64 `json:"id"`
}

// ExistsResponse is returned from the tax id check endpoint.
type ExistsResponse struct {
	Exists bool `json:"exists"`
}
