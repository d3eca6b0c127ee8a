// ABOUTME: Extraction request/response shapes and user-facing status strings
// ABOUTME: Shared by the service, CLI, TUI, web and MCP surfaces
package models

import (
	"context"
	"errors"
)

// ExtractMessageType is the fixed discriminant of an extraction request.
const ExtractMessageType = "EXTRACT_DATA"

// Status strings shown verbatim to users.
const (
	StatusIdle            = "Idle"
	StatusRequesting      = "Requesting extraction..."
	StatusNotReachable    = "Error: Content script not reachable. Refresh the page?"
	StatusExtractionError = "Extraction error."
	StatusNoResponse      = "Extraction failed or returned no response."
	StatusStorageError    = "Error: storage operation failed."
	StatusWiped           = "Storage wiped."
)

// ErrInvalidRequest is returned for requests without the extraction discriminant.
var ErrInvalidRequest = errors.New("invalid extraction request")

// Page is one fetched, rendered document.
type Page struct {
	URL  string
	HTML string
}

// PageSource produces the rendered HTML of one page.
type PageSource interface {
	Fetch(ctx context.Context) (*Page, error)
	Describe() string
}

type ExtractRequest struct {
	Type      string     `json:"type"`
	RequestID string     `json:"requestId,omitempty"`
	Source    PageSource `json:"-"`
}

// Validate checks the discriminant.
func (r ExtractRequest) Validate() error {
	if r.Type != ExtractMessageType {
		return ErrInvalidRequest
	}
	return nil
}

type ExtractResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}
