package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CodeTenantSuspended is the 403 body code for a suspended condominium.
const CodeTenantSuspended = "CONDOMINIUM_SUSPENDED"

const defaultSuspendedNotice = "Condominio suspenso. Regularize sua situacao para acessar."

var (
	ErrTenantSuspended = errors.New("gateway: condominium suspended")
	ErrNoRefreshToken  = errors.New("gateway: no refresh token")
	ErrRefreshFailed   = errors.New("gateway: token refresh failed")
)

// FieldError is a per-field validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Envelope is the response wrapper used by every endpoint.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message,omitempty"`
	ErrorCode string          `json:"errorCode,omitempty"`
	Code      string          `json:"code,omitempty"`
	Errors    []FieldError    `json:"errors,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// APIError is a non-2xx or unsuccessful response.
type APIError struct {
	Status    int
	Message   string
	ErrorCode string
	Code      string
	Errors    []FieldError
	Method    string
	Path      string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s %s: %d %s (%s)", e.Method, e.Path, e.Status, msg, e.ErrorCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Suspended reports whether e carries the suspended-condominium signal.
func (e *APIError) Suspended() bool {
	return e.Status == http.StatusForbidden && e.Code == CodeTenantSuspended
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
