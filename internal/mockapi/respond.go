package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/CjlConsultoria/convivium2/internal/api"
	"github.com/CjlConsultoria/convivium2/internal/audit"
	"github.com/CjlConsultoria/convivium2/internal/gateway"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

type envelope struct {
	Success   bool                 `json:"success"`
	Data      any                  `json:"data,omitempty"`
	Message   string               `json:"message,omitempty"`
	ErrorCode string               `json:"errorCode,omitempty"`
	Code      string               `json:"code,omitempty"`
	Errors    []gateway.FieldError `json:"errors,omitempty"`
	RequestID string               `json:"requestId,omitempty"`
	Timestamp string               `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, envelope{Success: true, Data: data, Timestamp: stamp()})
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg, errorCode string) {
	writeJSON(w, code, envelope{
		Message:   msg,
		ErrorCode: errorCode,
		RequestID: audit.RequestIDFromContext(r.Context()),
		Timestamp: stamp(),
	})
}

func writeFieldErrors(w http.ResponseWriter, r *http.Request, errs []gateway.FieldError) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Message:   "Dados inválidos",
		ErrorCode: "VALIDATION_ERROR",
		Errors:    errs,
		RequestID: audit.RequestIDFromContext(r.Context()),
		Timestamp: stamp(),
	})
}

func writeSuspended(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, envelope{
		Message:   "Condominio suspenso. Regularize sua situacao para acessar.",
		Code:      gateway.CodeTenantSuspended,
		Timestamp: stamp(),
	})
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// paginate slices items per the page and size query parameters.
func paginate[T any](r *http.Request, items []T) api.Page[T] {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 20
	}
	total := len(items)
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	pages := (total + size - 1) / size
	return api.Page[T]{
		Content:       append([]T{}, items[start:end]...),
		Page:          page,
		Size:          size,
		TotalElements: int64(total),
		TotalPages:    pages,
		Last:          page >= pages-1,
	}
}
