package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/notedocs/internal/domain"
	"github.com/MrSnakeDoc/notedocs/internal/httpserver/deps"
	"github.com/MrSnakeDoc/notedocs/internal/logger"
	"github.com/MrSnakeDoc/notedocs/internal/service"
)

const maxBodyBytes = 1 << 20

// ─────────────────────────────────────────────────────────────
// Envelopes
// ─────────────────────────────────────────────────────────────

type listResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
}

// windowResponse is the limit/offset flavour used by documents and categories.
type windowResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
}

type successResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Detail    any    `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, d deps.Deps, status int, msg string, data any) {
	writeJSON(w, status, successResponse{
		Success:   true,
		Message:   msg,
		Data:      data,
		Timestamp: d.Now().Format(time.RFC3339),
	})
}

// writeError maps domain errors to a status and logs anything unexpected.
func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"
	var detail any

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		msg = "validation failed"
		detail = verr.Fields
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		msg = err.Error()
	default:
		d.Logger.Error("request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("request_id", middleware.GetReqID(r.Context())),
			logger.Error(err))
	}

	writeJSON(w, status, errorResponse{
		Success:   false,
		Error:     msg,
		Timestamp: d.Now().Format(time.RFC3339),
		Detail:    detail,
	})
}

// ─────────────────────────────────────────────────────────────
// Request parsing
// ─────────────────────────────────────────────────────────────

// badRequest reports a malformed body, query or path. It matches
// domain.ErrValidation without carrying per-field detail, so it maps to 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// decodeBody reads a JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// queryInt reads an integer query parameter. Missing or malformed values
// fall back to def; paging is clamped later, never rejected.
func queryInt(r *http.Request, name string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// queryInt64 is strict: a malformed value is reported, not defaulted.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("query parameter %s must be an integer", name)
	}
	return n, nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || n <= 0 {
		return 0, badRequest("path parameter %s must be a positive integer", name)
	}
	return n, nil
}

func window(r *http.Request) service.Window {
	return service.Window{
		Limit:  queryInt(r, "limit", service.DefaultLimit),
		Offset: queryInt(r, "offset", 0),
	}.Normalize()
}
