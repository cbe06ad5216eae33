package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/warp/rent-ledger/ledger"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/rental"
)

// =============================================================================
// RESPONSES
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: errorCode(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// statusFor maps domain errors to HTTP status codes.
//
//	ledger.ErrInvalidInput, bad request bodies  → 400
//	rental.ErrNotFound                          → 404
//	rental.ErrConflict                          → 409
//	anything else                               → 500
func statusFor(err error) int {
	var badRequest *requestError
	switch {
	case errors.As(err, &badRequest), errors.Is(err, ledger.ErrInvalidInput):
		return http.StatusBadRequest
	case rental.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, rental.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for err and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	log := h.Logger.WithFields(logging.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	}).WithError(err)
	switch {
	case status == http.StatusInternalServerError:
		log.Error(message)
	case rental.IsClientError(err):
		log.Debug(message)
	}
	writeError(w, status, message, err)
}

// =============================================================================
// REQUEST DECODING
// =============================================================================

// requestError wraps malformed or invalid request bodies.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(format string, args ...any) error {
	return &requestError{err: fmt.Errorf(format, args...)}
}

// decode reads a JSON body into dst and runs its validate tags.
func (h *Handler) decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &requestError{err: validationMessage(verrs)}
		}
		return &requestError{err: err}
	}
	return nil
}

func validationMessage(verrs validator.ValidationErrors) error {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
