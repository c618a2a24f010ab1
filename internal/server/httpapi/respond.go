package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/dadkeeper/internal/common"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// mapError turns a service error into status, code and client-safe message.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case common.IsUnauthenticated(err):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "CONFLICT", "resource already exists"
	case errors.Is(err, common.ErrorRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, try again later"
	case errors.Is(err, common.ErrorDependencyUnavailable):
		return http.StatusBadGateway, "UPSTREAM_ERROR", "upstream service unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, _ := mapError(err)
	if status >= http.StatusInternalServerError || status == http.StatusBadGateway {
		h.logger.Error(r.Context(), "request failed", "code", code, "error", err, "request_id", requestIDFromContext(r.Context()))
	}
	writeMappedError(w, err)
}

// writeMappedError writes the response mapError chooses for err.
func writeMappedError(w http.ResponseWriter, err error) {
	status, code, msg := mapError(err)
	writeError(w, status, code, msg)
}

// decodeJSON reads a JSON body into v. Malformed input is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", common.ErrorValidation)
		}
		return fmt.Errorf("%w: invalid json body", common.ErrorValidation)
	}
	return nil
}
