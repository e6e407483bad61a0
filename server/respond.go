package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antmrlt/API64/core"
)

// ResponseError is the JSON body of every failed request.
type ResponseError struct {
	Code        int    `json:"code"`
	Error       string `json:"error"`
	Description string `json:"description"`
}

const internalErrorMessage = "internal server error"

func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, core.ErrStorage), errors.Is(err, core.ErrDigest):
		return http.StatusInternalServerError
	case errors.Is(err, core.ErrAuth):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation),
		errors.Is(err, core.ErrDecode),
		errors.Is(err, core.ErrInvalidName):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorMessage returns the text shown to the caller. Only caller faults are
// described; everything else collapses into a generic message.
func errorMessage(code int, err error) string {
	switch {
	case code == http.StatusForbidden:
		return "Invalid API key"
	case code >= http.StatusInternalServerError:
		return internalErrorMessage
	}
	return err.Error()
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatusCode(err)
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(code)
		return
	}
	respondJSON(w, code, ResponseError{
		Code:        code,
		Error:       errorMessage(code, err),
		Description: http.StatusText(code),
	})
}

func respondStatus(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, ResponseError{
		Code:        code,
		Error:       msg,
		Description: http.StatusText(code),
	})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
