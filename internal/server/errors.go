package server

import (
	"errors"
	"net/http"
)

// Request failures, mapped to status codes at the request boundary
var (
	ErrValidationFailure = errors.New("verification failed")
	ErrAuthFailure       = errors.New("signature validation failed")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrPayloadTooLarge   = errors.New("payload too large")
	ErrNotFound          = errors.New("not found")
	ErrInternal          = errors.New("internal failure")
)

// StatusFor returns the HTTP status for an error from the taxonomy.
// Unknown errors are internal failures.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidationFailure), errors.Is(err, ErrMalformedPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
