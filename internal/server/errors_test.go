package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", ErrValidationFailure, http.StatusBadRequest},
		{"auth", ErrAuthFailure, http.StatusUnauthorized},
		{"wrapped auth", fmt.Errorf("%w: bad digest", ErrAuthFailure), http.StatusUnauthorized},
		{"secret missing", ErrSecretMissing, http.StatusUnauthorized},
		{"malformed", ErrMalformedPayload, http.StatusBadRequest},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFor(tc.err); got != tc.expected {
				t.Errorf("StatusFor(%v) = %d, expected %d", tc.err, got, tc.expected)
			}
		})
	}
}
