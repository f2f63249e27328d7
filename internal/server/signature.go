package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
)

const (
	SignatureHeader       = "X-Hub-Signature"
	SignatureHeader256    = "X-Hub-Signature-256"
	SignaturePrefixSHA1   = "sha1="
	SignaturePrefixSHA256 = "sha256="
)

// Signature algorithms accepted by Sign
const (
	AlgoSHA1   = "sha1"
	AlgoSHA256 = "sha256"
)

var (
	errUnsupportedAlgo = errors.New("unsupported signature algorithm")

	// ErrSecretMissing means enforcement is on but there is nothing to verify
	// against. Every POST is rejected until a secret is configured.
	ErrSecretMissing = fmt.Errorf("%w: app secret not configured", ErrAuthFailure)

	errMissingSignature = fmt.Errorf("%w: missing signature header", ErrAuthFailure)
)

// SignatureFromRequest returns the signature header value, preferring
// X-Hub-Signature-256 when both are present.
func SignatureFromRequest(r *http.Request) string {
	if sig := r.Header.Get(SignatureHeader256); sig != "" {
		return sig
	}
	return r.Header.Get(SignatureHeader)
}

// VerifySignature verifies a hub signature ("sha1=<hex>" or "sha256=<hex>")
// against the HMAC of the raw payload bytes.
func VerifySignature(payload []byte, signature, secret string) error {
	if secret == "" {
		return ErrSecretMissing
	}

	// Signature must be present
	if signature == "" {
		return errMissingSignature
	}

	if !strings.HasPrefix(signature, SignaturePrefixSHA1) && !strings.HasPrefix(signature, SignaturePrefixSHA256) {
		return fmt.Errorf("%w: %v", ErrAuthFailure, errUnsupportedAlgo)
	}

	// Constant-time comparison happens inside ValidateSignature (hmac.Equal)
	if err := github.ValidateSignature(signature, payload, []byte(secret)); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	return nil
}

// Sign computes the signature header value for payload.
func Sign(payload []byte, secret, algo string) (string, error) {
	var newHash func() hash.Hash
	var prefix string

	switch algo {
	case AlgoSHA1, "":
		newHash, prefix = sha1.New, SignaturePrefixSHA1
	case AlgoSHA256:
		newHash, prefix = sha256.New, SignaturePrefixSHA256
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedAlgo, algo)
	}

	mac := hmac.New(newHash, []byte(secret))
	mac.Write(payload)
	return prefix + hex.EncodeToString(mac.Sum(nil)), nil
}

// SignatureHeaderFor returns the header that carries a signature of algo
func SignatureHeaderFor(algo string) string {
	if algo == AlgoSHA256 {
		return SignatureHeader256
	}
	return SignatureHeader
}
