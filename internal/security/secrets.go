package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

const (
	// MinSecretLength matches the length of a Meta app secret (32 hex characters).
	MinSecretLength = 32

	// MinEntropy is the Shannon entropy below which a secret is considered weak.
	MinEntropy = 2.5

	// DefaultVerifyToken is the verify token used when none is configured.
	DefaultVerifyToken = "token"
)

var placeholderValues = map[string]bool{
	"missing-app-secret":  true,
	"replace-with-secret": true,
	"app-secret":          true,
	"topsecret":           true,
	"secret":              true,
	"password":            true,
	"changeme":            true,
	"token":               true,
	"verify-token":        true,
}

// IsPlaceholder reports whether a value looks like a copied example
// rather than a real secret or token.
func IsPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if placeholderValues[lower] {
		return true
	}
	return strings.Contains(lower, "replace") || strings.Contains(lower, "changeme")
}

// IsWeakSecret performs a quick check if a secret is obviously weak.
// It is used for startup warnings and never fails validation on its own.
func IsWeakSecret(secret string) bool {
	if len(secret) < MinSecretLength {
		return true
	}

	// All same character
	if len(strings.Trim(secret, string(secret[0]))) == 0 {
		return true
	}

	if isSequential(secret) {
		return true
	}

	if IsPlaceholder(secret) {
		return true
	}

	return calculateEntropy(secret) < MinEntropy
}

// GenerateToken creates a cryptographically secure random token suitable for
// use as a verify token or app secret. n is the number of random bytes; the
// result is URL-safe base64 without padding.
func GenerateToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", n)
	}
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// Mask hides all but the first two characters of a value for logging.
// Values of four characters or fewer are fully masked.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return value[:2] + strings.Repeat("*", len(value)-2)
}

// calculateEntropy computes the Shannon entropy of a string.
// Returns a value between 0 (completely predictable) and ~8 (maximum entropy for byte strings).
func calculateEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	freq := make(map[rune]int)
	for _, c := range s {
		freq[c]++
	}

	// H = -Σ(p(x) * log2(p(x)))
	var entropy float64
	length := float64(len(s))

	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// isSequential checks if a string consists of sequential characters.
func isSequential(s string) bool {
	if len(s) < 4 {
		return false
	}

	sequential := 0
	for i := 1; i < len(s); i++ {
		if s[i] == s[i-1]+1 || s[i] == s[i-1]-1 {
			sequential++
		}
	}

	// more than 70% sequential
	return float64(sequential) > float64(len(s))*0.7
}
