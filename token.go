package accounts

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// tokenBytes gives 128 bits of entropy, enough that guessing a live token is
// not feasible within its usable window.
const tokenBytes = 16

// TokenGenerator produces opaque single use tokens for the verification and
// reset flows.
type TokenGenerator interface {
	Generate() (string, error)
}

// RandomTokenGenerator reads crypto/rand and hex encodes the result.
type RandomTokenGenerator struct{}

// NewTokenGenerator returns the default generator.
func NewTokenGenerator() RandomTokenGenerator {
	return RandomTokenGenerator{}
}

// Generate returns a fresh hex encoded token.
func (RandomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate token")
	}
	return hex.EncodeToString(buf), nil
}
