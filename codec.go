package accounts

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoEmptyString is returned when encoding an empty secret.
var ErrNoEmptyString = errors.New("value should not be an empty string")

// ErrSecretMismatch is returned when a candidate secret does not match the
// stored form.
var ErrSecretMismatch = errors.New("secret does not match stored value")

// SecretCodec transforms a secret into its stored form and compares candidate
// secrets against it. The stored form is never decoded; login and reset only
// ever compare.
type SecretCodec interface {
	Encode(secret string) (string, error)
	Compare(secret, stored string) error
}

// BcryptCodec stores a salted one way bcrypt hash. Comparison happens at the
// codec boundary, so the lifecycle handlers are unaffected by the hash not
// being deterministic.
type BcryptCodec struct {
	// Cost defaults to bcrypt.DefaultCost when zero.
	Cost int
}

// Encode will generate the stored form of a secret
func (c BcryptCodec) Encode(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoEmptyString
	}

	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return string(h), err
}

// Compare will validate the given cleartext secret matches the stored form
func (c BcryptCodec) Compare(secret, stored string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrSecretMismatch
		}
		return err
	}
	return nil
}
