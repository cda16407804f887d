package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/auth-service/internal/config"
)

// Verifier compares a supplied secret against the stored one.
type Verifier interface {
	Verify(supplied, stored string) bool
}

// PlaintextVerifier compares secrets with literal string equality.
// The comparison is not constant time and the store keeps plaintext; it exists
// for parity with legacy credential tables. Prefer BcryptVerifier.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(supplied, stored string) bool {
	return supplied == stored
}

// BcryptVerifier treats the stored secret as a bcrypt hash.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(supplied, stored string) bool {
	return ComparePassword(stored, supplied) == nil
}

// NewVerifier returns the verifier for a configured password scheme.
func NewVerifier(scheme string) (Verifier, error) {
	switch scheme {
	case config.SchemePlaintext:
		return PlaintextVerifier{}, nil
	case config.SchemeBcrypt:
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// StoredSecret converts a plaintext secret into its stored form for scheme.
func StoredSecret(scheme, plain string, cost int) (string, error) {
	if scheme == config.SchemeBcrypt {
		return HashPassword(plain, cost)
	}
	return plain, nil
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
