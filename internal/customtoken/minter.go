// Package customtoken mints the signed custom tokens the chat system's
// sign-in endpoint accepts.
package customtoken

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Audience is the identity toolkit audience custom tokens are minted for.
const Audience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// MaxTTL is the longest lifetime the chat system accepts.
const MaxTTL = time.Hour

const maxUIDLen = 128

var (
	ErrInvalidUID    = errors.New("uid must be 1 to 128 characters")
	ErrMissingSigner = errors.New("service account email and private key are required")
)

// Claims is the payload of a custom token.
type Claims struct {
	UID    string         `json:"uid"`
	Claims map[string]any `json:"claims,omitempty"`
	jwt.RegisteredClaims
}

// Minter signs custom tokens as a service account.
type Minter struct {
	email string
	key   *rsa.PrivateKey
	ttl   time.Duration
	now   func() time.Time
}

// NewMinter creates a Minter. A ttl outside (0, MaxTTL] is clamped to MaxTTL.
func NewMinter(serviceAccountEmail string, key *rsa.PrivateKey, ttl time.Duration) (*Minter, error) {
	if serviceAccountEmail == "" || key == nil {
		return nil, ErrMissingSigner
	}
	if ttl <= 0 || ttl > MaxTTL {
		ttl = MaxTTL
	}
	return &Minter{
		email: serviceAccountEmail,
		key:   key,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// LoadPrivateKey reads a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}

// Mint returns a signed custom token for uid carrying the optional
// developer claims.
func (m *Minter) Mint(uid string, claims map[string]any) (string, error) {
	if uid == "" || len(uid) > maxUIDLen {
		return "", ErrInvalidUID
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		UID:    uid,
		Claims: claims,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.email,
			Subject:   m.email,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("signing custom token: %w", err)
	}
	return signed, nil
}
