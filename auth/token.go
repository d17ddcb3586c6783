package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenMalformed signals a token whose structure or signature does not
// verify against the current signing key.
var ErrTokenMalformed = errors.New("auth: malformed token")

// TokenService issues and validates the signed bearer tokens used by the
// API. Tokens carry only subject, issued-at, and expiry; authorities are
// re-resolved from the store on every request.
type TokenService struct {
	key      []byte
	lifetime time.Duration
	parser   *jwt.Parser
	now      func() time.Time
}

// NewTokenService creates a TokenService signing with the given HMAC key.
// A non-positive lifetime falls back to one hour.
func NewTokenService(key []byte, lifetime time.Duration) *TokenService {
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &TokenService{
		key:      key,
		lifetime: lifetime,
		// Expiry is checked separately so that subject extraction and
		// freshness remain independent decisions.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

// Issue builds and signs a token for the subject with the configured
// lifetime.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ExtractSubject parses the token, verifies its signature, and returns the
// subject claim. Expiry is not considered here.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrTokenMalformed
	}
	return claims.Subject, nil
}

// IsExpired reports whether the token's embedded expiry is in the past. A
// token without an expiry claim is treated as expired.
func (s *TokenService) IsExpired(tokenString string) (bool, error) {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return true, nil
	}
	return !claims.ExpiresAt.After(s.now()), nil
}

// Validate reports whether the token is acceptable for the expected
// subject: the signature must verify, the subject must match, and the
// expiry must be in the future. This is the sole accept/reject authority;
// there is no revocation list.
func (s *TokenService) Validate(tokenString, expectedSubject string) bool {
	claims, err := s.parseClaims(tokenString)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.After(s.now())
}

func (s *TokenService) parseClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
