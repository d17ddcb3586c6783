// Package googleid verifies Google ID tokens against Google's published
// signing keys and a configured OAuth client ID (the audience).
package googleid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// CertsURL is Google's JWKS endpoint for ID-token signing keys.
const CertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// ErrInvalidToken signals an ID token that failed verification: bad
// signature, wrong audience or issuer, or expired.
var ErrInvalidToken = errors.New("googleid: invalid token")

// Claims are the verified claims extracted from a Google ID token.
type Claims struct {
	// Subject is Google's stable unique ID for the account.
	Subject string
	// Email is the verified email address, used as the canonical username.
	Email string
	// Name is the display name, when present.
	Name string
}

// Verifier validates Google ID tokens. Signing keys are fetched lazily
// from the JWKS endpoint and cached; an unknown key ID triggers a refetch,
// which covers Google's key rotation.
type Verifier struct {
	audience string
	certsURL string
	client   *http.Client
	parser   *jwt.Parser

	mu   sync.RWMutex
	keys *jose.JSONWebKeySet
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithCertsURL overrides the JWKS endpoint, used in tests.
func WithCertsURL(url string) Option {
	return func(v *Verifier) { v.certsURL = url }
}

// WithHTTPClient overrides the HTTP client used for key fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// NewVerifier creates a Verifier for tokens issued to the given OAuth
// client ID.
func NewVerifier(clientID string, opts ...Option) *Verifier {
	v := &Verifier{
		audience: clientID,
		certsURL: CertsURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(clientID),
			jwt.WithExpirationRequired(),
		),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Verify checks the token's signature, audience, issuer, and expiry, and
// returns the verified claims.
func (v *Verifier) Verify(ctx context.Context, idToken string) (Claims, error) {
	claims := &idTokenClaims{}
	token, err := v.parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("googleid: token has no kid header")
		}
		return v.signingKey(ctx, kid)
	})
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if iss := claims.Issuer; iss != "accounts.google.com" && iss != "https://accounts.google.com" {
		return Claims{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, iss)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return Claims{}, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	return Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// signingKey returns the public key for the key ID, refetching the key set
// when the kid is not cached.
func (v *Verifier) signingKey(ctx context.Context, kid string) (any, error) {
	v.mu.RLock()
	cached := v.keys
	v.mu.RUnlock()

	if cached != nil {
		if matches := cached.Key(kid); len(matches) > 0 {
			return matches[0].Key, nil
		}
	}

	fresh, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.keys = fresh
	v.mu.Unlock()

	if matches := fresh.Key(kid); len(matches) > 0 {
		return matches[0].Key, nil
	}
	return nil, fmt.Errorf("googleid: no signing key for kid %q", kid)
}

func (v *Verifier) fetchKeys(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("googleid: build certs request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googleid: fetch certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("googleid: certs endpoint returned %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("googleid: decode certs: %w", err)
	}
	return &set, nil
}
