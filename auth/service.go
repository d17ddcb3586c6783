package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"storefront/googleid"
)

var (
	// ErrInvalidCredentials signals wrong username or password. It is
	// deliberately uniform: callers must not learn whether the username
	// exists.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidExternalToken signals a Google ID token that failed
	// verification.
	ErrInvalidExternalToken = errors.New("auth: invalid external token")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
)

// IdentityVerifier validates a third-party identity token and returns its
// verified claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (googleid.Claims, error)
}

// Service handles authentication business logic for both the local and the
// federated login path.
type Service struct {
	repo     Repository
	tokens   *TokenService
	verifier IdentityVerifier
}

// NewService creates a new authentication service. The verifier may be nil
// when federated login is not configured.
func NewService(repo Repository, tokens *TokenService, verifier IdentityVerifier) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		verifier: verifier,
	}
}

// Register creates a new local user account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("auth: username is required")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Create(ctx, CreateUserParams{
		Username:     req.Username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates local credentials and issues a bearer token. Unknown
// usernames and wrong passwords produce the same outcome.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !CheckPassword(req.Password, user.PasswordHash) {
		return LoginResult{}, ErrInvalidCredentials
	}

	return s.issueFor(user)
}

// GoogleLogin verifies a Google ID token, provisions a principal for the
// verified email on first login, and issues a bearer token. The provisioned
// account gets a random password hash so it cannot be used on the local
// path.
func (s *Service) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (LoginResult, error) {
	if s.verifier == nil {
		return LoginResult{}, fmt.Errorf("auth: federated login not configured")
	}

	claims, err := s.verifier.Verify(ctx, req.IDToken)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidExternalToken, err)
	}

	sentinel, err := randomPasswordHash()
	if err != nil {
		return LoginResult{}, err
	}

	// Create-if-absent: a concurrent first login for the same email loses
	// the insert on the uniqueness constraint and continues with the
	// existing row.
	user, _, err := s.repo.CreateIfAbsent(ctx, CreateUserParams{
		Username:     claims.Email,
		PasswordHash: sentinel,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return s.issueFor(user)
}

// LoadPrincipal resolves a token subject to its current principal,
// including the freshly loaded role set.
func (s *Service) LoadPrincipal(ctx context.Context, username string) (User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) issueFor(user User) (LoginResult, error) {
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: issue token: %w", err)
	}

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}

	return LoginResult{
		Token:      token,
		UserID:     user.ID,
		Username:   user.Username,
		ProviderID: user.ProviderID,
		Roles:      roles,
	}, nil
}

func randomPasswordHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generate sentinel password: %w", err)
	}
	return HashPassword(base64.RawURLEncoding.EncodeToString(b))
}
