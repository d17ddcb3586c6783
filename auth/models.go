package auth

import "time"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the domain representation of a principal. It mirrors the app_user
// table and carries no JSON annotations so it can be reused by different
// presentation layers.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Roles        []string
	// ProviderID links the user to a seller account, when one exists.
	ProviderID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasRole reports whether the user carries the named role. Role names are
// matched case-sensitively.
func (u User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// RegisterRequest contains user registration data supplied by callers.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest contains user login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries the raw Google ID token from the frontend.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// LoginResult is the canonical successful-login payload for both the local
// and the federated path.
type LoginResult struct {
	Token      string
	UserID     int64
	Username   string
	ProviderID *int64
	Roles      []string
}
