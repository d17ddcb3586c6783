package api

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/auth"
)

// AuthHandler exposes the login, federated-login, and registration
// endpoints.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type loginResponse struct {
	JWTToken   string   `json:"jwtToken"`
	UserID     int64    `json:"userId"`
	UserName   string   `json:"userName"`
	ProviderID *int64   `json:"providerId"`
	Roles      []string `json:"roles"`
}

func toLoginResponse(res auth.LoginResult) loginResponse {
	return loginResponse{
		JWTToken:   res.Token,
		UserID:     res.UserID,
		UserName:   res.Username,
		ProviderID: res.ProviderID,
		Roles:      res.Roles,
	}
}

// Login handles POST /api/v1/auth/login. Failures are uniformly 401 with
// no cause in the body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slog.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toLoginResponse(res))
}

// GoogleLogin handles POST /api/v1/auth/google/login.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.GoogleLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.GoogleLogin(r.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidExternalToken) {
			writeError(w, http.StatusUnauthorized, "invalid Google ID token")
			return
		}
		slog.Error("google login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toLoginResponse(res))
}

type registerResponse struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrDuplicateUsername):
			writeError(w, http.StatusConflict, "username already exists")
		default:
			slog.Error("register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "registration unavailable")
		}
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		UserID:   user.ID,
		UserName: user.Username,
	})
}
