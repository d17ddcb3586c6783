package api

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/provider"
	"storefront/storage"
)

// ProviderHandler exposes the provider CRUD and image endpoints.
type ProviderHandler struct {
	svc   *provider.Service
	files *storage.FileStore
}

// NewProviderHandler creates a ProviderHandler.
func NewProviderHandler(svc *provider.Service, files *storage.FileStore) *ProviderHandler {
	return &ProviderHandler{svc: svc, files: files}
}

type providerRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ProfileImageURL *string `json:"profileImageUrl"`
	UserID          int64   `json:"userId"`
}

type providerResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ProfileImageURL *string `json:"profileImageUrl"`
	UserID          int64   `json:"userId"`
}

func toProviderResponse(p provider.Provider) providerResponse {
	return providerResponse{
		ID:              p.ID,
		Name:            p.Name,
		Email:           p.Email,
		Phone:           p.Phone,
		ProfileImageURL: p.ProfileImageURL,
		UserID:          p.UserID,
	}
}

func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list providers", "error", err)
		writeError(w, http.StatusInternalServerError, "providers unavailable")
		return
	}

	out := make([]providerResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, toProviderResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "provider not found")
			return
		}
		slog.Error("get provider", "error", err)
		writeError(w, http.StatusInternalServerError, "providers unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toProviderResponse(p))
}

func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req providerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), provider.CreateParams{
		UserID: req.UserID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
	})
	if err != nil {
		if errors.Is(err, provider.ErrUserMissing) {
			writeError(w, http.StatusBadRequest, "user not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toProviderResponse(p))
}

func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req providerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), id, provider.UpdateParams{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "provider not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toProviderResponse(p))
}

func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "provider not found")
			return
		}
		slog.Error("delete provider", "error", err)
		writeError(w, http.StatusInternalServerError, "providers unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/providers/{id}/image with a multipart
// "file" field.
func (h *ProviderHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			writeError(w, http.StatusNotFound, "provider not found")
			return
		}
		slog.Error("get provider", "error", err)
		writeError(w, http.StatusInternalServerError, "providers unavailable")
		return
	}

	url, ok := storeUpload(w, r, h.files, "provider", id)
	if !ok {
		return
	}

	p, err := h.svc.SetImage(r.Context(), id, url)
	if err != nil {
		slog.Error("set provider image", "error", err)
		writeError(w, http.StatusInternalServerError, "providers unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toProviderResponse(p))
}
