package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront/product"
	"storefront/storage"
)

// maxUploadBytes caps image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

// ProductHandler exposes the product CRUD and image endpoints.
type ProductHandler struct {
	svc   *product.Service
	files *storage.FileStore
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(svc *product.Service, files *storage.FileStore) *ProductHandler {
	return &ProductHandler{svc: svc, files: files}
}

type productRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         int    `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	Provider      int64  `json:"provider"`
}

type productResponse struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           int     `json:"price"`
	StockQuantity   int     `json:"stockQuantity"`
	ProductImageURL *string `json:"productImageUrl"`
	ProviderID      int64   `json:"providerId"`
}

func toProductResponse(p product.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		StockQuantity:   p.StockQuantity,
		ProductImageURL: p.ProductImageURL,
		ProviderID:      p.ProviderID,
	}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		slog.Error("list products", "error", err)
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		slog.Error("get product", "error", err)
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Create(r.Context(), product.CreateParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ProviderID:    req.Provider,
	})
	if err != nil {
		if errors.Is(err, product.ErrProviderMissing) {
			writeError(w, http.StatusBadRequest, "provider not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), id, product.UpdateParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		slog.Error("delete product", "error", err)
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/v1/products/{id}/image with a multipart
// "file" field.
func (h *ProductHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.svc.Get(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		slog.Error("get product", "error", err)
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}

	url, ok := storeUpload(w, r, h.files, "product", id)
	if !ok {
		return
	}

	p, err := h.svc.SetImage(r.Context(), id, url)
	if err != nil {
		slog.Error("set product image", "error", err)
		writeError(w, http.StatusInternalServerError, "products unavailable")
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// pathID parses the {id} route parameter, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// storeUpload reads the multipart "file" field and persists it for the
// entity, returning the public URL path.
func storeUpload(w http.ResponseWriter, r *http.Request, files *storage.FileStore, entityType string, id int64) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return "", false
	}
	defer file.Close()

	url, err := files.Store(file, entityType, id, header.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyFile) {
			writeError(w, http.StatusBadRequest, "empty file")
			return "", false
		}
		slog.Error("store upload", "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return "", false
	}
	return url, true
}
