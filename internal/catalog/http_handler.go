package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"servicecatalog/internal/httpx"
)

type HTTPHandler struct {
	svc *Service
}

func NewHTTPHandler(svc *Service) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// List handles GET /v1/catalog/entries
// @Summary List catalog entries
// @Description Page through the service catalog, optionally filtered by category
// @Tags catalog
// @Produce json
// @Param category query string false "Category name (case-insensitive)"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Param cursor query string false "Opaque cursor from meta.next_cursor; overrides page"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/catalog/entries [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	cursor, err := DecodeCursor(query.Get("cursor"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "Invalid cursor", nil)
		return
	}

	q := ListQuery{
		Category: query.Get("category"),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
		AfterKey: cursor.AfterKey,
	}

	entries, total, err := h.svc.List(r.Context(), q)
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_CURSOR", "Cursor no longer matches the catalog", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	meta := map[string]any{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": (total + pageSize - 1) / pageSize,
	}
	if n := len(entries); n == pageSize {
		last := entries[n-1].Key
		if next := EncodeCursor(CursorData{AfterKey: last}); next != "" && !isLast(r.Context(), h.svc, q.Category, last) {
			meta["next_cursor"] = next
		}
	}
	httpx.JSONSuccess(w, r, entries, meta)
}

// Get handles GET /v1/catalog/entries/{key}
// @Summary Look up a catalog entry
// @Description Retrieve one entry by its id, topic or synthetic key
// @Tags catalog
// @Produce json
// @Param key path string true "Entry key"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/catalog/entries/{key} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "key is required", nil)
		return
	}

	entry, err := h.svc.Lookup(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Entry not found in catalog", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, entry, nil)
}

// Categories handles GET /v1/catalog/categories
// @Summary List catalog categories
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/catalog/categories [get]
func (h *HTTPHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, categories, map[string]any{"total": len(categories)})
}

// Stats handles GET /v1/catalog/stats
// @Summary Lookup hit/miss statistics since process start
// @Tags catalog
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/catalog/stats [get]
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, h.svc.Stats(), map[string]any{"entries": h.svc.Size()})
}

// isLast reports whether key is the final entry matching category.
func isLast(ctx context.Context, svc *Service, category, key string) bool {
	rest, _, err := svc.List(ctx, ListQuery{Category: category, AfterKey: key, Limit: 1})
	return err != nil || len(rest) == 0
}
