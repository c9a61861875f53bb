package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/httpx"
)

type Runner interface {
	Run(ctx context.Context) (Run, error)
}

type HTTPHandler struct {
	svc Runner
}

func NewHTTPHandler(svc Runner) *HTTPHandler {
	return &HTTPHandler{svc: svc}
}

// Ingest handles POST /internal/jobs/ingest
// @Summary Reload the service catalog
// @Description Re-read the configured catalog source, validate it and swap it in
// @Tags internal
// @Produce json
// @Param Authorization header string true "Bearer token with ADMIN role"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /internal/jobs/ingest [post]
func (h *HTTPHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "use POST", nil)
		return
	}

	run, err := h.svc.Run(r.Context())
	if err != nil {
		if catalog.IsLoadError(err) {
			httpx.JSONError(w, r, http.StatusUnprocessableEntity, "CATALOG_INVALID", err.Error(), loadErrorDetails(err))
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INGEST_FAILED", err.Error(), nil)
		return
	}

	var meta map[string]any
	if sub := httpx.SubjectFrom(r); sub != "" {
		meta = map[string]any{"triggered_by": sub}
	}
	httpx.JSONSuccess(w, r, run, meta)
}

func loadErrorDetails(err error) []httpx.ErrorDetail {
	var (
		malformed *catalog.MalformedRecordError
		missing   *catalog.MissingFieldError
		dup       *catalog.DuplicateKeyError
	)
	switch {
	case errors.As(err, &malformed):
		return []httpx.ErrorDetail{{
			Field:   fmt.Sprintf("block %d line %d", malformed.Block, malformed.Line),
			Message: malformed.Error(),
		}}
	case errors.As(err, &missing):
		return []httpx.ErrorDetail{{Field: missing.Field, Message: missing.Error()}}
	case errors.As(err, &dup):
		return []httpx.ErrorDetail{{Field: dup.Key, Message: dup.Error()}}
	}
	return nil
}
