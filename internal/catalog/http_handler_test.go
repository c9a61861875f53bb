package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerCatalog = `Id: svc-001
Category: Compute Resources
Subcategory: Virtual Machine Deployment
Brief Description: Request for a new virtual machine

Topic: Password Reset
Category: Identity
Subcategory: Accounts
Brief Description: Reset a forgotten password

Id: svc-003
Category: compute resources
Subcategory: GPU Quota
Brief Description: Raise the GPU quota for a project
`

func newTestHandler(t *testing.T) (*HTTPHandler, *Service) {
	t.Helper()
	idx, err := loadText(handlerCatalog)
	require.NoError(t, err)
	svc := NewService(idx)
	return NewHTTPHandler(svc), svc
}

func loadText(text string) (*Index, error) {
	recs, err := ParseAll(text)
	if err != nil {
		return nil, err
	}
	entries, err := ValidateAll(recs)
	if err != nil {
		return nil, err
	}
	return NewIndex(entries)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]any `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHTTPHandler_List(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("all entries", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)

		var entries []Entry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		assert.Len(t, entries, 3)
		assert.EqualValues(t, 3, env.Meta["total"])
		assert.EqualValues(t, 20, env.Meta["page_size"])
	})

	t.Run("category filter ignores case", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?category=COMPUTE+RESOURCES", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var entries []Entry
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "svc-001", entries[0].Key)
		assert.Equal(t, "svc-003", entries[1].Key)
	})

	t.Run("paging", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?page=2&page_size=2", nil)

		handler.List(w, r)

		env := decodeEnvelope(t, w)
		var entries []Entry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "svc-003", entries[0].Key)
		assert.EqualValues(t, 2, env.Meta["total_pages"])
	})

	t.Run("oversized page size falls back to default", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?page_size=500", nil)

		handler.List(w, r)

		assert.EqualValues(t, 20, decodeEnvelope(t, w).Meta["page_size"])
	})

	t.Run("cursor paging", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?page_size=2", nil))

		env := decodeEnvelope(t, w)
		next, ok := env.Meta["next_cursor"].(string)
		require.True(t, ok, "expected next_cursor in meta")

		w = httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?page_size=2&cursor="+next, nil))

		env = decodeEnvelope(t, w)
		var entries []Entry
		require.NoError(t, json.Unmarshal(env.Data, &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "svc-003", entries[0].Key)
		assert.NotContains(t, env.Meta, "next_cursor")
	})

	t.Run("no next cursor on exact last page", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?page_size=3", nil))
		assert.NotContains(t, decodeEnvelope(t, w).Meta, "next_cursor")
	})

	t.Run("invalid cursor", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?cursor=%21%21", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cursor for unknown key", func(t *testing.T) {
		cursor := EncodeCursor(CursorData{AfterKey: "gone"})
		w := httptest.NewRecorder()
		handler.List(w, httptest.NewRequest(http.MethodGet, "/v1/catalog/entries?cursor="+cursor, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_CURSOR", decodeEnvelope(t, w).Error.Code)
	})

	t.Run("empty before first load", func(t *testing.T) {
		h := NewHTTPHandler(NewService(nil))
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries", nil)

		h.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, string(decodeEnvelope(t, w).Data))
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	handler, svc := newTestHandler(t)

	t.Run("by id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries/svc-001", nil)
		r.SetPathValue("key", "svc-001")

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		var e Entry
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &e))
		assert.Equal(t, "Virtual Machine Deployment", e.Subcategory)
	})

	t.Run("by topic", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries/Password%20Reset", nil)
		r.SetPathValue("key", "Password Reset")

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries/svc-999", nil)
		r.SetPathValue("key", "svc-999")

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("missing key", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/v1/catalog/entries/", nil)

		handler.Get(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	stats := svc.Stats()
	assert.EqualValues(t, 3, stats.TotalQueries)
	assert.EqualValues(t, 2, stats.PassCount)
	assert.EqualValues(t, 1, stats.FailCount)
}

func TestHTTPHandler_Categories(t *testing.T) {
	handler, _ := newTestHandler(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/catalog/categories", nil)

	handler.Categories(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	var categories []string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &categories))
	assert.Equal(t, []string{"Compute Resources", "Identity"}, categories)
}

func TestHTTPHandler_Stats(t *testing.T) {
	handler, svc := newTestHandler(t)
	_, _ = svc.Lookup(t.Context(), "svc-001")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/v1/catalog/stats", nil)

	handler.Stats(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	var sum StatsSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.EqualValues(t, 1, sum.PassCount)
	assert.EqualValues(t, 100, sum.PassPercentage)
	assert.EqualValues(t, 3, env.Meta["entries"])
}
