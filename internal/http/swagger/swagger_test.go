package swagger_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/http/swagger"
)

func TestLoad(t *testing.T) {
	doc, err := swagger.Load()
	require.NoError(t, err)

	for _, path := range []string{"/", "/tyres", "/tyres/search", "/tyres/brands", "/tyres/{id}"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestSwaggerDocsRoute(t *testing.T) {
	r := chi.NewRouter()
	require.NoError(t, swagger.Register(r))

	t.Run("Should get docs successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
	})

	t.Run("Should get openapi.yml successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.yml", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
		assert.Contains(t, resp.Body.String(), "Tyre Inventory API")
	})

	t.Run("Should get openapi.json successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "3.0.3", body["openapi"])
	})
}
