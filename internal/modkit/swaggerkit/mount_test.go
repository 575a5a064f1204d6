package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "linkharvest/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMount_ServesDocAndRedirect(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json code %d", rec.Code)
	}
	var spec map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("embedded doc is not JSON: %v", err)
	}
	paths, _ := spec["paths"].(map[string]any)
	if _, ok := paths["/harvest"]; !ok {
		t.Fatalf("harvest path missing from doc")
	}

	rec = httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect code %d", rec.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), false)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("disabled docs should 404, got %d", rec.Code)
	}
}
