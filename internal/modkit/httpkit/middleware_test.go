package httpkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"linkharvest/internal/platform/net/middleware"
)

func applyStack(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- { // outermost first
		h = stack[i](h)
	}
	return h
}

func TestCommonStack_HealthEndpoint(t *testing.T) {
	root := applyStack(http.NotFoundHandler(), CommonStack(StackOptions{}))

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected /health to be 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCommonStack_RequestReachesHandler(t *testing.T) {
	hit := 0
	final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hit++
		w.WriteHeader(http.StatusNoContent)
	})
	root := applyStack(final, CommonStack(StackOptions{CORSOrigins: []string{"https://witalnosci.pl"}}))

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping/", nil))

	if hit != 1 {
		t.Fatalf("expected final handler to be called once, got %d", hit)
	}
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 from final handler, got %d", rr.Code)
	}
}

func TestCommonStack_PanicBecomesJSON(t *testing.T) {
	final := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	root := applyStack(final, CommonStack(StackOptions{}))

	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestSecret_RejectsWithBareBody(t *testing.T) {
	hits := 0
	h := Secret(middleware.QuerySecret{Param: "password", Secret: "s3cret"})(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.WriteHeader(http.StatusOK)
		}),
	)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?password=nope", nil))
	if rr.Code != http.StatusUnauthorized || hits != 0 {
		t.Fatalf("status = %d hits = %d", rr.Code, hits)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != `{"success":false,"error":"Unauthorized"}` {
		t.Fatalf("body = %s", body)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?password=s3cret", nil))
	if rr.Code != http.StatusOK || hits != 1 {
		t.Fatalf("status = %d hits = %d", rr.Code, hits)
	}
}
