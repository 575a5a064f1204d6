package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"linkharvest/internal/platform/config"
	phttp "linkharvest/internal/platform/net/http"
)

func profiled(t *testing.T, prefix string, enabled bool) http.Handler {
	t.Helper()
	r := phttp.NewServer(config.New().Prefix("TEST_API_")).Router()
	phttp.MountProfiler(r, prefix, enabled)
	return r.Mux()
}

func status(h http.Handler, path string) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestMountProfiler(t *testing.T) {
	on := profiled(t, "debug/", true)
	for _, path := range []string{"/debug/pprof/", "/debug/pprof/cmdline", "/debug/vars"} {
		if got := status(on, path); got != http.StatusOK {
			t.Fatalf("GET %s = %d", path, got)
		}
	}

	off := profiled(t, "/debug", false)
	if got := status(off, "/debug/pprof/"); got != http.StatusNotFound {
		t.Fatalf("disabled profiler answered %d", got)
	}
}
