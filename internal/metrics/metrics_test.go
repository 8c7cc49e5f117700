package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordValidation(t *testing.T) {
	m := New()
	m.RecordValidation(3, 2)
	m.RecordValidation(1, 0)

	if got := testutil.ToFloat64(m.validatorRecords.WithLabelValues("valid")); got != 4 {
		t.Fatalf("valid = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.validatorRecords.WithLabelValues("rejected")); got != 2 {
		t.Fatalf("rejected = %v, want 2", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordValidation(1, 1)
	m.RecordIngest("valid")
	m.RecordExport(errors.New("x"))
	m.SetBreakerState("receipts", 2)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/receipts/42/image", nil))

	if got := testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/api/receipts/{id}/image", "404")); got != 1 {
		t.Fatalf("request count = %v, want 1", got)
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "payperless_http_requests_total") {
		t.Fatalf("metrics output missing counter:\n%s", rr.Body.String())
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/receipts":         "/api/receipts",
		"/api/receipts/7":       "/api/receipts/{id}",
		"/api/recipes/abc-1":    "/api/recipes/{id}",
		"/api/dashboard/stores": "/api/dashboard/stores",
		"/healthz":              "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
