package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
		{"/api/v1/fields", "/api/v1/fields"},
		{"/api/v1/fields/order", "/api/v1/fields/order"},
		{"/api/v1/fields/6f1c3a7e-2b7d-4c6e-9a53-3f0e2f3b7d11", "/api/v1/fields/{id}"},
		{"/api/v1/exports/2024-01-01", "/api/v1/exports/{date}"},
		{"/api/v1/exports/2024-01-01/2024-01-31", "/api/v1/exports/{date}/{date}"},
		{"/api/v1/exports/garbage", "/api/v1/exports/{date}"},
		{"/api/v1/records/today", "/api/v1/records/today"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
		}
	}
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	handler := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/fields", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d, ожидается 418", w.Code)
	}
}
