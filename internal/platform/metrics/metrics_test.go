package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddleware_RecordsPattern(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/students/{studentID}/progress/{subject}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)

	for _, path := range []string{"/api/v1/students/s1/progress/math", "/api/v1/students/s2/progress/math", "/missing"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	want := `http_requests_total{endpoint="GET /api/v1/students/{studentID}/progress/{subject}",method="GET",status="418"} 2`
	if !strings.Contains(out, want) {
		t.Errorf("metrics output missing %q\n%s", want, out)
	}
	if !strings.Contains(out, `status="404"`) {
		t.Error("unmatched request should be counted with status 404")
	}
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	m := New()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `endpoint="unmatched",method="GET",status="200"`) {
		t.Errorf("expected a 200 sample for a handler that never calls WriteHeader:\n%s", rec.Body.String())
	}
}
