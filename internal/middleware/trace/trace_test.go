package trace

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	applog "subtrack/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	re := regexp.MustCompile(`^req_[0-9a-f]{16}$`)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateRequestID()
		if !re.MatchString(id) {
			t.Fatalf("GenerateRequestID() = %q, want req_<16 hex>", id)
		}
		if seen[id] {
			t.Fatalf("GenerateRequestID() repeated %q", id)
		}
		seen[id] = true
	}
}

func TestMiddleware(t *testing.T) {
	var gotID string
	m := NewMiddleware(func(*http.Request) string { return "203.0.113.7" }, applog.Nop())
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if gotID == "" {
		t.Fatal("request id missing from handler context")
	}
	if hdr := rec.Header().Get(RequestIDHeader); hdr != gotID {
		t.Errorf("%s = %q, want %q", RequestIDHeader, hdr, gotID)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw.Write([]byte("ok"))
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusOK {
		t.Errorf("statusCode = %d, want 200 after body write", rw.statusCode)
	}
}

func TestGetRequestIDEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := GetRequestID(r.Context()); id != "" {
		t.Errorf("GetRequestID() = %q, want empty", id)
	}
}
