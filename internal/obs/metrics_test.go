// ABOUTME: Tests for metric path canonicalization and the instrument wrapper
// ABOUTME: Verifies cardinality-bounding rewrites and status code capture

package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                           "/",
		"/metrics":                   "/metrics",
		"/v1/login":                  "/v1/login",
		"/v1/contexts":               "/v1/contexts",
		"/v1/contexts/abc123":        "/v1/contexts/:id",
		"/v1/contexts/abc123/owner":  "/v1/contexts/:id/owner",
		"/v2/contexts/abc123":        "/v2/contexts/abc123",
		"/v1/messages":               "/v1/messages",
	}
	for in, want := range cases {
		assert.Equal(t, want, canonicalPath(in), "input %q", in)
	}
}

func TestInstrument_CapturesStatus(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Instrument(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/contexts/xyz", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestInstrument_DefaultsTo200(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	Instrument(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
