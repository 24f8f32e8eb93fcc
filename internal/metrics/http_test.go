package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want string
	}{
		{"snapshot fetch", "/api/snapshots/987fcdeb-51a2-43f1-b9c4-12345678abcd", "/api/snapshots/{id}"},
		{"uppercase uuid", "/api/snapshots/987FCDEB-51A2-43F1-B9C4-12345678ABCD", "/api/snapshots/{id}"},
		{"no uuid", "/api/generate", "/api/generate"},
		{"uuid mid-path", "/api/snapshots/987fcdeb-51a2-43f1-b9c4-12345678abcd/raw", "/api/snapshots/{id}/raw"},
		{"root", "/", "/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizePath(tc.path))
		})
	}
}

func TestMiddlewareCollapsesIDPaths(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Three distinct snapshot IDs must land in one label series, not three.
	paths := []string{
		"/api/snapshots/11111111-1111-4111-8111-111111111111",
		"/api/snapshots/22222222-2222-4222-8222-222222222222",
		"/api/snapshots/33333333-3333-4333-8333-333333333333",
	}

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/snapshots/{id}", "200"))
	for _, path := range paths {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/snapshots/{id}", "200"))

	assert.Equal(t, float64(3), after-before)
}
