package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The publisher is never reached on a rejected request, so a nil one is
// enough for validation tests.
func newTestPublishHandler() *PublishHandler {
	return NewPublishHandler(nil, testLogger())
}

func TestHandlePublishMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing repoName",
			body:    `{"html":"<html></html>","accessToken":"gho_abc"}`,
			wantErr: "repoName is required",
		},
		{
			name:    "missing html",
			body:    `{"repoName":"my-site","accessToken":"gho_abc"}`,
			wantErr: "html is required",
		},
		{
			name:    "missing accessToken",
			body:    `{"repoName":"my-site","html":"<html></html>"}`,
			wantErr: "accessToken is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestPublishHandler()
			w := httptest.NewRecorder()

			h.HandlePublish(w, authedRequest(http.MethodPost, "/api/publish", tt.body, "u1"))

			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantErr, resp["error"])
		})
	}
}

func TestHandlePublishMalformedBody(t *testing.T) {
	h := newTestPublishHandler()
	w := httptest.NewRecorder()

	h.HandlePublish(w, authedRequest(http.MethodPost, "/api/publish", `{"repoName":`, "u1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePublishMissingClaims(t *testing.T) {
	h := newTestPublishHandler()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/publish", strings.NewReader(`{}`))

	h.HandlePublish(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
