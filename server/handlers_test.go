package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"EchoFM/core/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "missing uses fallback", query: "", want: 10},
		{name: "valid passes through", query: "limit=25", want: 25},
		{name: "clamped below", query: "limit=0", want: 1},
		{name: "clamped above", query: "limit=500", want: 50},
		{name: "non-numeric rejected", query: "limit=abc", wantErr: true},
		{name: "fractional rejected", query: "limit=1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			limit, err := parseLimit(r, 10, 50)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, limit)
		})
	}
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	h := &APIHandler{}

	called := false
	handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/recommendations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	h := &APIHandler{}

	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)

	headers := []string{
		"Bearer",
		"Bearer a b",
		"Token " + token,
		token,
	}

	for _, header := range headers {
		called := false
		handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
		r.Header.Set("Authorization", header)
		handler(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.False(t, called, "header %q", header)
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	h := &APIHandler{}

	called := false
	handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	r.Header.Set("Authorization", "Bearer not-a-token")
	handler(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}

func TestAuthMiddlewareCarriesIdentity(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	h := &APIHandler{}

	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)

	var gotUserID int64
	var gotUsername string
	handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		gotUsername, _ = GetUsernameFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), gotUserID)
	assert.Equal(t, "alice", gotUsername)
}

func TestSimilarTracksRouteRequiresAuth(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	router := newRouter(&APIHandler{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recommendations/similar/42", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error": "Authorization header is required"}`, w.Body.String())
}

func TestRecommendationsRouteRequiresAuth(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	router := newRouter(&APIHandler{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recommendations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecommendationsRejectsNonNumericLimit(t *testing.T) {
	auth.InitJWT("test-secret", 1)
	router := newRouter(&APIHandler{})

	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/recommendations?limit=abc", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
