// Package middleware contains HTTP middleware for the GenForge API.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/genapps/genforge/internal/auth"
	"github.com/genapps/genforge/internal/handler"
)

// AuthMiddleware enforces bearer-token authentication on API routes.
//
// Token verification happens before any datastore access: a request with a
// missing, malformed, or invalid token is rejected without touching the
// account store.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier auth.TokenVerifier, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireUser rejects requests without a valid bearer token and stores the
// verified claims in the request context for handlers downstream.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.logger.Info("auth failure: missing Authorization header", "path", r.URL.Path)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		token, ok := extractBearerToken(header)
		if !ok {
			m.logger.Info("auth failure: malformed Authorization header", "path", r.URL.Path)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Info("auth failure: token invalid", "path", r.URL.Path, "error", err)
			handler.UnauthorizedResponse(w, r, m.logger)
			return
		}

		ctx := auth.WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractBearerToken pulls the token out of an "Authorization: Bearer x"
// header value.
func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided: the first middleware in the
// slice is the outermost (runs first on request, last on response).
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
