package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

type Auth struct {
	sessions *Sessions
	log      *slog.Logger
}

func New(sessions *Sessions, logger *slog.Logger) *Auth {
	return &Auth{sessions: sessions, log: logger}
}

type contextKey string

const userIDKey contextKey = "userID"

// TokenFromHeaders pulls the session token from the mp_session cookie or a
// Bearer Authorization header.
func TokenFromHeaders(cookieHeader, authHeader string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && name == CookieName {
			return value
		}
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Middleware is the huma-flavored guard for JSON operations.
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		token := TokenFromHeaders(ctx.Header("Cookie"), ctx.Header("Authorization"))
		userID, err := a.sessions.Validate(ctx.Context(), token)
		if err != nil {
			a.log.Warn("auth.rejected", "path", ctx.URL().Path)
			ctx.SetStatus(http.StatusUnauthorized)
			ctx.SetHeader("Content-Type", "application/json")
			_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next(huma.WithContext(ctx, WithUserID(ctx.Context(), userID)))
	}
}

// HTTPMiddleware guards plain net/http handlers, used for the multipart
// upload routes that bypass huma.
func (a *Auth) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromHeaders(r.Header.Get("Cookie"), r.Header.Get("Authorization"))
		userID, err := a.sessions.Validate(r.Context(), token)
		if err != nil {
			a.log.Warn("auth.rejected", "path", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}
