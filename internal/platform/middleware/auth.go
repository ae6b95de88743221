package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Actor roles. Each mutation endpoint is gated by the role that owns the
// fields it writes.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleOfficer = "officer"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	Actor string
	Role  string
}

type contextKeyActor struct{}
type contextKeyRole struct{}

// Context keys are exported for handlers and test helpers.
var (
	ContextKeyActor = contextKeyActor{}
	ContextKeyRole  = contextKeyRole{}
)

// GetActor retrieves the authenticated actor name from the context.
func GetActor(ctx context.Context) string {
	if actor, ok := ctx.Value(ContextKeyActor).(string); ok {
		return actor
	}
	return ""
}

// GetRole retrieves the authenticated actor role from the context.
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// RequireRole authenticates the bearer token and enforces that its role is one
// of the allowed roles for the route.
func RequireRole(validator TokenValidator, logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if !allowed[claims.Role] {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"role", claims.Role,
					"path", r.URL.Path,
					"request_id", GetRequestID(ctx),
				)
				writeAuthError(w, http.StatusForbidden, "role not permitted for this operation")
				return
			}

			ctx = context.WithValue(ctx, ContextKeyActor, claims.Actor)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
