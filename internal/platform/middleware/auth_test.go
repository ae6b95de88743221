package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type staticValidator struct {
	claims *TokenClaims
	err    error
}

func (v staticValidator) ValidateToken(string) (*TokenClaims, error) {
	return v.claims, v.err
}

func gatedRequest(t *testing.T, validator TokenValidator, token string, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	handler := RequireRole(validator, slog.Default(), roles...)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(GetActor(r.Context()) + "/" + GetRole(r.Context())))
		}),
	)
	req := httptest.NewRequest(http.MethodPatch, "/api/applications/1/status", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoleMissingToken(t *testing.T) {
	rec := gatedRequest(t, staticValidator{}, "", RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleInvalidToken(t *testing.T) {
	v := staticValidator{err: errors.New("expired")}
	rec := gatedRequest(t, v, "bad-token", RoleAdmin)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleWrongRole(t *testing.T) {
	v := staticValidator{claims: &TokenClaims{Actor: "bob", Role: RoleFaculty}}
	rec := gatedRequest(t, v, "token", RoleAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowedRolePopulatesContext(t *testing.T) {
	v := staticValidator{claims: &TokenClaims{Actor: "alice", Role: RoleAdmin}}
	rec := gatedRequest(t, v, "token", RoleAdmin, RoleOfficer)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "alice/admin", rec.Body.String())
}
