package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatchai-pro/internal/models"
	"dispatchai-pro/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(a *Authenticator, role string) http.Handler {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := GetUserFromContext(r)
		w.Write([]byte(claims.UserID))
	})
	if role != "" {
		return a.Auth(RequireRole(role)(h))
	}
	return a.Auth(h)
}

func TestAuth(t *testing.T) {
	a := NewAuthenticator("test-secret", logger.NewNop())
	admin, err := a.IssueToken(models.User{ID: "ADM-001", Email: "dispatch@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	drv, err := a.IssueToken(models.User{ID: "D-101", Email: "john@example.com", Role: models.RoleDriver})
	require.NoError(t, err)
	forged, err := NewAuthenticator("other-secret", logger.NewNop()).IssueToken(models.User{ID: "ADM-001", Role: models.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		role   string
		status int
		body   string
	}{
		{"no header", "", "", http.StatusUnauthorized, ""},
		{"not bearer", "Token " + admin, "", http.StatusUnauthorized, ""},
		{"garbage token", "Bearer abc.def.ghi", "", http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + forged, "", http.StatusUnauthorized, ""},
		{"valid driver", "Bearer " + drv, "", http.StatusOK, "D-101"},
		{"admin route as driver", "Bearer " + drv, models.RoleAdmin, http.StatusForbidden, ""},
		{"admin route as admin", "Bearer " + admin, models.RoleAdmin, http.StatusOK, "ADM-001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/drivers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(a, tt.role).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestParseToken_RoundTrip(t *testing.T) {
	a := NewAuthenticator("s3cret", logger.NewNop())
	tok, err := a.IssueToken(models.User{ID: "D-102", Email: "sarah@example.com", Role: models.RoleDriver})
	require.NoError(t, err)

	claims, err := a.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, UserClaims{UserID: "D-102", Email: "sarah@example.com", Role: models.RoleDriver}, claims)

	_, err = NewAuthenticator("", logger.NewNop()).ParseToken(tok)
	assert.Error(t, err)
}
