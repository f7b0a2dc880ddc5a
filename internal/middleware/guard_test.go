package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/pkg/auth"
)

type stubTokenRepo struct {
	revoked map[string]bool
}

func (r *stubTokenRepo) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	r.revoked[tokenID] = true
	return nil
}

func (r *stubTokenRepo) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r.revoked[tokenID], nil
}

func newGuardHarness(t *testing.T) (*gin.Engine, auth.JWTService, *stubTokenRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "guard-access",
		RefreshSecret: "guard-refresh",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	tokens := &stubTokenRepo{revoked: make(map[string]bool)}
	guard := NewGuard(jwtSvc, tokens)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(guard.Authenticate())

	admin := api.Group("/admin", guard.RequireRole(model.RoleAdmin))
	admin.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ContextUserEmail)})
	})

	doctor := api.Group("/doctor", guard.RequireRole(model.RoleDoctor))
	doctor.GET("/profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString(ContextUserRole)})
	})

	return r, jwtSvc, tokens
}

func signedToken(t *testing.T, jwtSvc auth.JWTService, role model.Role) (string, *model.TokenClaims) {
	t.Helper()
	user := &model.User{Email: string(role) + "@example.com", Role: role}
	token, claims, err := jwtSvc.GenerateAccessToken(user)
	require.NoError(t, err)
	return token, claims
}

func TestGuardAnonymousRedirectsToLogin(t *testing.T) {
	r, _, _ := newGuardHarness(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?from=%2Fadmin%2Fdashboard", w.Header().Get("Location"))
}

func TestGuardDoctorCannotReachAdminSection(t *testing.T) {
	r, jwtSvc, _ := newGuardHarness(t)
	token, _ := signedToken(t, jwtSvc, model.RoleDoctor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/doctor/profile", w.Header().Get("Location"))
}

func TestGuardAdminPassesDoctorSection(t *testing.T) {
	r, jwtSvc, _ := newGuardHarness(t)
	token, _ := signedToken(t, jwtSvc, model.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctor/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
}

func TestGuardAcceptsCookieSession(t *testing.T) {
	r, jwtSvc, _ := newGuardHarness(t)
	token, _ := signedToken(t, jwtSvc, model.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuardRevokedSessionRedirects(t *testing.T) {
	r, jwtSvc, tokens := newGuardHarness(t)
	token, claims := signedToken(t, jwtSvc, model.RoleAdmin)
	require.NoError(t, tokens.Revoke(context.Background(), claims.TokenID, claims.ExpiresAt))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?from=")
}

func TestGuardGarbageTokenRedirects(t *testing.T) {
	r, _, _ := newGuardHarness(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}
