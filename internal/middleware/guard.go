package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/repository"
	"github.com/medrecruit/onboard-api/pkg/auth"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"

	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"

	accessTokenCookie = "access_token"
	loginPath         = "/login"
)

// Guard authenticates every protected request and enforces the role rule of
// the section it fronts. Failures redirect rather than 401: an anonymous
// visitor lands on the login page with a return path, a signed-in user of the
// wrong role lands on their own home.
type Guard struct {
	jwtSvc auth.JWTService
	tokens repository.TokenRepository
	claims *gocache.Cache
}

func NewGuard(jwtSvc auth.JWTService, tokens repository.TokenRepository) *Guard {
	return &Guard{
		jwtSvc: jwtSvc,
		tokens: tokens,
		claims: gocache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate resolves the session from the Authorization header or the
// access_token cookie. Parsed claims are cached per token; revocation is
// checked on every request so logout takes effect immediately.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			redirectToLogin(c)
			return
		}

		claims, err := g.resolveClaims(token)
		if err != nil {
			redirectToLogin(c)
			return
		}

		revoked, err := g.tokens.IsRevoked(c.Request.Context(), claims.TokenID)
		if err != nil || revoked {
			redirectToLogin(c)
			return
		}

		c.Set(ContextUserID, claims.UserID.String())
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, string(claims.Role))
		c.Request.Header.Set(HeaderUserID, claims.UserID.String())
		c.Request.Header.Set(HeaderUserEmail, claims.Email)
		c.Request.Header.Set(HeaderUserRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Admins additionally
// pass doctor and patient gates so they can inspect those sections.
func (g *Guard) RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
	}
	allowed[model.RoleAdmin] = true

	return func(c *gin.Context) {
		role := model.Role(c.GetString(ContextUserRole))
		if allowed[role] {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, role.Home())
		c.Abort()
	}
}

func (g *Guard) resolveClaims(token string) (*model.TokenClaims, error) {
	if cached, ok := g.claims.Get(token); ok {
		return cached.(*model.TokenClaims), nil
	}

	claims, err := g.jwtSvc.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}

	ttl := time.Until(claims.ExpiresAt)
	if ttl > time.Minute {
		ttl = time.Minute
	}
	if ttl > 0 {
		g.claims.Set(token, claims, ttl)
	}
	return claims, nil
}

func sessionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func redirectToLogin(c *gin.Context) {
	from := strings.TrimPrefix(c.Request.URL.Path, "/api/v1")
	c.Redirect(http.StatusFound, loginPath+"?from="+url.QueryEscape(from))
	c.Abort()
}
