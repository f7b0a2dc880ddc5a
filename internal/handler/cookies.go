package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrecruit/onboard-api/internal/model"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// CookieWriter stamps session cookies with consistent attributes. Cookies
// are httpOnly and lax; Secure is on everywhere except local development.
type CookieWriter struct {
	Domain string
	Secure bool
}

func (w CookieWriter) SetSession(c *gin.Context, pair *model.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, pair.AccessToken, 0, "/", w.Domain, w.Secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken, 0, "/", w.Domain, w.Secure, true)
}

func (w CookieWriter) ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", w.Domain, w.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", w.Domain, w.Secure, true)
}
