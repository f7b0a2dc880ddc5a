package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/handler"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/service/auth"
)

type Handler struct {
	svc     *auth.Service
	cookies handler.CookieWriter
}

func NewHandler(svc *auth.Service, cookies handler.CookieWriter) *Handler {
	return &Handler{svc: svc, cookies: cookies}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/logout", h.Logout)
		group.POST("/refresh", h.Refresh)
		group.GET("/session", h.Session)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.cookies.SetSession(c, pair)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"session": sessionOf(user),
		"tokens":  pair,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	access := bearerOrCookie(c, handler.AccessTokenCookie)
	refresh, _ := c.Cookie(handler.RefreshTokenCookie)

	if access != "" {
		if err := h.svc.Logout(c.Request.Context(), access, refresh); err != nil {
			handler.Fail(c, err)
			return
		}
	}

	h.cookies.ClearSession(c)
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out"))
}

func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(handler.RefreshTokenCookie)
	}
	if req.RefreshToken == "" {
		handler.Fail(c, apperror.Auth("missing refresh token"))
		return
	}

	user, pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.cookies.SetSession(c, pair)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"session": sessionOf(user),
		"tokens":  pair,
	}))
}

// Session tells the frontend who is signed in and where their home is. It
// answers 401 rather than redirecting so the client can decide.
func (h *Handler) Session(c *gin.Context) {
	token := bearerOrCookie(c, handler.AccessTokenCookie)
	if token == "" {
		handler.Fail(c, apperror.Auth("no active session"))
		return
	}

	claims, err := h.svc.ValidateSession(c.Request.Context(), token)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.Session{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
		Home:   claims.Role.Home(),
	}))
}

func sessionOf(user *model.User) model.Session {
	return model.Session{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Home:   user.Role.Home(),
	}
}

func bearerOrCookie(c *gin.Context, cookieName string) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}
