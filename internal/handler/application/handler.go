package application

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/handler"
	"github.com/medrecruit/onboard-api/internal/model"
	"github.com/medrecruit/onboard-api/internal/service/application"
	authsvc "github.com/medrecruit/onboard-api/internal/service/auth"
)

// Handler is the public registration surface: nothing here requires a
// session.
type Handler struct {
	svc      *application.Service
	sessions *authsvc.Service
	cookies  handler.CookieWriter
}

func NewHandler(svc *application.Service, sessions *authsvc.Service, cookies handler.CookieWriter) *Handler {
	return &Handler{svc: svc, sessions: sessions, cookies: cookies}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/applications")
	{
		group.POST("", h.Submit)
		group.POST("/verify-credential", h.VerifyCredential)
		group.POST("/set-credential", h.SetCredential)
		group.POST("/resend-confirmation", h.ResendConfirmation)
	}
}

func (h *Handler) Submit(c *gin.Context) {
	var req model.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	app, err := h.svc.SubmitApplication(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"id":     app.ID,
		"status": app.Status,
	}))
}

// VerifyCredential checks a temporary credential without consuming it, so
// the wizard can gate the set-credential step.
func (h *Handler) VerifyCredential(c *gin.Context) {
	var req model.VerifyCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	ok, err := h.svc.ConfirmTemporaryCredential(c.Request.Context(), req.Email, req.TempCredential)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"valid": ok}))
}

// SetCredential swaps the temporary credential for a chosen one and signs
// the doctor straight in.
func (h *Handler) SetCredential(c *gin.Context) {
	var req model.SetCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	user, err := h.svc.SetPermanentCredential(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	pair, err := h.sessions.IssueSession(c.Request.Context(), user)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.cookies.SetSession(c, pair)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"home":   user.Role.Home(),
		"tokens": pair,
	}))
}

func (h *Handler) ResendConfirmation(c *gin.Context) {
	var req model.ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	// Always report success so the endpoint cannot be used to probe for
	// registered addresses.
	if _, err := h.svc.ResendConfirmation(c.Request.Context(), req.Email); err != nil && !apperror.Is(err, apperror.KindNotFound) {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("confirmation sent if the address is registered"))
}
