package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/handler"
	"github.com/medrecruit/onboard-api/internal/middleware"
	"github.com/medrecruit/onboard-api/internal/model"
	doctorsvc "github.com/medrecruit/onboard-api/internal/service/doctor"
)

type Handler struct {
	svc *doctorsvc.Service
}

func NewHandler(svc *doctorsvc.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.GET("/documents", h.ListDocuments)
	r.POST("/documents", h.AddDocument)
}

func (h *Handler) GetProfile(c *gin.Context) {
	app, err := h.svc.GetProfile(c.Request.Context(), sessionUserID(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(app))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	app, err := h.svc.UpdateProfile(c.Request.Context(), sessionUserID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(app))
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.ListDocuments(c.Request.Context(), sessionUserID(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(docs))
}

func (h *Handler) AddDocument(c *gin.Context) {
	var req model.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	doc, err := h.svc.AddDocument(c.Request.Context(), sessionUserID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doc))
}

func sessionUserID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString(middleware.ContextUserID))
	return id
}
