package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medrecruit/onboard-api/internal/apperror"
	"github.com/medrecruit/onboard-api/internal/handler"
	"github.com/medrecruit/onboard-api/internal/middleware"
	"github.com/medrecruit/onboard-api/internal/model"
	adminsvc "github.com/medrecruit/onboard-api/internal/service/admin"
	"github.com/medrecruit/onboard-api/internal/service/application"
)

type Handler struct {
	svc  *adminsvc.Service
	apps *application.Service
}

func NewHandler(svc *adminsvc.Service, apps *application.Service) *Handler {
	return &Handler{svc: svc, apps: apps}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Dashboard)

	apps := r.Group("/applications")
	{
		apps.GET("", h.ListApplications)
		apps.GET("/:id", h.GetApplication)
		apps.POST("/:id/schedule-interview", h.ScheduleInterview)
		apps.POST("/:id/approve", h.Approve)
		apps.POST("/:id/reject", h.Reject)
		apps.POST("/:id/request-documentation", h.RequestDocumentation)
		apps.POST("/:id/suspend", h.Suspend)
		apps.DELETE("/:id", h.DeleteApplication)
	}

	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.GET("/settings", h.ListSettings)
	r.PUT("/settings/:key", h.PutSetting)
	r.GET("/actions", h.ListActions)
}

// Dashboard serves the review queue: applications awaiting an admin
// decision, newest first.
func (h *Handler) Dashboard(c *gin.Context) {
	filters := &model.ApplicationFilters{Status: model.StatusPending}
	filters.Normalize()

	apps, total, err := h.svc.ListApplications(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.ListResponse{
		Items: apps,
		Total: total,
		Page:  filters.Page,
		Size:  filters.PageSize,
	}))
}

func (h *Handler) ListApplications(c *gin.Context) {
	var filters model.ApplicationFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}
	filters.Normalize()

	apps, total, err := h.svc.ListApplications(c.Request.Context(), &filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.ListResponse{
		Items: apps,
		Total: total,
		Page:  filters.Page,
		Size:  filters.PageSize,
	}))
}

func (h *Handler) GetApplication(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	app, err := h.svc.GetApplication(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(app))
}

func (h *Handler) ScheduleInterview(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	var req model.ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	app, err := h.apps.ScheduleInterview(c.Request.Context(), id, sessionUserID(c), req.SchedulingLink, req.Reason)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(app))
}

func (h *Handler) Approve(c *gin.Context) {
	h.review(c, h.apps.Approve)
}

func (h *Handler) Reject(c *gin.Context) {
	h.review(c, h.apps.Reject)
}

func (h *Handler) RequestDocumentation(c *gin.Context) {
	h.review(c, h.apps.RequestDocumentation)
}

func (h *Handler) Suspend(c *gin.Context) {
	h.review(c, h.apps.Suspend)
}

func (h *Handler) DeleteApplication(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	var req model.ReviewRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.apps.Delete(c.Request.Context(), id, sessionUserID(c), req.Reason); err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("application deleted"))
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetOrCreateProfile(c.Request.Context(), sessionUserID(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateAdminProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(), sessionUserID(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListSettings(c *gin.Context) {
	settings, err := h.svc.ListSettings(c.Request.Context(), sessionUserID(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(settings))
}

func (h *Handler) PutSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}

	if err := h.svc.PutSetting(c.Request.Context(), sessionUserID(c), c.Param("key"), req.Value); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse("setting saved"))
}

func (h *Handler) ListActions(c *gin.Context) {
	var filters model.AdminActionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		handler.Fail(c, apperror.Validation("%s", err.Error()))
		return
	}
	filters.Normalize()

	actions, total, err := h.svc.ListActions(c.Request.Context(), &filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.ListResponse{
		Items: actions,
		Total: total,
		Page:  filters.Page,
		Size:  filters.PageSize,
	}))
}

func (h *Handler) review(c *gin.Context, apply func(ctx context.Context, doctorID, adminID uuid.UUID, reason string) (*model.DoctorApplication, error)) {
	id, err := pathID(c)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	var req model.ReviewRequest
	_ = c.ShouldBindJSON(&req)

	app, err := apply(c.Request.Context(), id, sessionUserID(c), req.Reason)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(app))
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid application id")
	}
	return id, nil
}

func sessionUserID(c *gin.Context) uuid.UUID {
	id, _ := uuid.Parse(c.GetString(middleware.ContextUserID))
	return id
}
