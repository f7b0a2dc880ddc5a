package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medrecruit/onboard-api/internal/handler"
	"github.com/medrecruit/onboard-api/internal/middleware"
)

// Handler is the patient landing surface. Thin for now; consultations live
// in a separate system.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/home", h.Home)
}

func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"email": c.GetString(middleware.ContextUserEmail),
		"role":  c.GetString(middleware.ContextUserRole),
	}))
}
