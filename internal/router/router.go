package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/medrecruit/onboard-api/internal/handler/metrics"
	"github.com/medrecruit/onboard-api/internal/middleware"
	"github.com/medrecruit/onboard-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORS           middleware.CORSConfig
}

type Router struct {
	engine       *gin.Engine
	guard        *middleware.Guard
	metrics      *metrics.Handler
	healthH      Handler
	authH        Handler
	applicationH Handler
	adminH       Handler
	doctorH      Handler
	patientH     Handler
}

func NewRouter(
	guard *middleware.Guard,
	metricsH *metrics.Handler,
	healthH Handler,
	authH Handler,
	applicationH Handler,
	adminH Handler,
	doctorH Handler,
	patientH Handler,
	config Config,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()

	r := &Router{
		engine:       engine,
		guard:        guard,
		metrics:      metricsH,
		healthH:      healthH,
		authH:        authH,
		applicationH: applicationH,
		adminH:       adminH,
		doctorH:      doctorH,
		patientH:     patientH,
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		metricsH.Middleware(),
		middleware.Timeout(config.RequestTimeout),
		middleware.CORS(config.CORS),
	)

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(limiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)

	// Public surface: login and the registration wizard.
	r.authH.RegisterRoutes(api)
	r.applicationH.RegisterRoutes(api)

	// Role sections. The guard authenticates, the role gate enforces the
	// section rule; admins pass every gate.
	protected := api.Group("")
	protected.Use(r.guard.Authenticate())

	admin := protected.Group("/admin", r.guard.RequireRole(model.RoleAdmin))
	r.adminH.RegisterRoutes(admin)

	doctor := protected.Group("/doctor", r.guard.RequireRole(model.RoleDoctor))
	r.doctorH.RegisterRoutes(doctor)

	patient := protected.Group("/patient", r.guard.RequireRole(model.RolePatient))
	r.patientH.RegisterRoutes(patient)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
