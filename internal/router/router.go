package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/agendahub/booking-api/internal/config"
	appointmentHandler "github.com/agendahub/booking-api/internal/handler/appointment"
	authHandler "github.com/agendahub/booking-api/internal/handler/auth"
	businessHandler "github.com/agendahub/booking-api/internal/handler/business"
	categoryHandler "github.com/agendahub/booking-api/internal/handler/category"
	healthHandler "github.com/agendahub/booking-api/internal/handler/health"
	serviceHandler "github.com/agendahub/booking-api/internal/handler/service"
	userHandler "github.com/agendahub/booking-api/internal/handler/user"
	"github.com/agendahub/booking-api/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *authHandler.Handler
	User        *userHandler.Handler
	Business    *businessHandler.Handler
	Category    *categoryHandler.Handler
	Service     *serviceHandler.Handler
	Appointment *appointmentHandler.Handler
	Health      *healthHandler.Handler
}

// New assembles the gin engine with the standard middleware chain and
// every route group.
func New(cfg *config.Config, authMw *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	middleware.RegisterValidation()

	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := engine.Group("")
	h.Health.RegisterRoutes(root)

	authn := authMw.Authenticate()
	h.Auth.RegisterRoutes(root, authn)
	h.User.RegisterRoutes(root, authn)
	h.Business.RegisterRoutes(root, authn)
	h.Category.RegisterRoutes(root, authn)
	h.Service.RegisterRoutes(root, authn)
	h.Appointment.RegisterRoutes(root, authn)

	return engine
}
