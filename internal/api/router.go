// internal/api/router.go
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/common/observability"
)

// NewRouter builds the gin engine with the full route table.
func NewRouter(svc *Service, cfg *config.Config, log logger.Logger, obs *observability.Observability) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(Recovery(log))
	r.Use(RequestID())
	r.Use(Telemetry(obs))
	r.Use(RequestLogger(log))

	limiter := NewRateLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst)

	r.GET("/health", svc.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	mvp := r.Group("/mvp", limiter.Middleware())
	{
		mvp.POST("/query", svc.PostQuery)
		mvp.GET("/user-data", svc.GetUserData)
		mvp.GET("/intents", svc.GetIntents)
		mvp.GET("/users", svc.GetUsers)
		mvp.GET("/admins", svc.GetAdmins)
	}

	return r
}
