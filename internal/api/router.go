package api

import (
	"net/http"

	"github.com/RichardoC/parentpal/internal/auth"
	"github.com/RichardoC/parentpal/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface. staticDir, when set, is served for every
// path no API route claims.
func NewRouter(h *Handler, sessions *auth.Manager, logger *zap.Logger, staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(logger),
		metrics.Middleware(),
		sessions.Middleware(logger),
	)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/chat", h.HandleChat)
	api.GET("/chat", h.GetChat)
	api.DELETE("/chat", h.DeleteChat)
	api.GET("/history", h.GetHistory)
	api.GET("/catalog", h.GetCatalog)

	generators := api.Group("", auth.RequireSession())
	generators.POST("/advice", h.GenerateAdvice)
	generators.POST("/milestones", h.GenerateMilestones)
	generators.POST("/challenges", h.GenerateChallenges)
	generators.POST("/routines", h.GenerateRoutine)

	if staticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	}

	return r
}
