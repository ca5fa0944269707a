package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"landslide-monitor/internal/registry"
)

// Dependencies groups everything the router serves
type Dependencies struct {
	Sites     *registry.Registry
	History   HistoryReader
	Statuses  StatusReader
	Scheduler StateReporter
	Websocket http.Handler
	Gatherer  prometheus.Gatherer
}

// NewRouter creates a gin engine with request logging and recovery
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	SetupRoutes(router, deps)
	return router
}

// SetupRoutes registers every HTTP route on router
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/healthz", HealthCheck(deps.Scheduler))

	if deps.Websocket != nil {
		router.GET("/ws", gin.WrapH(deps.Websocket))
	}
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.GET("/sites", ListSites(deps.Sites, deps.Statuses))
		api.GET("/sites/:site", GetSite(deps.Sites, deps.Statuses))
		api.GET("/status", GetStatus(deps.Statuses))
		api.GET("/history/:metric/:site", GetHistory(deps.History))
	}
}
