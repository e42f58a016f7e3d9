package handler

import (
	"net/http"

	"backoffice/internal/metrics"
	"backoffice/internal/middleware"
	"backoffice/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Registrar is implemented by every handler that owns a route group.
type Registrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type RouterConfig struct {
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Auth        *middleware.Auth
	Hub         *websocket.Hub // nil disables /ws
	CORSOrigins []string
	Handlers    []Registrar
}

// NewRouter assembles the HTTP surface: middleware, operational endpoints and every
// handler's routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Request-ID"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	if cfg.Hub != nil {
		router.GET("/ws", func(c *gin.Context) {
			websocket.ServeWs(cfg.Hub, cfg.Auth, c)
		})
	}

	api := router.Group("")
	for _, h := range cfg.Handlers {
		h.RegisterRoutes(api)
	}

	return router
}
