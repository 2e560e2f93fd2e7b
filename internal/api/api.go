package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lpiteam/autoorder/internal/api/handlers"
	"github.com/lpiteam/autoorder/internal/api/middleware"
	"github.com/lpiteam/autoorder/internal/service"
)

// Options configure the HTTP router.
type Options struct {
	AllowedOrigins []string
	UrgentRatioPct int
}

// NewRouter builds the API surface around one OrderService.
func NewRouter(svc *service.OrderService, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Logger(),
		middleware.Recovery(),
	)

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(opts.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		orderHandler := handlers.NewOrderHandler(svc, opts.UrgentRatioPct)
		orders := v1.Group("/orders")
		{
			orders.POST("/calculate", orderHandler.Calculate)
			orders.GET("/summary", orderHandler.Summary)
		}

		settingsHandler := handlers.NewSettingsHandler(svc)
		settingsGroup := v1.Group("/settings")
		{
			settingsGroup.POST("/upload", settingsHandler.Upload)
			settingsGroup.GET("", settingsHandler.Get)
			settingsGroup.DELETE("/overrides", settingsHandler.ClearOverrides)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) (normalized []string, allowAll bool) {
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, true
		}
		normalized = append(normalized, strings.TrimSuffix(origin, "/"))
	}
	return normalized, false
}
