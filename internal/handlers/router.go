package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter registers the web, API, health and metrics routes. metrics may be
// nil to leave /metrics unregistered.
func NewRouter(h *Handler, log *zap.Logger, metrics http.Handler) (*gin.Engine, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	router.Use(RequestID())
	router.Use(Logger(log))
	router.Use(Recovery(log))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/", h.Index)
	router.POST("/predict", h.PredictForm)
	router.POST("/api/predict", h.PredictAPI)

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	return router, nil
}
