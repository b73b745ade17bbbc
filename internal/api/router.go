// Package api serves the web dashboard and the JSON metrics endpoints on top
// of the persisted monitor logs.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homesoc/internal/store"
)

// NewRouter wires the dashboard and API routes. history may be nil when the
// DuckDB mirror is disabled; the trends endpoint then reports unavailability.
func NewRouter(s *store.JSONL, history *store.History, log logrus.FieldLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogging(log))

	h := NewHandler(s, history, log)
	r.GET("/", h.Dashboard)
	api := r.Group("/api")
	{
		api.GET("/metrics", h.Metrics)
		api.GET("/alerts", h.Alerts)
		api.GET("/trends", h.Trends)
	}
	return r
}

func requestLogging(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(started).Round(time.Microsecond).String(),
		}).Debug("http request")
	}
}
