package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	EndPointRoot    = "/"
	EndPointChat    = "/chat"
	EndPointStatus  = "/status"
	EndPointMetrics = "/metrics"

	// apiPrefix mirrors every endpoint for clients that expect /api/chat.
	apiPrefix = "/api"

	correlationKey = "correlation_id"
)

type RouterOptions struct {
	AllowedOrigins []string
	// Metrics is served on /metrics when set.
	Metrics http.Handler
}

// NewRouter builds the gin engine serving the relay endpoints.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.requestLogger())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET(EndPointRoot, h.handleRoot)
	for _, prefix := range []string{"", apiPrefix} {
		group := router.Group(prefix)
		group.POST(EndPointChat, h.handleChat)
		group.GET(EndPointStatus, h.handleStatus)
	}
	if opts.Metrics != nil {
		router.GET(EndPointMetrics, gin.WrapH(opts.Metrics))
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", correlationHeader}
	cfg.ExposeHeaders = []string{correlationHeader}
	cfg.AllowCredentials = true

	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := correlationID(c.GetHeader(correlationHeader))
		c.Set(correlationKey, id)
		c.Header(correlationHeader, id)

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		h.logger.InfoContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"correlation_id", id,
		)
	}
}

func (h *Handler) handleChat(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		status, payload := h.mapError(c.Request.Context(), err)
		c.JSON(status, payload)
		return
	}
	status, payload := h.chat(c.Request.Context(), body)
	c.JSON(status, payload)
}

func (h *Handler) handleStatus(c *gin.Context) {
	status, payload := h.status()
	c.JSON(status, payload)
}

func (h *Handler) handleRoot(c *gin.Context) {
	status, payload := root()
	c.JSON(status, payload)
}
