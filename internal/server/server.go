package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hydazz/parent-notifier/internal/diagnostic"
	"github.com/hydazz/parent-notifier/internal/feed"
)

// Feed is the presenter surface served over HTTP.
type Feed interface {
	State() feed.State
	Refresh(ctx context.Context) feed.State
	GoToPreviousPage(ctx context.Context) feed.State
	GoToNextPage(ctx context.Context) feed.State
}

// Diagnostic runs the connectivity check.
type Diagnostic interface {
	Run(ctx context.Context) diagnostic.Result
}

// Handler serves the feed API.
type Handler struct {
	feed        Feed
	diagnostic  Diagnostic
	metrics     http.Handler
	metricsPath string
}

// NewHandler creates a handler serving f and d.
func NewHandler(f Feed, d Diagnostic, metrics http.Handler, metricsPath string) *Handler {
	return &Handler{
		feed:        f,
		diagnostic:  d,
		metrics:     metrics,
		metricsPath: metricsPath,
	}
}

// Router builds the gin engine with all routes attached.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", h.handleIndex)
	r.GET(h.metricsPath, gin.WrapH(h.metrics))

	api := r.Group("/api/v1")
	api.GET("/feed", h.handleGetFeed)
	api.POST("/feed/refresh", h.handleRefresh)
	api.POST("/feed/next", h.handleNextPage)
	api.POST("/feed/previous", h.handlePreviousPage)
	api.POST("/diagnostics/connection", h.handleTestConnection)

	return r
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.Header("Content-Type", "text/html")
	c.String(http.StatusOK, `<html>
<head><title>Parent Notifier</title></head>
<body>
<h1>Parent Notifier</h1>
<p><a href="/api/v1/feed">Feed</a></p>
<p><a href="%s">Metrics</a></p>
</body>
</html>`, h.metricsPath)
}

func (h *Handler) handleGetFeed(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.State())
}

func (h *Handler) handleRefresh(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Refresh(detached(c)))
}

func (h *Handler) handleNextPage(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.GoToNextPage(detached(c)))
}

func (h *Handler) handlePreviousPage(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.GoToPreviousPage(detached(c)))
}

func (h *Handler) handleTestConnection(c *gin.Context) {
	res := h.diagnostic.Run(detached(c))
	status := http.StatusOK
	if !res.Connected {
		status = http.StatusBadGateway
	}
	c.JSON(status, res)
}

// detached keeps request values but is not cancelled when the client goes away.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
