// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newspulse/internal/logger"
	"github.com/deusflow/newspulse/internal/news"
)

// Analyzer runs one company analysis.
type Analyzer interface {
	Analyze(ctx context.Context, company string, n int) (*news.Analysis, error)
}

type Handler struct {
	analyzer Analyzer
	timeout  time.Duration
}

// NewHandler creates a handler. timeout bounds each analysis; zero means
// the request context alone.
func NewHandler(analyzer Analyzer, timeout time.Duration) *Handler {
	return &Handler{analyzer: analyzer, timeout: timeout}
}

// Analyze handles GET /analyze/:company.
func (h *Handler) Analyze(c *gin.Context) {
	company := c.Param("company")

	n := news.DefaultArticles
	if raw, ok := c.GetQuery("num_articles"); ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "num_articles must be an integer"})
			return
		}
		n = parsed
	}

	if err := news.ValidateRequest(company, n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	analysis, err := h.analyzer.Analyze(ctx, company, n)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, NewDocument(analysis))
	case errors.Is(err, news.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, news.ErrNoResults):
		c.JSON(http.StatusNotFound, gin.H{"detail": "No valid news articles found for " + company})
	default:
		logger.Error("Analysis failed", "company", company, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
