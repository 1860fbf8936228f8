// Package server exposes the HTTP API: document upload, analysis retrieval,
// category reassignment and CSV export.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/philvuai/bnk/internal/analyze"
	"github.com/philvuai/bnk/internal/storage"
)

// Server holds the HTTP API's dependencies.
type Server struct {
	store    *storage.SQLiteStorage
	analyzer *analyze.Analyzer
	logger   *slog.Logger
}

// New creates a Server over the given storage and analyzer.
func New(store *storage.SQLiteStorage, analyzer *analyze.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Router constructs the Gin engine with middleware and routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		RequestID(),
		Logging(s.logger),
		Recovery(s.logger),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api/v1")
	api.GET("/categories", s.listCategories)
	api.POST("/documents", s.uploadDocument)
	api.GET("/documents", s.listDocuments)
	api.GET("/documents/:id/analysis", s.getAnalysis)
	api.PATCH("/documents/:id/transactions/:index", s.updateTransactionCategory)
	api.GET("/documents/:id/export", s.exportCSV)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
