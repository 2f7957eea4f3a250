// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mendel-inheritance-server/internal/annotation"
	"github.com/mendel-inheritance-server/internal/domain"
	"github.com/mendel-inheritance-server/internal/middleware"
	"github.com/mendel-inheritance-server/internal/pedigree"
	"github.com/mendel-inheritance-server/internal/report"
	"github.com/mendel-inheritance-server/internal/service"
)

// Server represents the HTTP server
type Server struct {
	config    *domain.Config
	logger    *logrus.Logger
	analyzer  *service.Analyzer
	annotator *annotation.CachedClient
	router    *gin.Engine
	server    *http.Server
}

// NewServer creates a new HTTP server instance. annotator may be nil to run
// without gene annotations.
func NewServer(cfg *domain.Config, logger *logrus.Logger, analyzer *service.Analyzer, annotator *annotation.CachedClient) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(logger))

	server := &Server{
		config:    cfg,
		logger:    logger,
		analyzer:  analyzer,
		annotator: annotator,
		router:    router,
	}
	server.setupRoutes()
	return server
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(10, 20))
	{
		v1.POST("/analyze", s.handleAnalyze)
	}
}

// pedigreeEntry is one pedigree row of an analysis request. Sex and affected
// status use PED codes ("1"/"2") or names ("male", "affected").
type pedigreeEntry struct {
	FamilyID string `json:"family_id"`
	SampleID string `json:"sample_id" binding:"required"`
	FatherID string `json:"father_id"`
	MotherID string `json:"mother_id"`
	Sex      string `json:"sex"`
	Affected string `json:"affected"`
}

// variantEntry is one variant of an analysis request.
type variantEntry struct {
	Chromosome  string            `json:"chromosome" binding:"required"`
	Position    int64             `json:"position" binding:"required"`
	Reference   string            `json:"reference" binding:"required"`
	Alternate   string            `json:"alternate" binding:"required"`
	GeneSymbols []string          `json:"gene_symbols"`
	Calls       map[string]string `json:"calls"`
}

type analyzeRequest struct {
	Pedigree  []pedigreeEntry `json:"pedigree" binding:"required,min=1"`
	Variants  []variantEntry  `json:"variants" binding:"required,min=1"`
	SampleIDs []string        `json:"sample_ids"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// handleAnalyze runs the deduction pipeline on an inline pedigree and
// variant set.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	individuals := make([]pedigree.Individual, 0, len(req.Pedigree))
	for _, entry := range req.Pedigree {
		individuals = append(individuals, pedigree.Individual{
			FamilyID: entry.FamilyID,
			SampleID: entry.SampleID,
			FatherID: entry.FatherID,
			MotherID: entry.MotherID,
			Sex:      domain.ParseSex(entry.Sex),
			Affected: domain.ParseAffectedStatus(entry.Affected),
		})
	}

	graph, err := pedigree.Build(individuals)
	if err != nil {
		var cycleErr *domain.PedigreeCycleError
		if errors.As(err, &cycleErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := make([]*domain.VariantRecord, 0, len(req.Variants))
	for _, entry := range req.Variants {
		records = append(records, &domain.VariantRecord{
			Chromosome:  domain.NormalizeChromosome(entry.Chromosome),
			Position:    entry.Position,
			Reference:   entry.Reference,
			Alternate:   entry.Alternate,
			GeneSymbols: entry.GeneSymbols,
			Calls:       entry.Calls,
		})
	}

	result, err := s.analyzer.Run(c.Request.Context(), graph, records, req.SampleIDs)
	if err != nil {
		s.logger.WithError(err).Error("Analysis request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rep := &report.Report{
		RunID: result.RunID,
		Rows:  report.BuildRows(result, records),
	}
	if s.annotator != nil {
		var symbols []string
		for _, rec := range records {
			symbols = append(symbols, rec.GeneSymbols...)
		}
		if anns := s.annotator.AnnotateGenes(c.Request.Context(), symbols); len(anns) > 0 {
			rep.Annotations = anns
		}
	}

	c.JSON(http.StatusOK, rep)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
