// Package server exposes the tutor over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/olytutor/internal/metrics"
	"github.com/abhisek/olytutor/internal/progress"
	"github.com/abhisek/olytutor/internal/questions"
	"github.com/abhisek/olytutor/internal/tutor"
)

// Options wires the server's collaborators. Questions and Tutor are nil
// when no LLM provider is configured; their routes then answer 503.
type Options struct {
	Progress  *progress.Service
	Questions *questions.Service
	Tutor     *tutor.Tutor
	Metrics   *metrics.Metrics
	Logger    logrus.FieldLogger
}

// Server handles the HTTP API.
type Server struct {
	progress  *progress.Service
	questions *questions.Service
	tutor     *tutor.Tutor
	metrics   *metrics.Metrics
	log       logrus.FieldLogger
}

// New creates a Server.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		progress:  opts.Progress,
		questions: opts.Questions,
		tutor:     opts.Tutor,
		metrics:   opts.Metrics,
		log:       log,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.ginlogger)
	router.Use(s.metricsMiddleware)

	router.GET("/healthz", s.handleHealth)
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler(s.log)))
	}

	api := router.Group("/api")
	api.POST("/format", s.handleFormat)
	api.GET("/subject", s.handleGetSubject)
	api.PUT("/subject", s.handleSetSubject)
	api.DELETE("/subject", s.handleClearSubject)
	api.GET("/profile", s.handleProfile)
	api.GET("/attempts", s.handleListAttempts)
	api.GET("/attempts/:id", s.handleGetAttempt)

	llmRouter := api.Group("")
	llmRouter.Use(s.llmRequired)
	llmRouter.GET("/daily", s.handleDaily)
	llmRouter.POST("/attempts", s.handleSubmit)
	llmRouter.POST("/attempts/:id/messages", s.handleFollowUp)
	llmRouter.POST("/solve", s.handleSolve)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) ginlogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	fields := logrus.Fields{
		"method":     c.Request.Method,
		"route":      c.FullPath(),
		"status":     c.Writer.Status(),
		"latency_ms": time.Since(start).Milliseconds(),
	}
	for _, ginErr := range c.Errors {
		s.log.WithFields(fields).Error(ginErr.Error())
	}
	if len(c.Errors) == 0 {
		s.log.WithFields(fields).Debug("http request")
	}
}

func (s *Server) metricsMiddleware(c *gin.Context) {
	if s.metrics == nil {
		c.Next()
		return
	}
	s.metrics.IncrementHTTPRequests()
	now := time.Now()

	c.Next()

	elapsed := float64(time.Since(now)) / float64(time.Second)
	status := c.Writer.Status()
	if status < 200 || status > 299 {
		s.metrics.IncrementHTTPErrors()
	}

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	s.metrics.ObserveAPIEndpointDuration(route, c.Request.Method, strconv.Itoa(status), elapsed)
}

func (s *Server) llmRequired(c *gin.Context) {
	if s.questions == nil || s.tutor == nil {
		s.abort(c, http.StatusServiceUnavailable, errNoProvider)
		return
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
