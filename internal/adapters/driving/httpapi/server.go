package httpapi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/jarvis/internal/core/domain"
	"github.com/custodia-labs/jarvis/internal/core/ports/driving"
	"github.com/custodia-labs/jarvis/internal/logger"
)

// Server limits.
const (
	maxUploadBytes  = 64 << 20
	shutdownTimeout = 10 * time.Second
)

// Recorder receives request and answer metrics.
type Recorder interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	ObserveAnswer(status domain.AnswerStatus)
	Handler() http.Handler
}

// Deps holds the services the API is built on.
type Deps struct {
	Chat   driving.ChatService
	Search driving.SearchService

	// Uploads ingests uploaded files. It should delete each file once done.
	Uploads driving.DocumentService

	// Metrics is optional.
	Metrics Recorder

	// UploadDir receives temporary upload files. Empty uses os.TempDir().
	UploadDir string

	// Version is reported by the banner route.
	Version string
}

// Server is the HTTP API.
type Server struct {
	deps    Deps
	router  *gin.Engine
	pending sync.WaitGroup
}

// NewServer builds the router. Chat, Search and Uploads are required.
func NewServer(deps Deps) (*Server, error) {
	if deps.Chat == nil || deps.Search == nil || deps.Uploads == nil {
		return nil, errors.New("httpapi: chat, search and upload services are required")
	}
	if deps.UploadDir == "" {
		deps.UploadDir = os.TempDir()
	}

	s := &Server{deps: deps}
	s.router = s.newRouter()
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery(), requestLog(), cors())
	if s.deps.Metrics != nil {
		r.Use(instrument(s.deps.Metrics))
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}

	r.GET("/", s.root)
	r.GET("/health", s.health)
	r.POST("/chat", s.chat)
	r.POST("/upload", s.upload)
	r.GET("/supported-formats", s.supportedFormats)
	r.GET("/debug-search/:query", s.debugSearch)
	r.GET("/debug-upload-logs", s.debugUploadLogs)
	return r
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// and waits for background ingestions to finish.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("http: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Wait()
	return err
}

// Wait blocks until every background ingestion started by /upload ends.
func (s *Server) Wait() {
	s.pending.Wait()
}
