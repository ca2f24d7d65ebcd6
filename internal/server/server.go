package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/ghost-job-detector/internal/db"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Analyzer runs one analysis per job record.
type Analyzer interface {
	Analyze(ctx context.Context, job *types.JobRecord) (*types.AnalysisResult, error)
}

// Ingestor builds job records from URLs or pasted text.
type Ingestor interface {
	FromURL(ctx context.Context, urlStr string) (*types.JobRecord, error)
	FromText(ctx context.Context, text, sourceURL string) (*types.JobRecord, error)
}

// Store is the persistence surface the API needs. *db.DB implements it;
// a nil Store turns the service into a stateless analyzer.
type Store interface {
	SaveAnalysis(ctx context.Context, job *types.JobRecord, result *types.AnalysisResult) error
	History(ctx context.Context, limit int) ([]db.HistoryEntry, error)
	GetStats(ctx context.Context) (*db.Stats, error)
	GetCompanyInsight(ctx context.Context, company string) (*db.CompanyInsight, error)
	RecordOutcome(ctx context.Context, company string, responded, interview, hired bool, recordedAt time.Time) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	ingestor   Ingestor
	store      Store
	validate   *validator.Validate
	log        *zap.Logger
}

// Config holds server configuration
type Config struct {
	Port int
}

// New creates a new server instance. ingestor and store may be nil;
// the corresponding endpoints then report their absence.
func New(cfg Config, analyzer Analyzer, ingestor Ingestor, store Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		analyzer: analyzer,
		ingestor: ingestor,
		store:    store,
		validate: validator.New(),
		log:      log,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the route table. Exposed so tests can drive the mux
// without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /companies/{name}", s.handleCompany)
	mux.HandleFunc("POST /outcomes", s.handleOutcome)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withLogging(s.withCORS(mux))
}

// Start begins listening and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}

	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
