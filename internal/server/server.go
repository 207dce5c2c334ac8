// Package server exposes the chat search workflow over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/xzayogn/jobchat/internal/memory"
	"github.com/xzayogn/jobchat/internal/workflow"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Port           int
	AllowedOrigins []string
}

// queryRunner is the workflow surface the handlers need.
type queryRunner interface {
	Run(ctx context.Context, sessionID, text string, pageSize int) workflow.Response
}

type Server struct {
	cfg   Config
	wf    queryRunner
	store *memory.Store
	log   *zap.Logger
}

func New(cfg Config, wf queryRunner, store *memory.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		cfg:   cfg,
		wf:    wf,
		store: store,
		log:   log,
	}
}

// Handler builds the full middleware chain around the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: s.handleWelcome,
	}))
	mux.HandleFunc("/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: s.handleSearch,
	}))
	mux.HandleFunc("/history/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    s.handleHistory,
		http.MethodDelete: s.handleClearHistory,
	}))

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return s.recoverPanics(c.Handler(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("api server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panicked",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
