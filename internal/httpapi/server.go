// Package httpapi exposes the service's stable HTTP contract: documents,
// generation, chat, and health. Framing only — the HTTP layer itself has
// no domain logic, just request decoding, orchestrator calls, and error
// mapping, so the plain standard library net/http is sufficient here.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/viant/ragvault/internal/chat"
	"github.com/viant/ragvault/internal/chunkstore"
	"github.com/viant/ragvault/internal/docregistry"
	"github.com/viant/ragvault/internal/ingestion"
	"github.com/viant/ragvault/internal/orchestrator"
	"github.com/viant/ragvault/internal/store"
	"github.com/viant/ragvault/internal/vectorindex"
)

const (
	ShutdownTimeout   = 10 * time.Second
	ReadHeaderTimeout = 10 * time.Second
	ReadTimeout       = 30 * time.Second
	WriteTimeout      = 120 * time.Second
	IdleTimeout       = 120 * time.Second
)

// Server is the HTTP server for the service's REST API.
type Server struct {
	mux *http.ServeMux
	log *zap.Logger

	documents   *DocumentHandler
	generate    *GenerateHandler
	chat        *ChatHandler
	health      *HealthHandler
	supplements *SupplementHandler
}

// Deps bundles every component the HTTP layer needs, already wired at
// startup.
type Deps struct {
	Orchestrator *orchestrator.Orchestrator
	Registry     *docregistry.Registry
	Pipeline     *ingestion.Pipeline
	Chunks       *chunkstore.Store
	ChatCtrl     *chat.Controller
	ConvStore    *store.ConversationStore
	Index        *vectorindex.Index
	Logger       *zap.Logger
}

func NewServer(d Deps) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:         mux,
		log:         d.Logger,
		documents:   NewDocumentHandler(d.Registry, d.Pipeline, d.Chunks, d.Logger),
		generate:    NewGenerateHandler(d.Orchestrator, d.Logger),
		chat:        NewChatHandler(d.Orchestrator, d.ChatCtrl, d.ConvStore, d.Logger),
		health:      NewHealthHandler(d.Index, d.Registry),
		supplements: NewSupplementHandler(d.Orchestrator, d.Registry, d.Logger),
	}
	s.documents.RegisterRoutes(mux)
	s.generate.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.health.RegisterRoutes(mux)
	s.supplements.RegisterRoutes(mux)
	return s
}

// Handler returns the HTTP handler with middleware applied: recovery wraps
// logging wraps the mux.
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.log), loggingMiddleware(s.log))
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
