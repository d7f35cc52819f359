// ABOUTME: HTTP server wiring auth, user resolution, and the orchestrator
// ABOUTME: Serves POST /v1/chat and GET /health with graceful shutdown

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/averla/assist-gateway/internal/auth"
	"github.com/averla/assist-gateway/internal/orchestrator"
	"github.com/averla/assist-gateway/internal/store"
)

// Conversationalist is what the gateway needs from the orchestrator.
type Conversationalist interface {
	Process(ctx context.Context, req orchestrator.Request) *orchestrator.Answer
}

// UserStore is what the gateway needs from the persistence layer.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
	TouchUserSeen(ctx context.Context, id string) error
}

// Config holds the gateway's dependencies.
type Config struct {
	Addr     string
	Verifier auth.TokenVerifier
	Users    UserStore
	Conv     Conversationalist
	Logger   *slog.Logger
}

// Gateway is the HTTP surface of the assistant.
type Gateway struct {
	addr     string
	verifier auth.TokenVerifier
	users    UserStore
	conv     Conversationalist
	logger   *slog.Logger

	server *http.Server
}

// New creates a gateway from its dependencies.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		addr:     cfg.Addr,
		verifier: cfg.Verifier,
		users:    cfg.Users,
		conv:     cfg.Conv,
		logger:   logger.With("component", "gateway"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/v1/chat", g.requireUser(g.handleChat))

	g.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// Handler returns the gateway's HTTP handler, for tests and embedding.
func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully with a 10 second drain window.
func (g *Gateway) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("gateway listening", "addr", g.addr)
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	g.logger.Info("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return <-errCh
}
