package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkravchenko/sessiongate/internal/handlers"
	"github.com/mkravchenko/sessiongate/internal/identity"
	"github.com/mkravchenko/sessiongate/internal/logger"
	"github.com/mkravchenko/sessiongate/internal/service/refresher"
	"github.com/mkravchenko/sessiongate/internal/service/session"
	"github.com/mkravchenko/sessiongate/internal/service/verifier"
	"github.com/mkravchenko/sessiongate/internal/store/memory"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Identity API client shared by verifier and refresher
	client := identity.NewClient(c.IdentityAddr, c.RequestTimeout, log)

	// Initialize services
	store := memory.NewStore()
	verifierService := verifier.NewService(client, log)
	refreshOrchestrator := refresher.New(client, log)
	sessionService := session.NewService(verifierService, refreshOrchestrator, store, log)

	cookies, err := session.NewCookieManager(session.CookieConfig{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating cookie manager. Err: %w", err)
	}

	mux := handlers.NewRouter(sessionService, cookies, log)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
