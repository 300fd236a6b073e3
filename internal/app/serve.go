package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vk/ednavoyage/internal/httpapi"
	"github.com/vk/ednavoyage/internal/live"
	"github.com/vk/ednavoyage/internal/records"
	"github.com/vk/ednavoyage/internal/sequencer"
)

const shutdownTimeout = 5 * time.Second

// runServe serves the API and live feed until ctx is done or the process is
// interrupted.
func (a *App) runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, a.config.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			a.logger.Error("Failed to close document store.", "error", err)
		}
	}()

	seq, err := sequencer.New(a.config.SequencerConfig(), sequencer.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer seq.Cancel()

	hub := live.NewHub(ctx, seq)
	defer hub.Close()

	api := httpapi.New(ctx, httpapi.Services{
		Sequencer: seq,
		Users:     records.NewUsers(store),
		Analysis:  records.NewAnalysis(store),
		Projects:  records.NewProjects(store, nil),
		Live:      hub.Handler(),
	})

	ln, err := net.Listen("tcp", a.config.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Server.Listen, err)
	}
	srv := &http.Server{Handler: api, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info("API server listening.", "address", ln.Addr().String())
	seq.Start(ctx)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown failed: %w", err)
	}
	a.logger.Debug("API server shut down gracefully.")
	return nil
}
