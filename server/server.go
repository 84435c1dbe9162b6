// Package server exposes the converter as an HTTP upload API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/wbrown/asciipng"
	"github.com/wbrown/asciipng/config"
	"github.com/wbrown/asciipng/logging"
	"github.com/wbrown/asciipng/perf"
)

// perfHistory is how many requests /debug/perf remembers.
const perfHistory = 100

// NewRoutes builds the HTTP handler for the service.
func NewRoutes(cfg config.Config, conv *asciipng.Converter, perfCollector *perf.PerfCollector) http.Handler {
	router := NewRouter(cfg, perfCollector,
		trackRequestPerf,
		logContextErrorsMiddleware,
		panicCatcherMiddleware,
	)

	router.Handle("POST /api/asciipng", "asciipng", APIASCIIPng(conv))
	router.Handle("GET /healthz", "healthz", Healthz)
	router.Handle("GET /debug/perf", "perf", DebugPerf)

	return router
}

// Run serves on cfg.Addr until ctx is cancelled, then shuts down
// gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg config.Config) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, cfg)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, cfg config.Config) error {
	defer logging.LogPanics(nil)

	perfCtx, cancelPerf := context.WithCancel(context.Background())
	defer cancelPerf()
	perfCollector := perf.RunPerfCollector(perfCtx, perfHistory)

	conv := asciipng.NewConverter(
		asciipng.WithMaxPixels(cfg.MaxPixels),
		asciipng.WithLogger(*logging.GlobalLogger()),
	)

	server := &http.Server{
		Handler:           NewRoutes(cfg, conv, perfCollector),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", ln.Addr().String()).Msg("Serving asciipng")
		serverErr <- server.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("Server shut down unexpectedly")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutting down the server")
	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(timeoutCtx); err != nil {
		logging.Warn().Err(err).Msg("Server did not shut down gracefully")
		return err
	}
	return nil
}
