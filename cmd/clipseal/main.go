package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	flag "github.com/spf13/pflag"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/clipseal/internal/adapter/driven/agecodec"
	"github.com/ericfisherdev/clipseal/internal/adapter/driven/clipboard"
	"github.com/ericfisherdev/clipseal/internal/adapter/driven/keystore"
	"github.com/ericfisherdev/clipseal/internal/adapter/driven/memstore"
	httphandler "github.com/ericfisherdev/clipseal/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/clipseal/internal/adapter/driving/web"
	"github.com/ericfisherdev/clipseal/internal/application"
	"github.com/ericfisherdev/clipseal/internal/config"
	"github.com/ericfisherdev/clipseal/internal/domain/port/driven"
	"github.com/ericfisherdev/clipseal/internal/metrics"
)

type options struct {
	configPath    string
	tui           bool
	askPassphrase bool
	logFile       string
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	flag.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file (default $CLIPSEAL_CONFIG)")
	flag.BoolVar(&opts.tui, "tui", false, "run the terminal panel instead of the HTTP server")
	flag.BoolVarP(&opts.askPassphrase, "ask-passphrase", "p", false, "prompt for the envelope passphrase")
	flag.StringVar(&opts.logFile, "log-file", "", "write logs to this file (terminal panel only)")
	flag.Parse()

	// 1. Load configuration (fail fast on invalid settings).
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.askPassphrase {
		passphrase, err := readPassphrase()
		if err != nil {
			return err
		}
		cfg.Passphrase = passphrase
	}

	logger, closeLog, err := newLogger(cfg, opts)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	mode := "identity"
	if cfg.HasPassphrase() {
		mode = "passphrase"
	}
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"mode", mode,
		"slots", cfg.Slots,
		"clipboard", cfg.Clipboard,
	)

	// 2. Wire driven adapters.
	codec, err := newCodec(cfg, logger)
	if err != nil {
		return err
	}

	store := memstore.New()
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("error wiping credential store", "error", closeErr)
		}
	}()

	cb, err := clipboard.Open(cfg.Clipboard, logger)
	if err != nil {
		return err
	}

	// 3. Wire application services.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	sanitizer := application.NewSanitizer(cb, nil, nil, m, logger)
	defer sanitizer.Close()

	workflow := application.NewWorkflowService(
		application.NewGenerator(nil, cfg.MaxLength),
		codec,
		store,
		sanitizer,
		m,
		logger,
	)

	if opts.tui {
		return runTUI(workflow, cb, cfg.Slots)
	}
	return serve(cfg, workflow, registry, logger)
}

func serve(cfg *config.Config, workflow *application.WorkflowService, registry *prometheus.Registry, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Limit(cfg.ImportRate), cfg.ImportBurst)
	apiHandler := httphandler.NewHandler(workflow, cfg.Slots, limiter, logger)
	webHandler := webhandler.NewHandler(workflow, cfg.Slots, cfg.MaxLength, logger)

	handler := httphandler.NewServeMux(apiHandler, registry, logger, func(mux *http.ServeMux) {
		webhandler.RegisterRoutes(mux, webHandler)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newCodec selects passphrase mode when a passphrase is configured and the
// stored X25519 identity otherwise.
func newCodec(cfg *config.Config, logger *slog.Logger) (driven.EnvelopeCodec, error) {
	if cfg.HasPassphrase() {
		return agecodec.NewPassphrase(cfg.Passphrase, cfg.ScryptWorkFactor, logger)
	}

	keys := keystore.New(cfg.KeyDir, logger)
	identity, err := keys.LoadOrCreate()
	if err != nil {
		return nil, err
	}
	logger.Info("identity loaded", "path", keys.Path(), "recipient", identity.Recipient().String())
	return agecodec.NewX25519(identity, logger), nil
}

// newLogger logs to stderr, or to opts.logFile while the terminal panel owns
// the screen.
func newLogger(cfg *config.Config, opts options) (*slog.Logger, func(), error) {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if !opts.tui {
		return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), func() {}, nil
	}
	if opts.logFile == "" {
		handlerOpts.Level = slog.LevelError + 1
		return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), func() {}, nil
	}

	f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, handlerOpts)), func() { _ = f.Close() }, nil
}
