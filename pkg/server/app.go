// Package server owns the application lifecycle: scheduled scans, the
// HTTP API, and graceful shutdown of the infrastructure clients.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalPulse/internal/domain/repository"
	"SignalPulse/internal/provider"
	"SignalPulse/internal/usecase"
	pkgch "SignalPulse/pkg/clickhouse"
	"SignalPulse/pkg/config"
	xhttp "SignalPulse/pkg/http"
	applogger "SignalPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	scan       *usecase.ScanUseCase
	handler    xhttp.Handler
	stream     *provider.KlineStream
	store      repository.SignalStore
	publisher  repository.SignalPublisher
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. Stream, store,
// publisher and chClient may be nil when the matching subsystem is
// disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	scan *usecase.ScanUseCase,
	handler xhttp.Handler,
	stream *provider.KlineStream,
	store repository.SignalStore,
	publisher repository.SignalPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		scan:      scan,
		handler:   handler,
		stream:    stream,
		store:     store,
		publisher: publisher,
		chClient:  chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.store != nil {
		if err := a.store.Init(ctx); err != nil {
			a.log.Error("signal store init failed", applogger.Error(err))
			return err
		}
	}

	if a.stream != nil {
		go a.stream.Run(ctx)
	}

	go a.scanLoop(ctx)

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("signalpulse started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Binance.Symbols),
		applogger.Duration("scan_interval", a.cfg.Scan.Interval))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// scanLoop runs one scan immediately, then on the configured interval.
func (a *App) scanLoop(ctx context.Context) {
	a.runScan(ctx)

	ticker := time.NewTicker(a.cfg.Scan.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runScan(ctx)
		}
	}
}

func (a *App) runScan(ctx context.Context) {
	signals := a.scan.Scan(ctx)
	critical := a.scan.Critical()
	a.log.Info("scan finished",
		applogger.Int("signals", len(signals)),
		applogger.Int("critical", len(critical)))
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.stream != nil {
		a.stream.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
