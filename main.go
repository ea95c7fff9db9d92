package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/whiskeyjimbo/DNSWatch/internal/config"
	"github.com/whiskeyjimbo/DNSWatch/internal/health"
	"github.com/whiskeyjimbo/DNSWatch/internal/metrics"
	"github.com/whiskeyjimbo/DNSWatch/internal/notifications"
	"github.com/whiskeyjimbo/DNSWatch/internal/poller"
	"github.com/whiskeyjimbo/DNSWatch/internal/resolver"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg, err := config.Load(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnswatch: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health.SetReady(false)
	logStartup(logger, cfg)

	// The cache wraps the system resolver exactly once, before any
	// worker runs; workers treat the chain as read-only.
	res := resolver.WithCache(resolver.NewSystemResolver(cfg.PreferIPv4, cfg.Timeout), cfg.TTL)

	resolutionMetrics := metrics.NewResolutionMetrics(logger, cfg.Domain)
	if !cfg.WebDisabled {
		metrics.StartMetricsServer(logger, cfg.ListenAddress)
	}

	var wg sync.WaitGroup
	poller.Start(poller.PollContext{
		Ctx:      ctx,
		Logger:   logger,
		Domain:   cfg.Domain,
		Workers:  cfg.Workers,
		Interval: cfg.Interval,
		Resolver: res,
		State:    poller.NewState(),
		Metrics:  resolutionMetrics,
		Rules:    cfg.Rules,
		Notifier: notifications.NewLogNotifier(logger),
	}, &wg)
	health.SetReady(true)

	waitForShutdown(logger, cancel, &wg)
}

func initLogger(level string) *zap.SugaredLogger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dnswatch: invalid log level: %q\n", level)
		os.Exit(1)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)

	zapL, err := zapCfg.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapL.Sync()
	return zapL.Sugar()
}

func logStartup(logger *zap.SugaredLogger, cfg *config.Config) {
	logger.Infow("starting dnswatch",
		"domain", cfg.Domain,
		"workers", cfg.Workers,
		"interval", cfg.Interval.String(),
		"ttl_seconds", int(cfg.TTL.Seconds()),
		"cache_enabled", cfg.TTL > 0,
		"prefer_ipv4", cfg.PreferIPv4,
		"timeout", cfg.Timeout.String(),
	)
}

func waitForShutdown(logger *zap.SugaredLogger, cancel context.CancelFunc, wg *sync.WaitGroup) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("Received shutdown signal, exiting...")
	cancel()
	wg.Wait()
}
