package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mevdschee/qsbulk/bulkinsert"
	"github.com/mevdschee/qsbulk/config"
	"github.com/mevdschee/qsbulk/metrics"
	"github.com/mevdschee/qsbulk/relay"
	"github.com/mevdschee/qsbulk/sink"
)

func main() {
	configPath := flag.String("config", "qsbulk.ini", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// logger is not configured yet
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("Failed to create logger", zap.Error(err))
	}

	err = run(cfg, *configPath, logger)
	if err != nil {
		logger.Error("qsbulk stopped with error", zap.Error(err))
	} else {
		logger.Info("qsbulk stopped gracefully")
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the service and blocks until a signal or a component failure
func run(cfg *config.Config, configPath string, logger *zap.Logger) error {
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sink.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connect to %s database: %w", cfg.Database.Driver, err)
	}
	defer db.Close()

	manager := bulkinsert.New(bulkinsert.Config{
		MaxRecords:     cfg.BulkInsert.MaxRecords,
		FlushInterval:  cfg.BulkInsert.FlushInterval,
		UseTransaction: cfg.BulkInsert.UseTransaction,
	}, bulkinsert.WithLogger(logger.Named("bulkinsert")))

	logger.Info("qsbulk starting",
		zap.Int("maxRecords", cfg.BulkInsert.MaxRecords),
		zap.Duration("flushInterval", cfg.BulkInsert.FlushInterval),
		zap.Bool("useTransaction", cfg.BulkInsert.UseTransaction))

	var producers io.Closer
	if cfg.Relay.Listen != "" {
		r := relay.New(cfg.Relay.Listen, manager, logger.Named("relay"))
		if err := r.Start(); err != nil {
			return fmt.Errorf("start relay: %w", err)
		}
		producers = r
	}

	g, gctx := errgroup.WithContext(ctx)

	// Metrics endpoint with pprof
	server := &http.Server{Addr: cfg.Metrics.Listen}
	http.Handle("/metrics", metrics.Handler())
	g.Go(func() error {
		logger.Info("Metrics endpoint started", zap.String("address", cfg.Metrics.Listen))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	monitor := sink.NewMonitor(db.DB(), logger.Named("database"))
	g.Go(func() error {
		monitor.StartHealthChecks(gctx, 10*time.Second)
		return nil
	})

	g.Go(func() error {
		return runManager(gctx, manager, db, cfg.BulkInsert.CheckInterval, producers)
	})

	g.Go(func() error {
		reloadOnHangup(gctx, configPath, manager, logger)
		return nil
	})

	return g.Wait()
}

// runManager drives the flush loop until ctx is done. Producers are closed
// before the loop is stopped, so its final flush sees every record they added.
func runManager(ctx context.Context, manager *bulkinsert.Manager, s sink.Executor, tick time.Duration, producers io.Closer) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	go func() {
		select {
		case <-ctx.Done():
		case <-loopCtx.Done():
			return
		}
		if producers != nil {
			producers.Close()
		}
		stopLoop()
	}()

	return manager.Run(loopCtx, s, tick)
}

// reloadOnHangup applies capacity and interval changes on SIGHUP
func reloadOnHangup(ctx context.Context, path string, manager *bulkinsert.Manager, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("Received SIGHUP, reloading configuration")
			newCfg, err := config.Load(path)
			if err != nil {
				logger.Error("Failed to reload config", zap.Error(err))
				continue
			}
			manager.SetMaxRecords(newCfg.BulkInsert.MaxRecords)
			manager.SetFlushInterval(newCfg.BulkInsert.FlushInterval)
			logger.Info("Configuration reloaded",
				zap.Int("maxRecords", newCfg.BulkInsert.MaxRecords),
				zap.Duration("flushInterval", newCfg.BulkInsert.FlushInterval))
		}
	}
}

// initLogger initializes the zap logger based on the log configuration
func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = parseLogLevel(cfg.Level)
	return zc.Build()
}

// parseLogLevel parses the log level string
func parseLogLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}
