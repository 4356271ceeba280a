package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/UkralStul/blogicum/internal/auth"
	"github.com/UkralStul/blogicum/internal/blog"
	"github.com/UkralStul/blogicum/internal/clock"
	"github.com/UkralStul/blogicum/internal/config"
	"github.com/UkralStul/blogicum/internal/session"
	"github.com/UkralStul/blogicum/internal/storage"
	"github.com/UkralStul/blogicum/internal/storage/gormstore"
	"github.com/UkralStul/blogicum/internal/storage/inmemory"
	"github.com/UkralStul/blogicum/internal/web"
)

func main() {
	configPath := pflag.StringP("config", "c", os.Getenv("BLOGICUM_CONFIG"), "path to YAML config file")
	storageType := pflag.String("storage", "", "storage type (in-memory, postgres or sqlite); overrides config")
	addr := pflag.String("addr", "", "listen address; overrides config")
	seed := pflag.Bool("seed", false, "fill storage with demo data (always on for in-memory storage)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *storageType != "" {
		cfg.Storage.Driver = *storageType
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, *seed, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openStore создает хранилище по настройкам. Вторым значением возвращает
// функцию, освобождающую соединения.
func openStore(cfg config.StorageConfig, clk clock.Clock) (storage.Storage, func() error, error) {
	opts := gormstore.Options{Debug: cfg.Debug, Clock: clk}
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err := gormstore.OpenPostgres(cfg.DSN, opts)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverSQLite:
		s, err := gormstore.OpenSQLite(cfg.DSN, opts)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return inmemory.New(clk), func() error { return nil }, nil
	}
}

func run(cfg config.Config, seed bool, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()
	logger.Info("starting server", "storage", cfg.Storage.Driver, "addr", cfg.HTTP.Addr)

	store, closeStore, err := openStore(cfg.Storage, clk)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}()

	blogSvc := blog.New(store, clk, cfg.Pagination.PageSize)
	authSvc := auth.New(store, clk, auth.WithSessionTTL(cfg.Session.TTL))

	if n, err := authSvc.PurgeExpired(ctx); err != nil {
		logger.Warn("purge expired sessions", "error", err)
	} else if n > 0 {
		logger.Info("purged expired sessions", "count", n)
	}

	if seed || cfg.Storage.Driver == config.DriverInMemory {
		if err := fillWithDemoData(ctx, store, blogSvc, authSvc, clk); err != nil {
			return err
		}
		logger.Info("demo data filled", "username", demoUsername)
	}

	srv, err := web.New(web.Deps{
		Store:  store,
		Blog:   blogSvc,
		Auth:   authSvc,
		Clock:  clk,
		Logger: logger,
		Cookie: session.Cookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		Media: web.MediaOptions{
			Dir:            cfg.Media.Dir,
			URL:            cfg.Media.URL,
			MaxUploadBytes: cfg.Media.MaxUploadBytes,
		},
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "url", "http://localhost"+cfg.HTTP.Addr+"/")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
