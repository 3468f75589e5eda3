// Command accessmatrix serves the access matrix HTTP API over an in-memory
// store, optionally seeded from a YAML fixture file.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/xraph/accessmatrix"
	"github.com/xraph/accessmatrix/api"
	"github.com/xraph/accessmatrix/cache"
	"github.com/xraph/accessmatrix/seed"
	"github.com/xraph/accessmatrix/store/memory"
)

type options struct {
	addr      string
	seedPath  string
	logLevel  string
	logFormat string
	pageSize  int
	cacheTTL  time.Duration
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	flagSet := pflag.NewFlagSet("accessmatrix", pflag.ContinueOnError)
	flagSet.StringVar(&opts.addr, "addr", ":8080", "HTTP listen address")
	flagSet.StringVar(&opts.seedPath, "seed", "", "YAML file with roles, users, and grants to load at startup")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flagSet.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	flagSet.IntVar(&opts.pageSize, "page-size", 20, "default page size for rule listings")
	flagSet.DurationVar(&opts.cacheTTL, "cache-ttl", time.Minute, "access decision cache TTL (0 disables the cache)")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	logger, err := newLogger(opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(opts, logger)
	if err != nil {
		return err
	}

	if opts.seedPath != "" {
		f, err := seed.Load(opts.seedPath)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, svc, f, logger); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.New(svc, nil).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("accessmatrix listening", slog.String("addr", opts.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return svc.Stop(shutdownCtx)
}

func newService(opts options, logger *slog.Logger) (*accessmatrix.Service, error) {
	cfg := accessmatrix.DefaultConfig()
	cfg.DefaultPageSize = opts.pageSize
	cfg.CacheTTL = opts.cacheTTL

	svcOpts := []accessmatrix.Option{
		accessmatrix.WithStore(memory.New()),
		accessmatrix.WithLogger(logger),
		accessmatrix.WithConfig(cfg),
	}
	if opts.cacheTTL > 0 {
		svcOpts = append(svcOpts, accessmatrix.WithCache(cache.NewMemory(cache.WithTTL(opts.cacheTTL))))
	}
	return accessmatrix.NewService(svcOpts...)
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}
