package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch"
	"github.com/goliatone/go-formdispatch/internal/config"
	"github.com/goliatone/go-formdispatch/pkg/binder"
	"github.com/goliatone/go-formdispatch/pkg/binding"
	"github.com/goliatone/go-formdispatch/pkg/renderers/tui"
	"github.com/goliatone/go-formdispatch/pkg/renderers/web"
)

func main() {
	configPath := flag.String("config", "", "config file (YAML, or JSON with comments)")
	mode := flag.String("mode", "", "host to run: tui or web")
	backend := flag.String("backend", "", "backend base URL")
	listen := flag.String("listen", "", "web listen address")
	bindings := flag.String("bindings", "", "binding table or OpenAPI document (path or URL)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formdispatch: %v\n", err)
		os.Exit(2)
	}
	applyFlags(&cfg, *mode, *backend, *listen, *bindings)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "formdispatch: %v\n", err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formdispatch: logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("formdispatch stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	loaderOptions := []binding.LoaderOption{}
	if cfg.Bindings.AllowHTTPURL {
		loaderOptions = append(loaderOptions, binding.WithHTTPFallback(cfg.Backend.Timeout.Std()))
	}
	table, err := formdispatch.LoadTable(ctx, formdispatch.NewLoader(loaderOptions...), cfg.Bindings.Source)
	if err != nil {
		return err
	}

	registry := binder.NewRegistry()
	registry.MustRegister(tui.New(table, tui.WithLogger(logger.Named("tui"))))
	webHost, err := web.New(table,
		web.WithAddr(cfg.Web.ListenAddr),
		web.WithTitle(cfg.Web.Title),
		web.WithTheme(web.DefaultManifest(), cfg.Web.ThemeVariant),
		web.WithLogger(logger.Named("web")),
	)
	if err != nil {
		return err
	}
	registry.MustRegister(webHost)

	host, err := registry.Get(cfg.Mode)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(registry.List(), ", "))
	}

	if _, err := formdispatch.Wire(host, table,
		formdispatch.WithBackend(cfg.Backend.URL),
		formdispatch.WithHeaders(cfg.Backend.Headers),
		formdispatch.WithTimeout(cfg.Backend.Timeout.Std()),
		formdispatch.WithBannerTTL(cfg.Bindings.BannerTTL.Std()),
		formdispatch.WithLogger(logger),
	); err != nil {
		return err
	}

	logger.Info("formdispatch starting",
		zap.String("mode", host.Name()),
		zap.String("backend", cfg.Backend.URL),
		zap.Int("bindings", table.Len()),
	)
	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func applyFlags(cfg *config.Config, mode, backend, listen, bindings string) {
	if mode = strings.TrimSpace(mode); mode != "" {
		cfg.Mode = strings.ToLower(mode)
	}
	if backend = strings.TrimSpace(backend); backend != "" {
		cfg.Backend.URL = backend
	}
	if listen = strings.TrimSpace(listen); listen != "" {
		cfg.Web.ListenAddr = listen
	}
	if bindings = strings.TrimSpace(bindings); bindings != "" {
		cfg.Bindings.Source = bindings
	}
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	zcfg.OutputPaths = []string{"stderr"}
	return zcfg.Build()
}
