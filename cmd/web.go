/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/CAFxX/httpcompression"
	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/humaidq/labx/config"
	"github.com/humaidq/labx/pipeline"
	"github.com/humaidq/labx/routes"
	"github.com/humaidq/labx/static"
	"github.com/humaidq/labx/templates"
)

// Version is set at build time.
var Version = "dev"

const (
	compressMinSize  = 1000
	shutdownTimeout  = 10 * time.Second
	readHeaderLimit  = 10 * time.Second
	readTimeout      = 2 * time.Minute
	writeTimeout     = 15 * time.Minute
	idleTimeout      = 2 * time.Minute
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"start", "run"},
		Usage:   "Start the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   config.Default().Host,
				Sources: cli.EnvVars("LABX_HOST"),
				Usage:   "the web server host",
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   config.Default().Port,
				Sources: cli.EnvVars("LABX_PORT"),
				Usage:   "the web server port",
			},
			&cli.StringFlag{
				Name:    "csrf-secret",
				Sources: cli.EnvVars("LABX_CSRF_SECRET"),
				Usage:   "secret for CSRF tokens; a random one is used when empty",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cmd.IsSet("csrf-secret") {
		cfg.CSRFSecret = cmd.String("csrf-secret")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.CSRFSecret == "" {
		appLogger.Warn("CSRF secret not set, tokens will not survive a restart")
		cfg.CSRFSecret = uuid.NewString()
	}

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRuntime(rt)

	f, err := newWebApp(rt.pipeline, cfg)
	if err != nil {
		return err
	}

	compress, err := httpcompression.DefaultAdapter(httpcompression.MinSize(compressMinSize))
	if err != nil {
		return fmt.Errorf("failed to set up compression: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           compress(f),
		ReadHeaderTimeout: readHeaderLimit,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          serverStdLogger,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting web server", "addr", cfg.Addr(), "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}

	return nil
}

// newWebApp builds the flamego app serving the JSON API and the upload pages.
func newWebApp(p *pipeline.Pipeline, cfg config.Config) (*flamego.Flame, error) {
	fs, err := template.EmbedFS(templates.Templates, ".", []string{".html"})
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	f := flamego.New()
	f.Use(routes.RequestID())
	f.Use(routes.RequestLogger)
	f.Use(flamego.Recovery())
	f.Use(template.Templater(template.Options{
		FileSystem: fs,
	}))
	f.Use(flamego.Static(flamego.StaticOptions{
		FileSystem: http.FS(static.Static),
	}))

	f.Map(p)
	f.Map(routes.BuildInfo{Version: Version})

	uploadLimit := routes.UploadLimit(routes.UploadBodyLimit(cfg))

	f.Get("/health", routes.Health)
	f.Post("/extract", uploadLimit, routes.Extract)
	f.Post("/analyse", uploadLimit, routes.Analyse)

	f.Group("", func() {
		f.Get("/", routes.Index)
		f.Post("/view", uploadLimit, csrf.Validate, routes.View)
	}, session.Sessioner(), csrf.Csrfer(csrf.Options{
		Secret: cfg.CSRFSecret,
	}), routes.NoCacheHeaders(), routes.FlashInjector(), routes.CSRFInjector())

	f.NotFound(routes.NotFound)

	return f, nil
}
