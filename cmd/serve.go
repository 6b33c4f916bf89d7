package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/server"
	"github.com/desertthunder/traxyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

type headerWatcher interface {
	WatchHeaders(ctx context.Context, path string) error
}

// Serve runs the HTTP API and websocket event hub until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, converter := r.buildServer(ctx)
	err := server.Serve(ctx, cfg.Addr(), handler, r.logger)

	if converter.Cancel() {
		r.logger.Info("canceled running conversion")
	}
	converter.Wait()
	return err
}

// buildServer wires the API, event hub, converter and header watcher; they stop with ctx.
func (r *Runner) buildServer(ctx context.Context) (*server.BasicRouter, *tasks.Converter) {
	hub := server.NewEventHub(r.logger)
	go hub.Run(ctx)

	converter := r.newConverter(tasks.MultiEmitter{hub, tasks.EmitterFunc(r.logEvent)})

	var results server.Results
	if r.repo != nil {
		results = r.repo
	}

	if w, ok := r.searcher.(headerWatcher); ok && r.config.Search.HeadersPath != "" {
		if err := w.WatchHeaders(ctx, r.config.Search.HeadersPath); err != nil {
			r.logger.Warn("header file will not be reloaded", "error", err)
		}
	}

	router := server.NewBasicRouter()
	router.Use(server.Recoverer(r.logger), server.RequestLogger(r.logger))
	server.NewAPI(converter, results, r.searcher, r.logger).Register(router)
	router.Handler(hub)
	return router, converter
}

func (r *Runner) logEvent(event models.Event) error {
	switch event.Type {
	case models.EventProgress:
		if event.Progress != nil {
			r.logger.Debug(tasks.Describe(*event.Progress), "run", event.RunID)
		}
	case models.EventComplete:
		r.logger.Info("conversion complete", "run", event.RunID, "found", event.Result.Found, "total", event.Result.Total)
	case models.EventError:
		r.logger.Error("conversion failed", "run", event.RunID, "error", event.Message)
	}
	return nil
}
