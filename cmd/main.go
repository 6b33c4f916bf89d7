package main

import (
	"context"
	"os"

	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "traxyt",
		Usage:    "Turn chart track lists into YouTube playlists",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		After:    runner.After,
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
