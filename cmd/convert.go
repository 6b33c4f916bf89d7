package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/traxyt/internal/formatter"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/desertthunder/traxyt/internal/tasks"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// Convert reads a track list, runs a conversion, and prints or saves the result.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: tracks file or directory", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := formatter.ReadTracks(path)
	if err != nil {
		return err
	}
	r.logger.Info("loaded tracks", "path", path, "count", len(tracks))

	var result *models.ConversionResult
	if cmd.Bool("tui") {
		result, err = r.convertTUI(ctx, tracks)
	} else {
		result, err = r.convertPlain(ctx, tracks)
	}
	if err != nil {
		return err
	}
	if result == nil {
		r.logger.Warn("conversion did not finish")
		return nil
	}

	if err := r.writeResult(result, format, cmd.String("output")); err != nil {
		return err
	}

	if cmd.Bool("open") {
		r.open(result.URL())
	}
	return nil
}

// convertPlain runs the conversion with a progress bar on the error stream.
func (r *Runner) convertPlain(ctx context.Context, tracks []models.Track) (*models.ConversionResult, error) {
	bar := newProgressBar(r.errOutput, len(tracks))
	emitter := tasks.EmitterFunc(func(event models.Event) error {
		switch event.Type {
		case models.EventProgress:
			if event.Progress == nil {
				return nil
			}
			bar.Describe(tasks.Describe(*event.Progress))
			if event.Progress.Status != models.StatusSearching {
				return bar.Set(event.Progress.Current)
			}
		case models.EventError:
			r.logger.Error("conversion failed", "error", event.Message)
		}
		return nil
	})

	result, err := r.newConverter(emitter).Run(ctx, tracks)
	bar.Finish()
	return result, err
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// writeResult prints result in format, or saves it when path is set.
func (r *Runner) writeResult(result *models.ConversionResult, format formatter.Format, path string) error {
	if path != "" {
		written, err := formatter.WriteExport(result, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("result saved", "path", written)
		return r.writePlain("Saved %d/%d matches to %s\n", result.Found, result.Total, written)
	}

	data, err := formatter.Export(result, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) open(url string) {
	if url == "" {
		r.logger.Warn("nothing matched, no playlist to open")
		return
	}
	if err := r.openBrowser(url); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
	}
}
