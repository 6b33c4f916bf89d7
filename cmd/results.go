package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/traxyt/internal/formatter"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/desertthunder/traxyt/internal/tasks"
	"github.com/urfave/cli/v3"
)

type storedWithLog struct {
	*models.StoredResult
	SearchLog []models.SearchLogEntry `json:"searchLog"`
}

// ResultsLast prints the most recently saved result.
func (r *Runner) ResultsLast(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.results()
	if err != nil {
		return err
	}

	stored, err := repo.Latest()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stored, true)
	}
	return r.writeStored(stored, cmd.String("format"))
}

// ResultsList prints a summary line per saved result.
func (r *Runner) ResultsList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.results()
	if err != nil {
		return err
	}

	stored, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if stored == nil {
			stored = []*models.StoredResult{}
		}
		return r.writeJSON(stored, true)
	}

	if len(stored) == 0 {
		return r.writePlain("No saved results. Run 'traxyt convert' first.\n")
	}

	r.writePlainHeader(fmt.Sprintf("%d saved results", len(stored)))
	for _, s := range stored {
		playlist := s.Result.URL()
		if playlist == "" {
			playlist = "(no playlist)"
		}
		r.writePlain("%s  %s  %d/%d  %s\n",
			s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Result.Found, s.Result.Total, playlist)
	}
	return nil
}

// ResultsShow prints one saved result followed by its search log.
func (r *Runner) ResultsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: result id", shared.ErrMissingArgument)
	}

	repo, err := r.results()
	if err != nil {
		return err
	}

	stored, err := repo.Get(id)
	if err != nil {
		return err
	}
	entries, err := repo.SearchLog(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(storedWithLog{StoredResult: stored, SearchLog: entries}, true)
	}

	if err := r.writeStored(stored, cmd.String("format")); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	r.writePlainln("Search log:")
	for _, e := range entries {
		line := fmt.Sprintf("%3d  %-9s  %s", e.Position+1, e.Status, e.Query)
		if e.VideoID != "" {
			line += fmt.Sprintf("  → %s (±%ds)", e.VideoID, e.DurationDiff)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// ResultsExport writes saved results to one file each, with a manifest.
func (r *Runner) ResultsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.results()
	if err != nil {
		return err
	}
	stored, err := repo.List(cmd.Int("limit"))
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return r.writePlain("No saved results to export.\n")
	}

	bar := newProgressBar(r.errOutput, len(stored))
	result, err := tasks.BulkExport(ctx, stored, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("dir"),
		NumWorkers: cmd.Int("workers"),
		OnProgress: func(done, total int, run tasks.ExportRun) {
			bar.Describe(run.ID)
			bar.Set(done)
		},
	})
	bar.Finish()
	if err != nil {
		return err
	}

	for _, run := range result.Runs {
		if run.Error != "" {
			r.logger.Warn("export failed", "id", run.ID, "error", run.Error)
		}
	}
	return r.writePlain("✓ Exported %d/%d results to %s\n", result.Succeeded, result.Total, result.OutputDirectory)
}

// ResultsDelete removes a saved result.
func (r *Runner) ResultsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: result id", shared.ErrMissingArgument)
	}

	repo, err := r.results()
	if err != nil {
		return err
	}
	if err := repo.Delete(id); err != nil {
		return err
	}

	r.logger.Info("result deleted", "id", id)
	return r.writePlain("✓ Deleted %s\n", id)
}

func (r *Runner) writeStored(stored *models.StoredResult, formatName string) error {
	format, err := formatter.ParseFormat(formatName)
	if err != nil {
		return err
	}

	var data []byte
	if format == formatter.FormatMarkdown {
		data, err = formatter.ExportToMarkdown(&stored.Result, stored.CreatedAt)
	} else {
		data, err = formatter.Export(&stored.Result, format)
	}
	if err != nil {
		return err
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
