package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/traxyt/internal/formatter"
	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

const (
	defaultExportWorkers = 4
	maxExportWorkers     = 10
	manifestName         = "export_manifest.json"
)

// BulkExportOpts contains configuration for exporting many stored results.
type BulkExportOpts struct {
	Format     formatter.Format                   // Export format for every file
	OutputDir  string                             // Base output directory (default: traxyt_export_{epoch})
	NumWorkers int                                // Concurrent writers (default: 4)
	OnProgress func(done, total int, r ExportRun) // Optional, called once per finished result
}

// ExportRun reports the file written for one stored result.
type ExportRun struct {
	ID    string `json:"id"`
	RunID string `json:"runId"`
	File  string `json:"file,omitempty"`
	Error string `json:"error,omitempty"`
}

// BulkExportResult is also written to the output directory as the manifest.
type BulkExportResult struct {
	OutputDirectory string      `json:"outputDirectory"`
	Format          string      `json:"format"`
	Total           int         `json:"total"`
	Succeeded       int         `json:"succeeded"`
	Failed          int         `json:"failed"`
	Runs            []ExportRun `json:"runs"`
	ManifestPath    string      `json:"-"`
}

type exportJob struct {
	index  int
	stored *models.StoredResult
}

type exportOutcome struct {
	index int
	run   ExportRun
}

// BulkExport writes each stored result to its own file using a small worker pool.
//
// A failed file does not stop the others; runs are reported in input order.
func BulkExport(ctx context.Context, stored []*models.StoredResult, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("traxyt_export_%d", time.Now().Unix())
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultExportWorkers
	}
	if opts.NumWorkers > maxExportWorkers {
		opts.NumWorkers = maxExportWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		OutputDirectory: opts.OutputDir,
		Format:          string(opts.Format),
		Total:           len(stored),
		Runs:            make([]ExportRun, len(stored)),
	}

	jobs := make(chan exportJob, len(stored))
	outcomes := make(chan exportOutcome, len(stored))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, outcomes, opts)
	}

	for i, s := range stored {
		jobs <- exportJob{index: i, stored: s}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	done := 0
	for o := range outcomes {
		done++
		result.Runs[o.index] = o.run
		if o.run.Error == "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(stored), o.run)
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestName)
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker drains jobs until the channel closes or ctx is done.
func exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, outcomes chan<- exportOutcome, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		outcomes <- exportOutcome{index: job.index, run: exportOne(job.stored, opts)}
	}
}

func exportOne(stored *models.StoredResult, opts BulkExportOpts) ExportRun {
	run := ExportRun{ID: stored.ID, RunID: stored.RunID}

	var data []byte
	var err error
	if opts.Format == formatter.FormatMarkdown {
		data, err = formatter.ExportToMarkdown(&stored.Result, stored.CreatedAt)
	} else {
		data, err = formatter.Export(&stored.Result, opts.Format)
	}
	if err != nil {
		run.Error = err.Error()
		return run
	}

	name := fmt.Sprintf("%04d_%s.%s", stored.Sequence, stored.ID, opts.Format.Extension())
	path := filepath.Join(opts.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		run.Error = fmt.Sprintf("write failed: %v", err)
		return run
	}
	run.File = path
	return run
}
