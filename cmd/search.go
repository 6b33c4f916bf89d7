package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/traxyt/internal/services"
	"github.com/desertthunder/traxyt/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search resolves one query, printing the chosen video or every candidate.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if r.searcher == nil {
		return fmt.Errorf("%w: search service not initialized", shared.ErrServiceUnavailable)
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	target := 0
	if text := cmd.String("duration"); text != "" {
		if target = shared.ParseDuration(text); target == 0 {
			return fmt.Errorf("%w: duration %q", shared.ErrInvalidArgument, text)
		}
	}

	r.logger.Info("searching", "service", r.searcher.Name(), "query", query, "target", target)

	if cmd.Bool("all") {
		return r.searchAll(ctx, cmd, query, target)
	}

	match := r.searcher.Resolve(ctx, query, target)
	if match == nil {
		return fmt.Errorf("%w: %s", shared.ErrNoCandidates, query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(match, true)
	}

	r.writePlain("Title: %s\n", match.Title)
	if match.Channel != "" {
		r.writePlain("Channel: %s\n", match.Channel)
	}
	r.writePlain("Duration: %s\n", shared.FormatDuration(match.Duration))
	if target > 0 {
		r.writePlain("Off by: %ds\n", abs(match.Duration-target))
	}
	r.writePlain("URL: %s\n", services.WatchURL(match.ID))
	return nil
}

func (r *Runner) searchAll(ctx context.Context, cmd *cli.Command, query string, target int) error {
	candidates, err := r.searcher.Candidates(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoCandidates, query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(candidates, true)
	}

	best := candidates[0].ID
	if target > 0 {
		if match, ok := services.BestDurationMatch(candidates, target); ok {
			best = match.ID
		}
	}

	r.writePlainHeader(fmt.Sprintf("%d candidates for %q", len(candidates), query))
	for i, c := range candidates {
		marker := " "
		if c.ID == best {
			marker = "*"
		}
		r.writePlain("%s %2d. %s [%s] %s\n", marker, i+1, c.Title, c.DurationText, c.ID)
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
