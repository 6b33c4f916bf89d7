// package tasks implements the chart-to-playlist conversion run.
//
// The core type is [Converter], which owns the single conversion slot, searches each track in turn,
// and reports progress through an [Emitter] without ever blocking on it.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/services"
	"github.com/desertthunder/traxyt/internal/shared"
)

const skipReasonNoQuery = "no query"

var errEventDropped = errors.New("event dropped")

// Resolver finds one video for a query. A nil result means no match.
type Resolver interface {
	Resolve(ctx context.Context, query string, target int) *models.VideoCandidate
}

// ResultStore persists finished results and recovers the latest one.
type ResultStore interface {
	Create(runID string, result *models.ConversionResult) (*models.StoredResult, error)
	Latest() (*models.StoredResult, error)
}

// Emitter forwards events to UI listeners. Returned errors are logged and otherwise ignored.
type Emitter interface {
	Emit(event models.Event) error
}

// EmitterFunc adapts a function to [Emitter].
type EmitterFunc func(event models.Event) error

// Emit calls f(event).
func (f EmitterFunc) Emit(event models.Event) error {
	return f(event)
}

// ChannelEmitter sends events to a channel without blocking.
type ChannelEmitter chan<- models.Event

// Emit sends event or drops it when the channel is full.
func (c ChannelEmitter) Emit(event models.Event) error {
	select {
	case c <- event:
		return nil
	default:
		return errEventDropped
	}
}

// MultiEmitter fans an event out to every emitter, returning the joined errors.
type MultiEmitter []Emitter

// Emit implements [Emitter].
func (m MultiEmitter) Emit(event models.Event) error {
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ConverterOpts configures a [Converter]. Resolver is required.
type ConverterOpts struct {
	Resolver        Resolver
	Store           ResultStore
	Emitter         Emitter
	Delay           DelayPolicy
	PlaylistBaseURL string
	Logger          *log.Logger
}

// Converter runs at most one conversion at a time and exposes its state.
type Converter struct {
	resolver        Resolver
	store           ResultStore
	emitter         Emitter
	delay           DelayPolicy
	playlistBaseURL string
	logger          *log.Logger

	mu     sync.Mutex
	state  models.ConversionState
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConverter creates an idle Converter.
func NewConverter(opts ConverterOpts) *Converter {
	c := &Converter{
		resolver:        opts.Resolver,
		store:           opts.Store,
		emitter:         opts.Emitter,
		delay:           opts.Delay,
		playlistBaseURL: opts.PlaylistBaseURL,
		logger:          opts.Logger,
	}
	if c.playlistBaseURL == "" {
		c.playlistBaseURL = services.DefaultPlaylistBaseURL
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard)
	}
	return c
}

// Start claims the conversion slot and converts tracks in the background.
//
// The run outlives ctx's cancellation but keeps its values; use [Converter.Cancel] to stop it.
// Returns [shared.ErrConversionInProgress] without touching state when a run is active.
func (c *Converter) Start(ctx context.Context, tracks []models.Track) (string, error) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runID, err := c.begin(len(tracks), cancel)
	if err != nil {
		cancel()
		return "", err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.execute(runCtx, runID, tracks)
	}()
	return runID, nil
}

// Run claims the conversion slot and converts tracks on the calling goroutine.
func (c *Converter) Run(ctx context.Context, tracks []models.Track) (*models.ConversionResult, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID, err := c.begin(len(tracks), cancel)
	if err != nil {
		return nil, err
	}
	return c.execute(runCtx, runID, tracks)
}

// Cancel stops the active run, if any. The run ends in the failed phase at its next track boundary.
func (c *Converter) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsRunning || c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// Wait blocks until a run started with [Converter.Start] has finished.
func (c *Converter) Wait() {
	c.wg.Wait()
}

// State returns a snapshot of the conversion slot.
func (c *Converter) State() models.ConversionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastResult returns the most recently persisted result.
func (c *Converter) LastResult() (*models.StoredResult, error) {
	if c.store == nil {
		return nil, shared.ErrResultNotFound
	}
	return c.store.Latest()
}

func (c *Converter) begin(total int, cancel context.CancelFunc) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsRunning {
		return "", shared.ErrConversionInProgress
	}

	runID := shared.GenerateID()
	c.state = models.ConversionState{
		Phase:     models.PhaseRunning,
		IsRunning: true,
		RunID:     runID,
		Total:     total,
	}
	c.cancel = cancel
	return runID, nil
}

func (c *Converter) execute(ctx context.Context, runID string, tracks []models.Track) (result *models.ConversionResult, err error) {
	logger := shared.WithLogger(c.logger, "run", runID)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", "panic", r)
			result, err = nil, fmt.Errorf("%w: internal error", shared.ErrConversionFailed)
		}
		if err != nil {
			c.fail(runID, err)
		}
	}()

	if c.resolver == nil {
		return nil, fmt.Errorf("%w: no resolver configured", shared.ErrServiceUnavailable)
	}

	logger.Info("conversion started", "tracks", len(tracks))

	total := len(tracks)
	outcomes := make([]models.TrackOutcome, 0, total)
	var videoIDs []string

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrConversionFailed, err)
		}

		current := i + 1
		query := track.Query()
		if query == "" {
			outcomes = append(outcomes, models.TrackOutcome{Index: i, Status: models.StatusSkipped, Reason: skipReasonNoQuery})
			c.progress(runID, skippedUpdate(current, total, track))
			continue
		}

		c.progress(runID, searchingUpdate(current, total, track, query))

		outcome := models.TrackOutcome{Index: i, Status: models.StatusNotFound, Query: query}
		if video := c.resolver.Resolve(ctx, query, track.DurationSeconds); video != nil && video.ID != "" {
			diff := 0
			if track.DurationSeconds > 0 {
				diff = absInt(video.Duration - track.DurationSeconds)
			}

			outcome.Status = models.StatusFound
			outcome.VideoID = video.ID
			outcome.VideoTitle = video.Title
			outcome.VideoDuration = video.Duration
			outcome.DurationDiff = diff
			videoIDs = append(videoIDs, video.ID)

			c.progress(runID, foundUpdate(current, total, track, query, video, diff))
		} else {
			c.progress(runID, notFoundUpdate(current, total, track, query))
		}
		outcomes = append(outcomes, outcome)

		if err := c.delay.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrConversionFailed, err)
		}
	}

	result = &models.ConversionResult{
		Found:   len(videoIDs),
		Total:   total,
		Results: outcomes,
	}
	if len(videoIDs) > 0 {
		url := services.BuildPlaylistURL(c.playlistBaseURL, videoIDs)
		result.PlaylistURL = &url
	}

	c.persist(logger, runID, result)
	c.complete(result)
	c.emit(completeEvent(runID, result))

	logger.Info("conversion finished", "found", result.Found, "total", result.Total)
	return result, nil
}

// persist saves result. A failed save is logged and does not fail the run.
func (c *Converter) persist(logger *log.Logger, runID string, result *models.ConversionResult) {
	if c.store == nil {
		return
	}
	if _, err := c.store.Create(runID, result); err != nil {
		logger.Warn("failed to persist result", "error", err)
	}
}

func (c *Converter) progress(runID string, update models.ProgressEvent) {
	c.mu.Lock()
	c.state.Current = update.Current
	c.state.Total = update.Total
	c.state.LastProgress = &update
	c.mu.Unlock()

	c.emit(progressEvent(runID, update))
}

func (c *Converter) complete(result *models.ConversionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Phase = models.PhaseCompleted
	c.state.IsRunning = false
	c.state.Result = result
	c.cancel = nil
}

func (c *Converter) fail(runID string, err error) {
	c.mu.Lock()
	c.state.Phase = models.PhaseFailed
	c.state.IsRunning = false
	c.state.Result = nil
	c.state.Error = err.Error()
	c.cancel = nil
	c.mu.Unlock()

	c.logger.Error("conversion failed", "run", runID, "error", err)
	c.emit(errorEvent(runID, err))
}

func (c *Converter) emit(event models.Event) {
	if c.emitter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("event not delivered", "type", event.Type, "panic", r)
		}
	}()
	if err := c.emitter.Emit(event); err != nil {
		c.logger.Debug("event not delivered", "type", event.Type, "error", err)
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
