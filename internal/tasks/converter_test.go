package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/traxyt/internal/models"
	"github.com/desertthunder/traxyt/internal/shared"
)

type mockResolver struct {
	mu      sync.Mutex
	videos  map[string]*models.VideoCandidate
	calls   []string
	targets []int
	block   chan struct{}
	panics  bool
}

func (m *mockResolver) Resolve(ctx context.Context, query string, target int) *models.VideoCandidate {
	m.mu.Lock()
	m.calls = append(m.calls, query)
	m.targets = append(m.targets, target)
	block := m.block
	m.mu.Unlock()

	if m.panics {
		panic("resolver exploded")
	}
	if block != nil {
		<-block
	}
	return m.videos[query]
}

func (m *mockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockStore struct {
	mu      sync.Mutex
	created []*models.ConversionResult
	runIDs  []string
	err     error
}

func (m *mockStore) Create(runID string, result *models.ConversionResult) (*models.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, result)
	m.runIDs = append(m.runIDs, runID)
	return &models.StoredResult{ID: "stored", RunID: runID, Result: *result, CreatedAt: time.Now()}, nil
}

func (m *mockStore) Latest() (*models.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.created) == 0 {
		return nil, shared.ErrResultNotFound
	}
	last := len(m.created) - 1
	return &models.StoredResult{ID: "stored", RunID: m.runIDs[last], Result: *m.created[last]}, nil
}

func (m *mockStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []models.Event
	onEmit func(models.Event)
}

func (r *recordingEmitter) Emit(event models.Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	hook := r.onEmit
	r.mu.Unlock()
	if hook != nil {
		hook(event)
	}
	return nil
}

func (r *recordingEmitter) snapshot() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...)
}

func threeTracks() []models.Track {
	return []models.Track{
		{Position: "1", Artists: "Artist A", Title: "One", Version: "Original Mix", DurationSeconds: 200},
		{Position: "2"},
		{Position: "3", Artists: "Artist C", Title: "Three"},
	}
}

func threeVideos() map[string]*models.VideoCandidate {
	return map[string]*models.VideoCandidate{
		"Artist A - One - Original Mix": {ID: "aaa", Title: "Artist A - One", Duration: 230},
		"Artist C - Three":              {ID: "ccc", Title: "Artist C - Three", Duration: 300},
	}
}

func TestConverter(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		t.Run("converts tracks in order and skips empty queries", func(t *testing.T) {
			resolver := &mockResolver{videos: threeVideos()}
			store := &mockStore{}
			emitter := &recordingEmitter{}
			conv := NewConverter(ConverterOpts{Resolver: resolver, Store: store, Emitter: emitter})

			result, err := conv.Run(context.Background(), threeTracks())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if want := "https://youtube.com/watch_videos?video_ids=aaa,ccc"; result.URL() != want {
				t.Errorf("expected url %s, got %s", want, result.URL())
			}
			if result.Found != 2 || result.Total != 3 {
				t.Errorf("expected 2/3, got %d/%d", result.Found, result.Total)
			}
			if len(result.Results) != 3 {
				t.Fatalf("expected 3 outcomes, got %d", len(result.Results))
			}

			for i, outcome := range result.Results {
				if outcome.Index != i {
					t.Errorf("expected outcome %d to have index %d, got %d", i, i, outcome.Index)
				}
			}

			skipped := result.Results[1]
			if skipped.Status != models.StatusSkipped || skipped.Reason != "no query" {
				t.Errorf("expected skipped outcome, got %+v", skipped)
			}

			first := result.Results[0]
			if first.Status != models.StatusFound || first.VideoID != "aaa" || first.VideoDuration != 230 || first.DurationDiff != 30 {
				t.Errorf("unexpected first outcome %+v", first)
			}
			if third := result.Results[2]; third.DurationDiff != 0 {
				t.Errorf("expected no diff without track duration, got %d", third.DurationDiff)
			}

			if resolver.callCount() != 2 {
				t.Errorf("expected 2 lookups, got %d", resolver.callCount())
			}
			if resolver.targets[0] != 200 || resolver.targets[1] != 0 {
				t.Errorf("expected targets [200 0], got %v", resolver.targets)
			}

			var statuses []models.Status
			events := emitter.snapshot()
			for _, e := range events[:len(events)-1] {
				if e.Type != models.EventProgress {
					t.Fatalf("expected progress event, got %s", e.Type)
				}
				statuses = append(statuses, e.Progress.Status)
			}
			want := []models.Status{
				models.StatusSearching, models.StatusFound, models.StatusSkipped, models.StatusSearching, models.StatusFound,
			}
			if len(statuses) != len(want) {
				t.Fatalf("expected statuses %v, got %v", want, statuses)
			}
			for i := range want {
				if statuses[i] != want[i] {
					t.Errorf("status %d: expected %s, got %s", i, want[i], statuses[i])
				}
			}

			last := events[len(events)-1]
			if last.Type != models.EventComplete || last.Result != result {
				t.Errorf("expected complete event with result, got %+v", last)
			}

			state := conv.State()
			if state.Phase != models.PhaseCompleted || state.IsRunning {
				t.Errorf("expected completed idle state, got %+v", state)
			}
			if state.Current != 3 || state.Total != 3 {
				t.Errorf("expected 3/3, got %d/%d", state.Current, state.Total)
			}
			if state.Result != result {
				t.Error("expected state to carry the result")
			}
			if store.count() != 1 || store.runIDs[0] != state.RunID {
				t.Errorf("expected one stored result for run %s", state.RunID)
			}
		})

		t.Run("no matches yields nil playlist url", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{}})

			result, err := conv.Run(context.Background(), threeTracks())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.PlaylistURL != nil {
				t.Errorf("expected nil playlist url, got %s", *result.PlaylistURL)
			}
			if result.Found != 0 || result.Count(models.StatusNotFound) != 2 {
				t.Errorf("expected 0 found and 2 not found, got %+v", result)
			}
		})

		t.Run("empty track list completes", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{}})

			result, err := conv.Run(context.Background(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Total != 0 || len(result.Results) != 0 || result.PlaylistURL != nil {
				t.Errorf("unexpected result %+v", result)
			}
		})

		t.Run("candidate without id is not found", func(t *testing.T) {
			resolver := &mockResolver{videos: map[string]*models.VideoCandidate{"A - B": {Title: "no id", Duration: 200}}}
			conv := NewConverter(ConverterOpts{Resolver: resolver})

			result, err := conv.Run(context.Background(), []models.Track{{Artists: "A", Title: "B"}})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Results[0].Status != models.StatusNotFound {
				t.Errorf("expected not_found, got %s", result.Results[0].Status)
			}
		})

		t.Run("custom playlist base", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{
				Resolver:        &mockResolver{videos: threeVideos()},
				PlaylistBaseURL: "http://localhost:9000",
			})

			result, err := conv.Run(context.Background(), threeTracks())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.HasPrefix(result.URL(), "http://localhost:9000/watch_videos") {
				t.Errorf("expected custom base, got %s", result.URL())
			}
		})

		t.Run("persists before emitting complete", func(t *testing.T) {
			store := &mockStore{}
			persisted := -1
			emitter := &recordingEmitter{}
			emitter.onEmit = func(e models.Event) {
				if e.Type == models.EventComplete {
					persisted = store.count()
				}
			}
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{videos: threeVideos()}, Store: store, Emitter: emitter})

			if _, err := conv.Run(context.Background(), threeTracks()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if persisted != 1 {
				t.Errorf("expected result stored before complete event, got %d stored", persisted)
			}
		})

		t.Run("store failure does not fail the run", func(t *testing.T) {
			emitter := &recordingEmitter{}
			conv := NewConverter(ConverterOpts{
				Resolver: &mockResolver{videos: threeVideos()},
				Store:    &mockStore{err: errors.New("disk full")},
				Emitter:  emitter,
			})

			if _, err := conv.Run(context.Background(), threeTracks()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if state := conv.State(); state.Phase != models.PhaseCompleted {
				t.Errorf("expected completed, got %s", state.Phase)
			}
			events := emitter.snapshot()
			if events[len(events)-1].Type != models.EventComplete {
				t.Error("expected complete event")
			}
		})

		t.Run("canceled context fails the run", func(t *testing.T) {
			resolver := &mockResolver{videos: threeVideos()}
			emitter := &recordingEmitter{}
			conv := NewConverter(ConverterOpts{Resolver: resolver, Emitter: emitter})

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			result, err := conv.Run(ctx, threeTracks())
			if !errors.Is(err, shared.ErrConversionFailed) {
				t.Fatalf("expected ErrConversionFailed, got %v", err)
			}
			if result != nil {
				t.Error("expected no partial result")
			}
			if resolver.callCount() != 0 {
				t.Errorf("expected no lookups, got %d", resolver.callCount())
			}

			state := conv.State()
			if state.Phase != models.PhaseFailed || state.IsRunning || state.Result != nil {
				t.Errorf("unexpected state %+v", state)
			}
			if !strings.Contains(state.Error, "canceled") {
				t.Errorf("expected terse cancel message, got %q", state.Error)
			}

			events := emitter.snapshot()
			if len(events) != 1 || events[0].Type != models.EventError || events[0].Message != state.Error {
				t.Errorf("expected a single error event, got %+v", events)
			}
		})

		t.Run("panicking emitter does not stop the run", func(t *testing.T) {
			closed := make(chan models.Event)
			close(closed)

			emitters := map[string]Emitter{
				"closed channel": ChannelEmitter(closed),
				"panicking func": EmitterFunc(func(models.Event) error { panic("listener gone") }),
			}
			for name, emitter := range emitters {
				t.Run(name, func(t *testing.T) {
					conv := NewConverter(ConverterOpts{Resolver: &mockResolver{videos: threeVideos()}, Emitter: emitter})

					result, err := conv.Run(context.Background(), threeTracks())
					if err != nil {
						t.Fatalf("expected no error, got %v", err)
					}
					if len(result.Results) != 3 {
						t.Errorf("expected 3 outcomes, got %d", len(result.Results))
					}
					if state := conv.State(); state.Phase != models.PhaseCompleted {
						t.Errorf("expected completed, got %s", state.Phase)
					}
				})
			}
		})

		t.Run("skipped tracks do not wait", func(t *testing.T) {
			resolver := &mockResolver{}
			conv := NewConverter(ConverterOpts{Resolver: resolver, Delay: DelayPolicy{Min: time.Hour}})

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := conv.Run(ctx, []models.Track{{}, {Position: "2"}, {}})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Count(models.StatusSkipped) != 3 {
				t.Errorf("expected 3 skipped, got %+v", result.Results)
			}
			if resolver.callCount() != 0 {
				t.Errorf("expected no lookups, got %d", resolver.callCount())
			}
		})

		t.Run("searched track waits once", func(t *testing.T) {
			pause := 50 * time.Millisecond
			conv := NewConverter(ConverterOpts{
				Resolver: &mockResolver{videos: threeVideos()},
				Delay:    DelayPolicy{Min: pause},
			})

			start := time.Now()
			if _, err := conv.Run(context.Background(), []models.Track{{}, threeTracks()[0]}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if elapsed := time.Since(start); elapsed < pause || elapsed >= 2*pause+time.Second {
				t.Errorf("expected a single pause of %v, took %v", pause, elapsed)
			}
		})

		t.Run("panic becomes failure", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{panics: true}})

			if _, err := conv.Run(context.Background(), threeTracks()); !errors.Is(err, shared.ErrConversionFailed) {
				t.Fatalf("expected ErrConversionFailed, got %v", err)
			}
			state := conv.State()
			if state.Phase != models.PhaseFailed || state.Error != "conversion failed: internal error" {
				t.Errorf("unexpected state %+v", state)
			}
		})

		t.Run("missing resolver", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{})
			if _, err := conv.Run(context.Background(), threeTracks()); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Start", func(t *testing.T) {
		t.Run("rejects a second run while one is active", func(t *testing.T) {
			resolver := &mockResolver{videos: threeVideos(), block: make(chan struct{})}
			conv := NewConverter(ConverterOpts{Resolver: resolver})

			runID, err := conv.Start(context.Background(), threeTracks())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			before := conv.State()
			if _, err := conv.Start(context.Background(), threeTracks()); !errors.Is(err, shared.ErrConversionInProgress) {
				t.Fatalf("expected ErrConversionInProgress, got %v", err)
			}
			if _, err := conv.Run(context.Background(), threeTracks()); !errors.Is(err, shared.ErrConversionInProgress) {
				t.Fatalf("expected ErrConversionInProgress from Run, got %v", err)
			}

			after := conv.State()
			if after.RunID != runID || after.RunID != before.RunID || !after.IsRunning {
				t.Errorf("expected running state for %s to be untouched, got %+v", runID, after)
			}

			close(resolver.block)
			conv.Wait()

			if state := conv.State(); state.Phase != models.PhaseCompleted {
				t.Fatalf("expected completed, got %s", state.Phase)
			}

			nextID, err := conv.Start(context.Background(), threeTracks())
			if err != nil {
				t.Fatalf("expected a new run to start, got %v", err)
			}
			if nextID == runID {
				t.Error("expected a fresh run ID")
			}
			conv.Wait()
		})

		t.Run("outlives the caller's context", func(t *testing.T) {
			resolver := &mockResolver{videos: threeVideos(), block: make(chan struct{})}
			conv := NewConverter(ConverterOpts{Resolver: resolver})

			ctx, cancel := context.WithCancel(context.Background())
			if _, err := conv.Start(ctx, threeTracks()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			cancel()
			close(resolver.block)
			conv.Wait()

			state := conv.State()
			if state.Phase != models.PhaseCompleted || state.Result == nil || state.Result.Found != 2 {
				t.Errorf("expected completed run, got %+v", state)
			}
		})

		t.Run("Cancel stops the run", func(t *testing.T) {
			searched := make(chan struct{}, 8)
			emitter := &recordingEmitter{onEmit: func(e models.Event) {
				if e.Type == models.EventProgress && e.Progress.Status == models.StatusFound {
					searched <- struct{}{}
				}
			}}
			conv := NewConverter(ConverterOpts{
				Resolver: &mockResolver{videos: threeVideos()},
				Emitter:  emitter,
				Delay:    DelayPolicy{Min: time.Hour},
			})

			if conv.Cancel() {
				t.Error("expected nothing to cancel while idle")
			}

			if _, err := conv.Start(context.Background(), threeTracks()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			select {
			case <-searched:
			case <-time.After(5 * time.Second):
				t.Fatal("timed out waiting for first track")
			}

			if !conv.Cancel() {
				t.Fatal("expected active run to be canceled")
			}
			conv.Wait()

			state := conv.State()
			if state.Phase != models.PhaseFailed || state.Result != nil {
				t.Errorf("expected failed state without result, got %+v", state)
			}
			if state.Current != 1 {
				t.Errorf("expected progress to stop at track 1, got %d", state.Current)
			}

			events := emitter.snapshot()
			if last := events[len(events)-1]; last.Type != models.EventError {
				t.Errorf("expected error event last, got %s", last.Type)
			}
		})
	})

	t.Run("LastResult", func(t *testing.T) {
		t.Run("without store", func(t *testing.T) {
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{}})
			if _, err := conv.LastResult(); !errors.Is(err, shared.ErrResultNotFound) {
				t.Errorf("expected ErrResultNotFound, got %v", err)
			}
		})

		t.Run("after a run", func(t *testing.T) {
			store := &mockStore{}
			conv := NewConverter(ConverterOpts{Resolver: &mockResolver{videos: threeVideos()}, Store: store})
			if _, err := conv.Run(context.Background(), threeTracks()); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			last, err := conv.LastResult()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if last.RunID != conv.State().RunID || last.Result.Found != 2 {
				t.Errorf("unexpected stored result %+v", last)
			}
		})
	})

	t.Run("State starts idle", func(t *testing.T) {
		state := NewConverter(ConverterOpts{}).State()
		if state.Phase != models.PhaseIdle || state.IsRunning || state.LastProgress != nil {
			t.Errorf("expected idle state, got %+v", state)
		}
	})
}

func TestEmitters(t *testing.T) {
	t.Run("ChannelEmitter drops when full", func(t *testing.T) {
		ch := make(chan models.Event, 1)
		emitter := ChannelEmitter(ch)

		if err := emitter.Emit(models.Event{Type: models.EventProgress}); err != nil {
			t.Fatalf("expected first event to be delivered, got %v", err)
		}
		if err := emitter.Emit(models.Event{Type: models.EventComplete}); !errors.Is(err, errEventDropped) {
			t.Fatalf("expected dropped event, got %v", err)
		}
		if got := <-ch; got.Type != models.EventProgress {
			t.Errorf("expected progress event, got %s", got.Type)
		}
	})

	t.Run("MultiEmitter fans out", func(t *testing.T) {
		first, second := &recordingEmitter{}, &recordingEmitter{}
		failing := EmitterFunc(func(models.Event) error { return errors.New("closed") })

		err := MultiEmitter{first, nil, failing, second}.Emit(models.Event{Type: models.EventError})
		if err == nil || !strings.Contains(err.Error(), "closed") {
			t.Errorf("expected joined error, got %v", err)
		}
		if len(first.snapshot()) != 1 || len(second.snapshot()) != 1 {
			t.Error("expected every emitter to receive the event")
		}
	})
}

func TestDelayPolicy(t *testing.T) {
	t.Run("zero policy does not pause", func(t *testing.T) {
		start := time.Now()
		if err := (DelayPolicy{}).Wait(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Error("expected no pause")
		}
	})

	t.Run("Next stays in range", func(t *testing.T) {
		d := DelayPolicy{Min: 400 * time.Millisecond, Spread: 200 * time.Millisecond}
		for range 100 {
			if n := d.Next(); n < d.Min || n >= d.Min+d.Spread {
				t.Fatalf("pause %v outside [%v, %v)", n, d.Min, d.Min+d.Spread)
			}
		}
	})

	t.Run("Wait returns on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := (DelayPolicy{Min: time.Hour}).Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Wait sleeps", func(t *testing.T) {
		if err := (DelayPolicy{Min: 5 * time.Millisecond}).Wait(context.Background()); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("NewDelayPolicy", func(t *testing.T) {
		d := NewDelayPolicy(shared.DelayConfig{MinMS: 400, SpreadMS: 200})
		if d.Min != 400*time.Millisecond || d.Spread != 200*time.Millisecond {
			t.Errorf("unexpected policy %+v", d)
		}
	})
}

func TestDescribe(t *testing.T) {
	track := models.Track{Position: "7"}
	tests := []struct {
		name  string
		event models.ProgressEvent
		want  string
	}{
		{"skipped", skippedUpdate(1, 3, track), `[1/3] skipped track "7": no query`},
		{"searching", searchingUpdate(2, 3, track, "A - B"), "[2/3] searching A - B..."},
		{"found", foundUpdate(2, 3, track, "A - B", &models.VideoCandidate{ID: "x", Title: "A B"}, 0), "[2/3] found A B"},
		{"found with diff", foundUpdate(2, 3, track, "A - B", &models.VideoCandidate{ID: "x", Title: "A B"}, 12), "[2/3] found A B (off by 12s)"},
		{"not found", notFoundUpdate(3, 3, track, "C - D"), "[3/3] no match for C - D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.event); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
