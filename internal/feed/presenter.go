package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/hydazz/parent-notifier/internal/firebase"
	"github.com/hydazz/parent-notifier/internal/models"
	"github.com/pkg/errors"
)

const invalidDataMessage = "No events found or invalid data format."

// Repository is the capability the presenter needs from the event store.
type Repository interface {
	FetchEvents(ctx context.Context) (models.Batch, error)
}

// Outcome classifies a completed fetch.
type Outcome string

// Fetch outcomes reported to a Recorder.
const (
	OutcomeSuccess     Outcome = "success"
	OutcomeInvalidData Outcome = "invalid_data"
	OutcomeRemoteError Outcome = "remote_error"
	OutcomeStale       Outcome = "stale"
)

// Recorder observes every completed fetch.
type Recorder interface {
	ObserveFetch(outcome Outcome, events, dropped int)
}

// State is what the rendering layer draws.
type State struct {
	Events       models.Events `json:"events"`
	CurrentPage  int           `json:"current_page"`
	TotalPages   int           `json:"total_pages"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Loading      bool          `json:"loading"`
	Dropped      int           `json:"dropped"`
	LastRefresh  time.Time     `json:"last_refresh"`
}

// PageLabel renders the pagination caption.
func (s State) PageLabel() string {
	return fmt.Sprintf("Page %d of %d", s.CurrentPage, s.TotalPages)
}

// Presenter owns the feed state. All mutations happen under mu; a fetch
// result is applied only if no newer fetch has been applied already.
type Presenter struct {
	repo     Repository
	recorder Recorder
	now      func() time.Time

	mu       sync.Mutex
	state    State
	issued   uint64
	applied  uint64
	inFlight int
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithRecorder attaches a fetch observer.
func WithRecorder(r Recorder) Option {
	return func(p *Presenter) {
		p.recorder = r
	}
}

// NewPresenter creates a presenter over repo, starting on page 1 of 1.
func NewPresenter(repo Repository, opts ...Option) *Presenter {
	p := &Presenter{
		repo: repo,
		now:  time.Now,
		state: State{
			Events:      models.Events{},
			CurrentPage: 1,
			TotalPages:  1,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns a copy of the current feed state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Refresh fetches the feed and applies the result. On failure the previous
// events stay in place and ErrorMessage is set.
func (p *Presenter) Refresh(ctx context.Context) State {
	p.mu.Lock()
	p.issued++
	token := p.issued
	p.inFlight++
	p.mu.Unlock()

	batch, err := p.repo.FetchEvents(ctx)

	var events models.Events
	if err == nil {
		events = sortEvents(batch.Events)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--

	if token <= p.applied {
		slog.Debug("Discarding stale fetch result", "token", token, "applied", p.applied)
		p.record(OutcomeStale, 0, 0)
		return p.snapshot()
	}
	p.applied = token

	if err != nil {
		outcome := classify(err)
		p.state.ErrorMessage = errorMessage(err)
		slog.Error("Error fetching events", "outcome", outcome, "error", err)
		p.record(outcome, 0, 0)
		return p.snapshot()
	}

	if batch.Dropped > 0 {
		slog.Warn("Dropped malformed detection records", "dropped", batch.Dropped, "kept", len(events))
	}

	p.state.Events = events
	p.state.TotalPages = 1
	p.state.ErrorMessage = ""
	p.state.Dropped = batch.Dropped
	p.state.LastRefresh = p.now()
	p.record(OutcomeSuccess, len(events), batch.Dropped)

	return p.snapshot()
}

// GoToPreviousPage moves one page back and refreshes. It does nothing on the
// first page.
func (p *Presenter) GoToPreviousPage(ctx context.Context) State {
	p.mu.Lock()
	if p.state.CurrentPage <= 1 {
		defer p.mu.Unlock()
		return p.snapshot()
	}
	p.state.CurrentPage--
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// GoToNextPage moves one page forward and refreshes. It does nothing on the
// last page.
func (p *Presenter) GoToNextPage(ctx context.Context) State {
	p.mu.Lock()
	if p.state.CurrentPage >= p.state.TotalPages {
		defer p.mu.Unlock()
		return p.snapshot()
	}
	p.state.CurrentPage++
	p.mu.Unlock()

	return p.Refresh(ctx)
}

// snapshot must be called with mu held.
func (p *Presenter) snapshot() State {
	s := p.state
	s.Events = make(models.Events, len(p.state.Events))
	copy(s.Events, p.state.Events)
	s.Loading = p.inFlight > 0
	return s
}

func (p *Presenter) record(outcome Outcome, events, dropped int) {
	if p.recorder != nil {
		p.recorder.ObserveFetch(outcome, events, dropped)
	}
}

// sortEvents orders newest first by plain string comparison of the
// detection time. Ties fall back to message then remote key.
func sortEvents(in models.Events) models.Events {
	out := make(models.Events, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.TimeOfDetection != b.TimeOfDetection {
			return a.TimeOfDetection > b.TimeOfDetection
		}
		if a.AlertMessage != b.AlertMessage {
			return a.AlertMessage < b.AlertMessage
		}
		return a.Key < b.Key
	})
	return out
}

func classify(err error) Outcome {
	if errors.Is(err, firebase.ErrInvalidDataFormat) {
		return OutcomeInvalidData
	}
	return OutcomeRemoteError
}

func errorMessage(err error) string {
	var rfe *firebase.RemoteFetchError
	switch {
	case errors.Is(err, firebase.ErrInvalidDataFormat):
		return invalidDataMessage
	case errors.As(err, &rfe):
		return rfe.Message
	default:
		return err.Error()
	}
}
