package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hydazz/parent-notifier/internal/diagnostic"
	"github.com/hydazz/parent-notifier/internal/feed"
	"github.com/hydazz/parent-notifier/internal/models"
)

type fakeRepo struct {
	calls int
}

func (r *fakeRepo) FetchEvents(ctx context.Context) (models.Batch, error) {
	r.calls++
	return models.Batch{Events: models.Events{
		models.NewEvent("k1", "Smoke detected", "2024-05-01T08:00:00"),
		models.NewEvent("k2", "Door opened", "2024-05-01T09:00:00"),
	}}, nil
}

type fakeDiagnostic struct {
	result diagnostic.Result
}

func (f fakeDiagnostic) Run(ctx context.Context) diagnostic.Result {
	return f.result
}

func newTestRouter(repo *fakeRepo, d Diagnostic) *gin.Engine {
	gin.SetMode(gin.TestMode)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
	return NewHandler(feed.NewPresenter(repo), d, metrics, "/metrics").Router()
}

func do(t *testing.T, r http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) feed.State {
	t.Helper()
	var s feed.State
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("invalid state body %q: %v", rec.Body.String(), err)
	}
	return s
}

func TestFeedRoutes(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, fakeDiagnostic{})

	rec := do(t, r, http.MethodGet, "/api/v1/feed")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if s := decodeState(t, rec); len(s.Events) != 0 || s.CurrentPage != 1 {
		t.Fatalf("unexpected initial state: %+v", s)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/feed/refresh")
	s := decodeState(t, rec)
	if len(s.Events) != 2 || s.Events[0].TimeOfDetection != "2024-05-01T09:00:00" {
		t.Fatalf("unexpected refreshed state: %+v", s)
	}
	if !strings.Contains(rec.Body.String(), `"alert_message":"Door opened"`) {
		t.Fatalf("unexpected json: %s", rec.Body.String())
	}

	do(t, r, http.MethodPost, "/api/v1/feed/next")
	do(t, r, http.MethodPost, "/api/v1/feed/previous")
	if repo.calls != 1 {
		t.Fatalf("paging on a single page must not fetch, got %d fetches", repo.calls)
	}
}

func TestTestConnectionRoute(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, fakeDiagnostic{result: diagnostic.Result{Message: "Database error: Permission denied"}})

	rec := do(t, r, http.MethodPost, "/api/v1/diagnostics/connection")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Permission denied") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestIndexAndMetrics(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, fakeDiagnostic{})

	if rec := do(t, r, http.MethodGet, "/"); !strings.Contains(rec.Body.String(), `href="/metrics"`) {
		t.Fatalf("unexpected index: %s", rec.Body.String())
	}
	if rec := do(t, r, http.MethodGet, "/metrics"); rec.Body.String() != "# metrics\n" {
		t.Fatalf("unexpected metrics body: %s", rec.Body.String())
	}
}

type slowRepo struct {
	entered chan struct{}
	release chan struct{}
}

func (r *slowRepo) FetchEvents(ctx context.Context) (models.Batch, error) {
	r.entered <- struct{}{}
	select {
	case <-ctx.Done():
		return models.Batch{}, ctx.Err()
	case <-r.release:
		return models.Batch{Events: models.Events{
			models.NewEvent("k1", "Smoke detected", "2024-05-01T08:00:00"),
		}}, nil
	}
}

func TestRefreshSurvivesClientDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &slowRepo{entered: make(chan struct{}, 1), release: make(chan struct{}, 1)}
	presenter := feed.NewPresenter(repo)
	r := NewHandler(presenter, fakeDiagnostic{}, http.NotFoundHandler(), "/metrics").Router()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/feed/refresh", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}()

	<-repo.entered
	cancel()
	repo.release <- struct{}{}
	<-done

	s := presenter.State()
	if s.ErrorMessage != "" {
		t.Fatalf("client disconnect leaked into shared state: %q", s.ErrorMessage)
	}
	if len(s.Events) != 1 {
		t.Fatalf("expected the fetch to complete, got %d events", len(s.Events))
	}
}
