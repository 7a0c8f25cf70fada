package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hydazz/parent-notifier/internal/config"
)

type roundTripper func(req *http.Request) (*http.Response, error)

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req)
}

func newResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader("")),
	}
}

func testConfig() config.AnalyticsConfig {
	return config.AnalyticsConfig{
		MeasurementID: "G-TEST",
		APISecret:     "secret",
		ClientID:      "client",
		Endpoint:      "https://analytics.local",
	}
}

func TestLogEventSendsMeasurementProtocolPayload(t *testing.T) {
	var got payload
	client := NewWithHTTPClient(testConfig(), &http.Client{Transport: roundTripper(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/mp/collect" {
			return nil, fmt.Errorf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("measurement_id") != "G-TEST" || q.Get("api_secret") != "secret" {
			return nil, fmt.Errorf("unexpected query: %s", req.URL.RawQuery)
		}
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			return nil, err
		}
		return newResponse(http.StatusNoContent), nil
	})})

	err := client.LogEvent(context.Background(), "test_connection", map[string]string{"name": "Test Event"})
	if err != nil {
		t.Fatalf("log event failed: %v", err)
	}

	if got.ClientID != "client" || len(got.Events) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Events[0].Name != "test_connection" || got.Events[0].Params["name"] != "Test Event" {
		t.Fatalf("unexpected event: %+v", got.Events[0])
	}
}

func TestLogEventRejected(t *testing.T) {
	client := NewWithHTTPClient(testConfig(), &http.Client{Transport: roundTripper(func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusBadRequest), nil
	})})

	err := client.LogEvent(context.Background(), "test_connection", nil)
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestLogEventDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MeasurementID = ""
	client := NewWithHTTPClient(cfg, &http.Client{Transport: roundTripper(func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request to %s", req.URL)
		return newResponse(http.StatusNoContent), nil
	})})

	if err := client.LogEvent(context.Background(), "test_connection", nil); err != nil {
		t.Fatalf("disabled client must not fail: %v", err)
	}
}

func TestLogEventTimesOutOnStalledEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	client := NewWithHTTPClient(cfg, &http.Client{Transport: roundTripper(func(req *http.Request) (*http.Response, error) {
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(5 * time.Second):
			return newResponse(http.StatusNoContent), nil
		}
	})})

	start := time.Now()
	err := client.LogEvent(context.Background(), "test_connection", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("stalled endpoint blocked for %s", elapsed)
	}
}

func TestLogEventErrorHidesSecret(t *testing.T) {
	cfg := testConfig()
	cfg.APISecret = "s3cr3t-value"
	client := NewWithHTTPClient(cfg, &http.Client{Transport: roundTripper(func(req *http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial failed for %s", req.URL)
	})})

	err := client.LogEvent(context.Background(), "test_connection", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	for _, text := range []string{err.Error(), fmt.Sprintf("%+v", err)} {
		if strings.Contains(text, "s3cr3t-value") {
			t.Fatalf("error leaks the api secret: %s", text)
		}
		if strings.Contains(text, "\n") {
			t.Fatalf("error spans several lines: %q", text)
		}
	}
}

func TestEnabled(t *testing.T) {
	if !NewWithHTTPClient(testConfig(), &http.Client{}).Enabled() {
		t.Error("expected client with measurement id to be enabled")
	}
	cfg := testConfig()
	cfg.MeasurementID = ""
	if NewWithHTTPClient(cfg, &http.Client{}).Enabled() {
		t.Error("expected client without measurement id to be disabled")
	}
}
