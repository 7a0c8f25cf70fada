package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hydazz/parent-notifier/internal/config"
	"github.com/pkg/errors"
)

const collectPath = "/mp/collect"

// Client sends events through the GA4 Measurement Protocol, the server-side
// entry point of Firebase Analytics.
type Client struct {
	rest     *resty.Client
	cfg      config.AnalyticsConfig
	disabled bool
}

// EventError reports a failed delivery. Its text never carries the request
// URL, which holds the API secret.
type EventError struct {
	Event  string
	Reason string
}

func (e *EventError) Error() string {
	return fmt.Sprintf("analytics event %s failed: %s", e.Event, e.Reason)
}

type payload struct {
	ClientID string  `json:"client_id"`
	Events   []event `json:"events"`
}

type event struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
}

// New creates an analytics client. With an empty measurement id every
// LogEvent call is a no-op.
func New(cfg config.AnalyticsConfig) *Client {
	return NewWithHTTPClient(cfg, &http.Client{})
}

// NewWithHTTPClient creates an analytics client on top of hc.
func NewWithHTTPClient(cfg config.AnalyticsConfig, hc *http.Client) *Client {
	return &Client{
		rest: resty.NewWithClient(hc).
			SetBaseURL(cfg.Endpoint).
			SetTimeout(cfg.Timeout),
		cfg:      cfg,
		disabled: cfg.MeasurementID == "",
	}
}

// Enabled reports whether events are actually delivered.
func (c *Client) Enabled() bool {
	return !c.disabled
}

// LogEvent delivers a single named event with string parameters.
func (c *Client) LogEvent(ctx context.Context, name string, params map[string]string) error {
	if c.disabled {
		slog.Debug("Analytics disabled, dropping event", "event", name)
		return nil
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"measurement_id": c.cfg.MeasurementID,
			"api_secret":     c.cfg.APISecret,
		}).
		SetBody(payload{
			ClientID: c.cfg.ClientID,
			Events:   []event{{Name: name, Params: params}},
		}).
		Post(collectPath)
	if err != nil {
		return &EventError{Event: name, Reason: c.redact(transportReason(err))}
	}
	if res.IsError() {
		return &EventError{Event: name, Reason: "rejected with " + res.Status()}
	}

	slog.Debug("Analytics event logged", "event", name)
	return nil
}

// transportReason strips the request URL from a client error.
func transportReason(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}

func (c *Client) redact(s string) string {
	if c.cfg.APISecret == "" {
		return s
	}
	return strings.ReplaceAll(s, c.cfg.APISecret, "REDACTED")
}
