package diagnostic

import (
	"context"
	"log/slog"
)

const (
	EventName        = "test_connection"
	EventDisplayName = "Test Event"
	EventDescription = "Testing Firebase Analytics connection."

	WritePath  = "test_connection"
	WriteValue = "Firebase is connected!"

	successMessage = "Successfully connected to Firebase!"
)

// EventLogger delivers analytics events.
type EventLogger interface {
	Enabled() bool
	LogEvent(ctx context.Context, name string, params map[string]string) error
}

// ValueWriter writes a value to a database path.
type ValueWriter interface {
	WriteValue(ctx context.Context, path string, value interface{}) error
}

// Result is the outcome of a connectivity check.
type Result struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

// Checker verifies connectivity to the analytics sink and the database.
type Checker struct {
	events EventLogger
	writer ValueWriter
}

// NewChecker creates a checker over an analytics sink and a database writer.
func NewChecker(events EventLogger, writer ValueWriter) *Checker {
	return &Checker{events: events, writer: writer}
}

// Run sends the diagnostic analytics event alongside the fixed test write.
// Only the write decides the result; analytics failures are logged, and
// delivery is bounded by the analytics client timeout.
func (c *Checker) Run(ctx context.Context) Result {
	sent := make(chan struct{})
	go func() {
		defer close(sent)
		c.logEvent(ctx)
	}()

	res := c.write(ctx)
	<-sent
	return res
}

func (c *Checker) logEvent(ctx context.Context) {
	if !c.events.Enabled() {
		slog.Debug("Analytics disabled, skipping event", "event", EventName)
		return
	}

	if err := c.events.LogEvent(ctx, EventName, map[string]string{
		"name":        EventDisplayName,
		"description": EventDescription,
	}); err != nil {
		slog.Warn("Failed to log analytics event", "event", EventName, "error", err.Error())
		return
	}
	slog.Info("Analytics event logged", "event", EventName)
}

func (c *Checker) write(ctx context.Context) Result {
	if err := c.writer.WriteValue(ctx, WritePath, WriteValue); err != nil {
		slog.Error("Error writing to database", "path", WritePath, "error", err.Error())
		return Result{Message: "Database error: " + err.Error()}
	}

	slog.Info("Database test successful", "path", WritePath)
	return Result{Connected: true, Message: successMessage}
}
