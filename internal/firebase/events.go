package firebase

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/hydazz/parent-notifier/internal/models"
)

const (
	// DetectionsPath holds one child per detection record.
	DetectionsPath = "detections"

	fieldEventMessage = "event_message"
	fieldTimestamp    = "timestamp"
)

// FetchEvents performs a single point-in-time read of DetectionsPath and
// decodes the snapshot. The order of the returned events is unspecified.
func (c *Client) FetchEvents(ctx context.Context) (models.Batch, error) {
	res, err := c.rest.R().SetContext(ctx).Get(refPath(DetectionsPath))
	if err != nil || res.IsError() {
		return models.Batch{}, remoteError(res, err)
	}

	var raw interface{}
	if err := json.Unmarshal(res.Body(), &raw); err != nil {
		slog.Debug("Detections payload is not JSON", "error", err)
		return models.Batch{}, ErrInvalidDataFormat
	}

	batch, err := DecodeEvents(raw)
	if err != nil {
		return models.Batch{}, err
	}

	slog.Debug("Fetched detections", "count", len(batch.Events), "dropped", batch.Dropped)
	return batch, nil
}

// DecodeEvents converts a decoded JSON snapshot into events. The snapshot
// must be an object whose values are all objects; records without a string
// event_message and timestamp are skipped and counted in Batch.Dropped.
func DecodeEvents(raw interface{}) (models.Batch, error) {
	entries, ok := raw.(map[string]interface{})
	if !ok {
		return models.Batch{}, ErrInvalidDataFormat
	}

	records := make(map[string]map[string]interface{}, len(entries))
	keys := make([]string, 0, len(entries))
	for key, v := range entries {
		rec, ok := v.(map[string]interface{})
		if !ok {
			return models.Batch{}, ErrInvalidDataFormat
		}
		records[key] = rec
		keys = append(keys, key)
	}
	sort.Strings(keys)

	batch := models.Batch{Events: make(models.Events, 0, len(keys))}
	for _, key := range keys {
		rec := records[key]

		message, okMessage := lookupString(rec, fieldEventMessage)
		timestamp, okTimestamp := lookupString(rec, fieldTimestamp)
		if !okMessage || !okTimestamp {
			slog.Debug("Skipping detection record", "key", key, "has_message", okMessage, "has_timestamp", okTimestamp)
			batch.Dropped++
			continue
		}

		batch.Events = append(batch.Events, models.NewEvent(key, message, timestamp))
	}

	return batch, nil
}

func lookupString(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}
