package firebase

import (
	"context"
	"encoding/json"

	"github.com/hydazz/parent-notifier/internal/models"
	"github.com/pkg/errors"
)

// WriteValue replaces the value stored at path.
func (c *Client) WriteValue(ctx context.Context, path string, value interface{}) error {
	body, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode value for %s", path)
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(refPath(path))
	if err != nil || res.IsError() {
		return remoteError(res, err)
	}

	return nil
}

// PushDetection appends a detection under DetectionsPath and returns the
// key generated by the database.
func (c *Client) PushDetection(ctx context.Context, d models.Detection) (string, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode detection")
	}

	res, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(refPath(DetectionsPath))
	if err != nil || res.IsError() {
		return "", remoteError(res, err)
	}

	var created struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(res.Body(), &created); err != nil {
		return "", errors.Wrap(err, "failed to decode push response")
	}

	return created.Name, nil
}
