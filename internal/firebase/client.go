package firebase

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hydazz/parent-notifier/internal/config"
	"github.com/pkg/errors"
)

// Client talks to the Realtime Database REST API.
type Client struct {
	rest *resty.Client
}

// New creates a client with its own HTTP client.
func New(cfg config.FirebaseConfig) *Client {
	return NewWithHTTPClient(cfg, &http.Client{})
}

// NewWithHTTPClient creates a client on top of hc.
func NewWithHTTPClient(cfg config.FirebaseConfig, hc *http.Client) *Client {
	rest := resty.NewWithClient(hc).
		SetBaseURL(cfg.DatabaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{rest: rest}
}

// refPath maps a database path to its REST resource.
func refPath(path string) string {
	return "/" + strings.Trim(path, "/") + ".json"
}

func remoteError(res *resty.Response, err error) error {
	if err != nil {
		return &RemoteFetchError{
			Message: err.Error(),
			Err:     errors.Wrap(err, "realtime database request failed"),
		}
	}

	var body struct {
		Error string `json:"error"`
	}
	if jerr := json.Unmarshal(res.Body(), &body); jerr == nil && body.Error != "" {
		return &RemoteFetchError{Message: body.Error, StatusCode: res.StatusCode()}
	}

	return &RemoteFetchError{Message: res.Status(), StatusCode: res.StatusCode()}
}
