// Package aiclient holds what the OpenAI-compatible clients share: options,
// the HTTP client and error decoding.
package aiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// ErrMissingAPIKey is returned before any request is made when no key is set.
var ErrMissingAPIKey = errors.New("openai api key is not configured")

type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Endpoint joins the base URL and path, tolerating a trailing slash.
func (o Options) Endpoint(path string) string {
	base := o.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func (o Options) EnsureAPIKey() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// NewHTTPClient returns a client bounded by o.Timeout; zero means no limit.
func (o Options) NewHTTPClient() *http.Client {
	return &http.Client{Timeout: o.Timeout}
}

// DecodeAPIError turns a non-2xx response into an error, using the
// {"error":{"message":...}} envelope when the body carries one.
func DecodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("openai api error: status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}

	return fmt.Errorf("openai api error: status %d body %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
