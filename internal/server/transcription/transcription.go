// Package transcription turns a stored audio blob into text through an
// OpenAI-compatible /audio/transcriptions endpoint.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/medimate/internal/server/aiclient"
	"github.com/dmitrijs2005/medimate/internal/server/models"
)

const (
	DefaultModel    = "whisper-1"
	defaultFilename = "audio.mp3"
)

type Transcriber interface {
	Transcribe(ctx context.Context, blobID string) (string, error)
}

// BlobReader fetches a blob with its data.
type BlobReader interface {
	Get(ctx context.Context, id string) (*models.Blob, error)
}

type Client struct {
	opts       aiclient.Options
	blobs      BlobReader
	httpClient *http.Client
}

func NewClient(opts aiclient.Options, blobs BlobReader) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &Client{opts: opts, blobs: blobs, httpClient: opts.NewHTTPClient()}
}

// Transcribe reads the whole blob and returns the text reported by the API.
func (c *Client) Transcribe(ctx context.Context, blobID string) (string, error) {
	if err := c.opts.EnsureAPIKey(); err != nil {
		return "", err
	}

	blob, err := c.blobs.Get(ctx, blobID)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", blobID, err)
	}

	filename := blob.Filename
	if filename == "" {
		filename = defaultFilename
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(blob.Data); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.WriteField("model", c.opts.Model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint("audio/transcriptions"), &body)
	if err != nil {
		return "", fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", aiclient.DecodeAPIError(resp)
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	return strings.TrimSpace(payload.Text), nil
}
