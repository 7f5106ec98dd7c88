// Package summarization turns a transcript into a structured dental report
// through an OpenAI-compatible /chat/completions endpoint.
package summarization

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/medimate/internal/server/aiclient"
)

const (
	DefaultModel = "gpt-4o-mini"

	// NoRelevantContent is returned in place of a report when the transcript
	// carries no usable speech.
	NoRelevantContent = "No relevant content detected. Unable to generate a meaningful report."

	minMeaningfulLen = 10
	maxTokens        = 400
	temperature      = 0.7
)

const systemPrompt = "You are a virtual dental assistant trained to create structured dental reports. Format the report as follows:\n\n" +
	"● Patient Name (if mentioned)\n" +
	"● Date of Visit\n" +
	"● Diagnosis:\n  ○ List diagnoses\n" +
	"● Treatment Plan:\n  ○ Procedures or recommendations\n" +
	"● Medications:\n  ○ Prescriptions\n" +
	"● Follow-up Instructions:\n  ○ Next steps\n\n" +
	"Ensure the report is formal, concise, and meets dental standards."

var (
	noiseRe  = regexp.MustCompile(`(?i)^(um+|ah+|\s+|[^\p{L}\p{N}_\s]+)$`)
	fillerRe = regexp.MustCompile(`^(u+m+|u+h+|a+h+|e+r+m*|h+m+|m{2,})$`)
)

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// IsMeaningful reports whether text is worth sending to the model. Short
// input, bare noise and filler-only speech are not.
func IsMeaningful(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < minMeaningfulLen {
		return false
	}
	if noiseRe.MatchString(trimmed) {
		return false
	}

	words := strings.FieldsFunc(strings.ToLower(trimmed), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if !fillerRe.MatchString(w) {
			return true
		}
	}
	return false
}

type Client struct {
	opts       aiclient.Options
	httpClient *http.Client
}

func NewClient(opts aiclient.Options) *Client {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &Client{opts: opts, httpClient: opts.NewHTTPClient()}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize returns NoRelevantContent without calling the API when the
// transcript is not meaningful.
func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	if !IsMeaningful(transcript) {
		return NoRelevantContent, nil
	}
	if err := c.opts.EnsureAPIKey(); err != nil {
		return "", err
	}

	payload := chatRequest{
		Model: c.opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: transcript},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode summary payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint("chat/completions"), buf)
	if err != nil {
		return "", fmt.Errorf("create summary request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", aiclient.DecodeAPIError(resp)
	}

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode summary response: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no summary returned")
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty summary returned")
	}
	return content, nil
}
