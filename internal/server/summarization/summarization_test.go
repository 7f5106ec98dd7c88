package summarization

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/medimate/internal/server/aiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMeaningful(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"hello", false},
		{"um", false},
		{"ummmmmmmmmmmm", false},
		{"?!?!?!?!?!?!", false},
		{"um, uh, ah... hmm", false},
		{"Umm uhh errr mmm ahh", false},
		{"tooth pain upper left molar", true},
		{"um, the patient has a cracked crown", true},
		{"Patient 42 visited today", true},
		{"Зуб болит", false},
		{"歯が痛いです", false},
		{"Зуб болит слева сверху", true},
		{"Стоматология", true},
		{"«…»—¿¡…»«—", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMeaningful(tt.in))
		})
	}
}

func TestSummarize_ShortCircuitMakesNoCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL})
	for _, in := range []string{"", "um", "um, uh, ah... hmm", "Зуб болит", "café fin"} {
		got, err := c.Summarize(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, NoRelevantContent, got)
	}
	assert.Equal(t, int32(0), calls.Load())

	// no key needed either
	got, err := NewClient(aiclient.Options{}).Summarize(context.Background(), "um")
	require.NoError(t, err)
	assert.Equal(t, NoRelevantContent, got)
}

func TestSummarize_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 400, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "virtual dental assistant")
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "tooth pain upper left molar", req.Messages[1].Content)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"\n● Diagnosis:\n  ○ Caries\n"}}]}`)
	}))
	defer srv.Close()

	c := NewClient(aiclient.Options{APIKey: "sk-test", BaseURL: srv.URL})
	got, err := c.Summarize(context.Background(), "tooth pain upper left molar")
	require.NoError(t, err)
	assert.Equal(t, "● Diagnosis:\n  ○ Caries", got)
}

func TestSummarize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"api error", http.StatusInternalServerError, `{"error":{"message":"The server had an error"}}`, "The server had an error"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no summary returned"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":"  "}}]}`, "empty summary returned"},
		{"malformed", http.StatusOK, `{`, "decode summary response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}).
				Summarize(context.Background(), "tooth pain upper left molar")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSummarize_MissingKey(t *testing.T) {
	_, err := NewClient(aiclient.Options{}).Summarize(context.Background(), "tooth pain upper left molar")
	assert.ErrorIs(t, err, aiclient.ErrMissingAPIKey)
}
