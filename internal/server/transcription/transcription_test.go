package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/server/aiclient"
	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blobMap map[string]*models.Blob

func (m blobMap) Get(_ context.Context, id string) (*models.Blob, error) {
	b, ok := m[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func TestTranscribe_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "visit.wav", hdr.Filename)
		assert.Equal(t, []byte("audio-bytes"), data)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"  Patient reports pain in the lower molar.  "}`)
	}))
	defer srv.Close()

	blobs := blobMap{"audio/1": {ID: "audio/1", Filename: "visit.wav", Data: []byte("audio-bytes")}}
	c := NewClient(aiclient.Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, blobs)

	text, err := c.Transcribe(context.Background(), "audio/1")
	require.NoError(t, err)
	assert.Equal(t, "Patient reports pain in the lower molar.", text)
}

func TestTranscribe_DefaultFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "audio.mp3", hdr.Filename)
		_, _ = io.WriteString(w, `{"text":"ok"}`)
	}))
	defer srv.Close()

	blobs := blobMap{"audio/1": {ID: "audio/1", Data: []byte("x")}}
	c := NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}, blobs)

	_, err := c.Transcribe(context.Background(), "audio/1")
	require.NoError(t, err)
}

func TestTranscribe_Errors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"Rate limit reached"}}`)
	}))
	defer srv.Close()

	blobs := blobMap{"audio/1": {ID: "audio/1", Data: []byte("x")}}

	_, err := NewClient(aiclient.Options{BaseURL: srv.URL}, blobs).Transcribe(context.Background(), "audio/1")
	assert.ErrorIs(t, err, aiclient.ErrMissingAPIKey)
	assert.Equal(t, 0, calls)

	_, err = NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}, blobs).Transcribe(context.Background(), "audio/404")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 0, calls)

	_, err = NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}, blobs).Transcribe(context.Background(), "audio/1")
	assert.ErrorContains(t, err, "Rate limit reached")
	assert.Equal(t, 1, calls)
}

func TestTranscribe_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	blobs := blobMap{"audio/1": {ID: "audio/1", Data: []byte("x")}}
	_, err := NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}, blobs).Transcribe(context.Background(), "audio/1")
	assert.ErrorContains(t, err, "decode transcription response")
}

func TestTranscribe_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blobs := blobMap{"audio/1": {ID: "audio/1", Data: []byte("x")}}
	_, err := NewClient(aiclient.Options{APIKey: "k", BaseURL: srv.URL}, blobs).Transcribe(ctx, "audio/1")
	assert.ErrorIs(t, err, context.Canceled)
}
