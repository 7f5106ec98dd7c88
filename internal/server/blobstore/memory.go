package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/server/models"
)

// MemoryStore is a process-local Store. It backs local runs without S3 and
// the handler tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]models.Blob
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]models.Blob), now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, filename, contentType string, body io.ReadSeeker, _ int64) (*models.Blob, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	b := models.Blob{
		ID:          NewKey(m.now()),
		Filename:    filename,
		ContentType: contentType,
		Length:      int64(buf.Len()),
		UploadedAt:  m.now(),
		Data:        buf.Bytes(),
	}

	m.mu.Lock()
	m.blobs[b.ID] = b
	m.mu.Unlock()

	meta := b
	meta.Data = nil
	return &meta, nil
}

func (m *MemoryStore) Stat(_ context.Context, id string) (*models.Blob, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	b.Data = nil
	return &b, nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Blob, error) {
	m.mu.RLock()
	b, ok := m.blobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, common.ErrorNotFound
	}
	b.Data = append([]byte(nil), b.Data...)
	return &b, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.blobs, id)
	m.mu.Unlock()
	return nil
}

// Len reports how many blobs are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
