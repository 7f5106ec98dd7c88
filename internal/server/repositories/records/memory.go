package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps records in a map. It mirrors the PostgreSQL
// repository's owner filtering and error contract.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.AudioRecord
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: map[string]models.AudioRecord{}, now: time.Now}
}

func visible(rec models.AudioRecord, ownerID string) bool {
	return ownerID == "" || rec.UserID == ownerID
}

func (r *InMemoryRepository) Create(_ context.Context, rec *models.AudioRecord) (*models.AudioRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.CreatedAt = r.now()
	r.records[rec.ID] = *rec
	return rec, nil
}

func (r *InMemoryRepository) List(_ context.Context, ownerID string) ([]*models.AudioRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AudioRecord, 0, len(r.records))
	for _, rec := range r.records {
		if visible(rec, ownerID) {
			rec := rec
			result = append(result, &rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, ownerID, id string) (*models.AudioRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok || !visible(rec, ownerID) {
		return nil, common.ErrorNotFound
	}
	return &rec, nil
}

func (r *InMemoryRepository) Update(_ context.Context, ownerID, id string, title, transcript *string) (*models.AudioRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || !visible(rec, ownerID) {
		return nil, common.ErrorNotFound
	}
	if title != nil {
		rec.Title = *title
	}
	if transcript != nil {
		rec.Transcript = *transcript
	}
	r.records[id] = rec
	return &rec, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || !visible(rec, ownerID) {
		return common.ErrorNotFound
	}
	delete(r.records, id)
	return nil
}
