package records

import (
	"context"

	"github.com/dmitrijs2005/medimate/internal/server/models"
)

// Repository persists audio records.
//
// Every read and write takes an ownerID. An empty ownerID disables owner
// filtering; a non-empty one makes records of other users invisible, so they
// surface as common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, rec *models.AudioRecord) (*models.AudioRecord, error)
	List(ctx context.Context, ownerID string) ([]*models.AudioRecord, error)
	GetByID(ctx context.Context, ownerID, id string) (*models.AudioRecord, error)
	Update(ctx context.Context, ownerID, id string, title, transcript *string) (*models.AudioRecord, error)
	Delete(ctx context.Context, ownerID, id string) error
}
