// Package blobstore keeps uploaded audio in an S3-compatible bucket.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/google/uuid"
)

// Store is the binary object store used by the upload pipeline.
//
// Stat and Get return common.ErrorNotFound for unknown ids. Delete of an
// unknown id is not an error.
type Store interface {
	Put(ctx context.Context, filename, contentType string, body io.ReadSeeker, size int64) (*models.Blob, error)
	Stat(ctx context.Context, id string) (*models.Blob, error)
	Get(ctx context.Context, id string) (*models.Blob, error)
	Delete(ctx context.Context, id string) error
}

// NewKey builds a storage key of the form audio/<yyyy>/<m>/<d>/<uuid>.
func NewKey(now time.Time) string {
	return fmt.Sprintf("audio/%d/%d/%d/%v", now.Year(), int(now.Month()), now.Day(), uuid.New())
}
