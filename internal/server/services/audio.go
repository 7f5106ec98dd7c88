// Package services contains server-side business logic: the audio upload
// pipeline with record CRUD, and account registration and login.
package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/logging"
	"github.com/dmitrijs2005/medimate/internal/server/blobstore"
	"github.com/dmitrijs2005/medimate/internal/server/config"
	"github.com/dmitrijs2005/medimate/internal/server/models"
	"github.com/dmitrijs2005/medimate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/medimate/internal/server/summarization"
	"github.com/dmitrijs2005/medimate/internal/server/transcription"
	"github.com/google/uuid"
)

const defaultContentType = "application/octet-stream"

// UploadInput is one multipart upload. Body must stay readable until
// Upload returns. Size is the body length, or -1 when unknown.
type UploadInput struct {
	UserID      string
	PatientID   string
	Title       string
	Filename    string
	ContentType string
	Body        io.ReadSeeker
	Size        int64
}

// UpdateInput carries the editable record fields; nil leaves a field as is.
type UpdateInput struct {
	Title      *string `json:"title"`
	Transcript *string `json:"transcript"`
}

// AudioService runs the upload pipeline (store, verify, transcribe,
// summarize, persist) and the record CRUD operations.
type AudioService struct {
	db           dbx.DBTX
	tx           dbx.Transactor
	repomanager  repomanager.RepositoryManager
	blobs        blobstore.Store
	transcriber  transcription.Transcriber
	summarizer   summarization.Summarizer
	cleanup      bool
	scopeToOwner bool
	now          func() time.Time
	log          logging.Logger
}

func NewAudioService(db dbx.DBTX, tx dbx.Transactor, m repomanager.RepositoryManager, blobs blobstore.Store,
	transcriber transcription.Transcriber, summarizer summarization.Summarizer,
	cfg *config.Config, logger logging.Logger) *AudioService {
	return &AudioService{
		db:           db,
		tx:           tx,
		repomanager:  m,
		blobs:        blobs,
		transcriber:  transcriber,
		summarizer:   summarizer,
		cleanup:      cfg.CleanupOrphans,
		scopeToOwner: cfg.ScopeRecordsToOwner,
		now:          time.Now,
		log:          logger.With("module", "audio"),
	}
}

// owner returns the owner filter passed to the repository.
func (s *AudioService) owner(callerID string) string {
	if s.scopeToOwner {
		return callerID
	}
	return ""
}

// Upload stores the audio, transcribes and summarizes it and persists the
// resulting record. callerID is the authenticated user and must match
// in.UserID.
func (s *AudioService) Upload(ctx context.Context, callerID string, in UploadInput) (*models.AudioRecord, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.PatientID = strings.TrimSpace(in.PatientID)
	in.Title = strings.TrimSpace(in.Title)
	in.Filename = strings.TrimSpace(in.Filename)

	if in.Body != nil && in.Size < 0 {
		n, err := remaining(in.Body)
		if err != nil {
			return nil, common.NewPublicError(ErrBlobWrite, "Error during file upload", err)
		}
		in.Size = n
	}

	if in.Body == nil || in.Size == 0 || in.Filename == "" || in.UserID == "" || in.PatientID == "" || in.Title == "" {
		return nil, common.NewPublicError(common.ErrValidation, "Missing required fields", nil)
	}
	if callerID != "" && in.UserID != callerID {
		return nil, common.NewPublicError(common.ErrForbidden, "userId does not match the authenticated user", nil)
	}
	if in.ContentType == "" {
		in.ContentType = defaultContentType
	}

	blob, err := s.blobs.Put(ctx, in.Filename, in.ContentType, in.Body, in.Size)
	if err != nil {
		return nil, common.NewPublicError(ErrBlobWrite, "Error during file upload", err)
	}
	s.log.Debug(ctx, "audio stored", "file_id", blob.ID, "bytes", blob.Length)

	rec, err := s.process(ctx, in, blob.ID)
	if err != nil {
		if s.cleanup {
			s.removeOrphan(ctx, blob.ID)
		}
		return nil, err
	}

	s.log.Info(ctx, "audio processed", "record_id", rec.ID, "file_id", rec.FileID)
	return rec, nil
}

// remaining returns how many bytes are left in r and rewinds it.
func remaining(r io.Seeker) (int64, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end - cur, nil
}

func (s *AudioService) process(ctx context.Context, in UploadInput, blobID string) (*models.AudioRecord, error) {
	if _, err := s.blobs.Stat(ctx, blobID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "File not found in storage", err)
		}
		return nil, common.NewPublicError(ErrBlobWrite, "Error during file upload", err)
	}

	transcript, err := s.transcriber.Transcribe(ctx, blobID)
	if err == nil && strings.TrimSpace(transcript) == "" {
		err = errors.New("empty transcript")
	}
	if err != nil {
		return nil, common.NewPublicError(ErrTranscription, "Error during transcription", err)
	}

	report, err := s.summarizer.Summarize(ctx, transcript)
	if err == nil && strings.TrimSpace(report) == "" {
		err = errors.New("empty report")
	}
	if err != nil {
		return nil, common.NewPublicError(ErrSummarization, "Error generating report", err)
	}

	now := s.now().Local()
	rec := &models.AudioRecord{
		UserID:          in.UserID,
		PatientID:       in.PatientID,
		Title:           in.Title,
		Filename:        in.Filename,
		Transcript:      transcript,
		FormattedReport: report,
		CreatedDate:     now.Format(models.CreatedDateLayout),
		CreatedTime:     now.Format(models.CreatedTimeLayout),
		FileID:          blobID,
	}

	saved, err := s.repomanager.Records(s.db).Create(ctx, rec)
	if err != nil {
		return nil, common.NewPublicError(common.ErrorInternal, "Error saving audio record", err)
	}
	return saved, nil
}

// removeOrphan deletes a blob whose record was never written. It runs even
// if ctx is already canceled.
func (s *AudioService) removeOrphan(ctx context.Context, blobID string) {
	if err := s.blobs.Delete(context.WithoutCancel(ctx), blobID); err != nil {
		s.log.Warn(ctx, "orphan cleanup failed", "file_id", blobID, "error", err)
		return
	}
	s.log.Debug(ctx, "orphan removed", "file_id", blobID)
}

// List returns the caller's records, newest first.
func (s *AudioService) List(ctx context.Context, callerID string) ([]*models.AudioRecord, error) {
	recs, err := s.repomanager.Records(s.db).List(ctx, s.owner(callerID))
	if err != nil {
		return nil, common.NewPublicError(common.ErrorInternal, "Error retrieving audio files", err)
	}
	return recs, nil
}

func (s *AudioService) getRecord(ctx context.Context, repoDB dbx.DBTX, callerID, id string) (*models.AudioRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.NewPublicError(common.ErrorNotFound, "Audio record not found", nil)
	}
	rec, err := s.repomanager.Records(repoDB).GetByID(ctx, s.owner(callerID), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "Audio record not found", nil)
		}
		return nil, err
	}
	return rec, nil
}

// Get returns a record with its blob metadata. A record whose blob is gone
// is reported as not found.
func (s *AudioService) Get(ctx context.Context, callerID, id string) (*models.RecordWithFile, error) {
	rec, err := s.getRecord(ctx, s.db, callerID, id)
	if err != nil {
		return nil, err
	}

	blob, err := s.blobs.Stat(ctx, rec.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "File not found in storage", nil)
		}
		return nil, err
	}

	return &models.RecordWithFile{AudioRecord: *rec, File: blob}, nil
}

// Download returns the record's audio including its bytes.
func (s *AudioService) Download(ctx context.Context, callerID, id string) (*models.Blob, error) {
	rec, err := s.getRecord(ctx, s.db, callerID, id)
	if err != nil {
		return nil, err
	}

	blob, err := s.blobs.Get(ctx, rec.FileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "File not found in storage", nil)
		}
		return nil, err
	}
	if blob.Filename == "" {
		blob.Filename = rec.Filename
	}
	return blob, nil
}

// Update changes title and/or transcript. Provided values must not be blank.
func (s *AudioService) Update(ctx context.Context, callerID, id string, in UpdateInput) (*models.AudioRecord, error) {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, common.NewPublicError(common.ErrValidation, "title must not be empty", nil)
	}
	if in.Transcript != nil && strings.TrimSpace(*in.Transcript) == "" {
		return nil, common.NewPublicError(common.ErrValidation, "transcript must not be empty", nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.NewPublicError(common.ErrorNotFound, "Audio record not found", nil)
	}

	rec, err := s.repomanager.Records(s.db).Update(ctx, s.owner(callerID), id, in.Title, in.Transcript)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewPublicError(common.ErrorNotFound, "Audio record not found", nil)
		}
		return nil, common.NewPublicError(common.ErrorInternal, "Error updating audio record", err)
	}
	return rec, nil
}

// Delete removes the blob and then the record in one transaction. If the
// blob cannot be removed the record stays. A blob that is already gone does
// not block the delete.
func (s *AudioService) Delete(ctx context.Context, callerID, id string) error {
	return s.tx.InTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		rec, err := s.getRecord(ctx, tx, callerID, id)
		if err != nil {
			return err
		}

		if err := s.blobs.Delete(ctx, rec.FileID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return common.NewPublicError(common.ErrorInternal, "Error deleting record", err)
		}

		if err := s.repomanager.Records(tx).Delete(ctx, s.owner(callerID), id); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewPublicError(common.ErrorNotFound, "Record not found", nil)
			}
			return common.NewPublicError(common.ErrorInternal, "Error deleting record", err)
		}

		s.log.Info(ctx, "record deleted", "record_id", id, "file_id", rec.FileID)
		return nil
	})
}
