// Package records stores AudioRecord rows in PostgreSQL.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medimate/internal/common"
	"github.com/dmitrijs2005/medimate/internal/dbx"
	"github.com/dmitrijs2005/medimate/internal/server/models"
)

const recordColumns = `id, user_id, patient_id, title, filename, transcript, formatted_report,
		created_date, created_time, file_id, created_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.AudioRecord, error) {
	rec := &models.AudioRecord{}
	err := row.Scan(&rec.ID, &rec.UserID, &rec.PatientID, &rec.Title, &rec.Filename, &rec.Transcript,
		&rec.FormattedReport, &rec.CreatedDate, &rec.CreatedTime, &rec.FileID, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create inserts rec and fills in ID and CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.AudioRecord) (*models.AudioRecord, error) {
	query := `
		INSERT INTO audio_records (user_id, patient_id, title, filename, transcript, formatted_report,
			created_date, created_time, file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.PatientID, rec.Title, rec.Filename, rec.Transcript, rec.FormattedReport,
		rec.CreatedDate, rec.CreatedTime, rec.FileID).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// List returns records newest first.
func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]*models.AudioRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM audio_records
		WHERE ($1 = '' OR user_id::text = $1)
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := make([]*models.AudioRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*models.AudioRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM audio_records
		WHERE id = $1 AND ($2 = '' OR user_id::text = $2)
	`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// Update replaces title and/or transcript; a nil pointer keeps the stored
// value. The updated row is returned.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, title, transcript *string) (*models.AudioRecord, error) {
	query := `UPDATE audio_records
		SET title = COALESCE($3, title), transcript = COALESCE($4, transcript)
		WHERE id = $1 AND ($2 = '' OR user_id::text = $2)
		RETURNING ` + recordColumns

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id, ownerID, title, transcript))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

// Delete removes the record. Exactly one row must be affected.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM audio_records WHERE id = $1 AND ($2 = '' OR user_id::text = $2)`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
