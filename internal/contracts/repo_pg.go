package contracts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new contract record.
func (r *PGRepo) Create(ctx context.Context, c Contract) error {
	const query = `
INSERT INTO contracts (
    id,
    file_name,
    content_type,
    size_bytes,
    storage_key,
    status,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		c.ID,
		c.FileName,
		c.ContentType,
		c.SizeBytes,
		c.StorageKey,
		c.Status,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// GetByID returns a contract record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Contract, error) {
	const query = `
SELECT id, file_name, content_type, size_bytes, storage_key, status, extraction_quality, analysis, created_at, updated_at, analyzed_at
FROM contracts
WHERE id = $1`

	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

// UpdateStatus advances the status only if the stored status matches fromStatus.
func (r *PGRepo) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, updatedAt time.Time) error {
	const query = `
UPDATE contracts
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4`

	res, err := r.DB.ExecContext(ctx, query, toStatus, updatedAt, id, fromStatus)
	if err != nil {
		return err
	}
	return r.resolveConditional(ctx, id, res)
}

// CompleteAnalysis writes the analysis and marks the record completed,
// conditioned on the record currently being in the analyzing state.
func (r *PGRepo) CompleteAnalysis(ctx context.Context, id string, result AnalysisResult, extractionQuality string, analyzedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	const query = `
UPDATE contracts
SET status = $1, analysis = $2, extraction_quality = $3, analyzed_at = $4, updated_at = $4
WHERE id = $5 AND status = $6`

	res, err := r.DB.ExecContext(ctx, query, StatusCompleted, payload, extractionQuality, analyzedAt, id, StatusAnalyzing)
	if err != nil {
		return err
	}
	return r.resolveConditional(ctx, id, res)
}

// List returns all records, newest first.
func (r *PGRepo) List(ctx context.Context) ([]Contract, error) {
	const query = `
SELECT id, file_name, content_type, size_bytes, storage_key, status, extraction_quality, analysis, created_at, updated_at, analyzed_at
FROM contracts
ORDER BY created_at DESC, id DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Contract, error) {
	var c Contract
	var quality sql.NullString
	var analysis []byte
	var analyzedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.FileName,
		&c.ContentType,
		&c.SizeBytes,
		&c.StorageKey,
		&c.Status,
		&quality,
		&analysis,
		&c.CreatedAt,
		&c.UpdatedAt,
		&analyzedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contract{}, ErrNotFound
		}
		return Contract{}, err
	}

	if quality.Valid {
		c.ExtractionQuality = quality.String
	}
	if analyzedAt.Valid {
		t := analyzedAt.Time
		c.AnalyzedAt = &t
	}
	if len(analysis) > 0 {
		var result AnalysisResult
		if err := json.Unmarshal(analysis, &result); err != nil {
			return Contract{}, fmt.Errorf("unmarshal analysis id=%s: %w", c.ID, err)
		}
		c.Analysis = &result
	}
	return c, nil
}

// resolveConditional distinguishes a missing record from a CAS conflict after
// a conditional update touched zero rows.
func (r *PGRepo) resolveConditional(ctx context.Context, id string, res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM contracts WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusConflict
}

var _ Repo = (*PGRepo)(nil)
