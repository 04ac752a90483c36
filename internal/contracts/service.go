package contracts

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"contract-backend/internal/shared/metrics"
	"contract-backend/internal/shared/storage/blob"
	"contract-backend/internal/shared/telemetry"
)

// DefaultListLimit and MaxListLimit bound the list page size.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service contains ingestion and query logic for contract records.
type Service struct {
	Blob blob.Store
	Repo Repo
}

// Submit validates an upload, writes the blob, and creates the record.
// If the record write fails after the blob write succeeded, the blob is
// deleted best-effort; a second failure there is logged and the orphaned
// blob is accepted.
func (s *Service) Submit(ctx context.Context, fileName, contentType string, data []byte) (Contract, error) {
	if strings.TrimSpace(fileName) == "" {
		return Contract{}, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return Contract{}, fmt.Errorf("%w: file content is empty", ErrInvalidInput)
	}
	if !SupportedContentType(contentType) {
		return Contract{}, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	id := uuid.NewString()
	storageKey := storageKeyFor(id, fileName)
	normalized := NormalizeContentType(contentType)

	if _, err := s.Blob.Put(ctx, storageKey, normalized, bytes.NewReader(data)); err != nil {
		return Contract{}, fmt.Errorf("store blob key=%s: %w", storageKey, err)
	}

	now := time.Now().UTC()
	c := Contract{
		ID:          id,
		FileName:    fileName,
		ContentType: normalized,
		SizeBytes:   int64(len(data)),
		StorageKey:  storageKey,
		Status:      StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repo.Create(ctx, c); err != nil {
		if delErr := s.Blob.Delete(ctx, storageKey); delErr != nil {
			telemetry.Error("submit.blob_cleanup_failed", map[string]any{
				"contract_id": id,
				"storage_key": storageKey,
				"error":       delErr.Error(),
			})
		}
		return Contract{}, fmt.Errorf("create record id=%s: %w", id, err)
	}

	metrics.IncContractUploaded()
	return c, nil
}

// Get returns a contract record by ID.
func (s *Service) Get(ctx context.Context, id string) (Contract, error) {
	if strings.TrimSpace(id) == "" {
		return Contract{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// Summary aggregates per-status counts over the entire filtered set.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Analyzing int `json:"analyzing"`
	Uploaded  int `json:"uploaded"`
}

// ListResult is one page of records plus the aggregate summary.
type ListResult struct {
	Records []Contract
	Summary Summary
	Limit   int
	HasMore bool
}

// List scans all records, applies the optional status filter, and returns the
// newest-first page with counts computed over the whole filtered set.
func (s *Service) List(ctx context.Context, limit int, status string) (ListResult, error) {
	if status != "" && status != StatusUploaded && status != StatusAnalyzing && status != StatusCompleted {
		return ListResult{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	all, err := s.Repo.List(ctx)
	if err != nil {
		return ListResult{}, err
	}

	filtered := all
	if status != "" {
		filtered = filtered[:0:0]
		for _, c := range all {
			if c.Status == status {
				filtered = append(filtered, c)
			}
		}
	}

	var summary Summary
	for _, c := range filtered {
		summary.Total++
		switch c.Status {
		case StatusCompleted:
			summary.Completed++
		case StatusAnalyzing:
			summary.Analyzing++
		case StatusUploaded:
			summary.Uploaded++
		}
	}

	page := filtered
	hasMore := false
	if len(filtered) > limit {
		page = filtered[:limit]
		hasMore = true
	}

	return ListResult{
		Records: page,
		Summary: summary,
		Limit:   limit,
		HasMore: hasMore,
	}, nil
}

func storageKeyFor(id, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return "contracts/" + id + ext
}
