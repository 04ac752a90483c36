package contracts

import (
	"context"
	"time"
)

// Repo defines persistence operations for contract records.
//
// UpdateStatus and CompleteAnalysis are compare-and-swap transitions: they
// succeed only when the stored status matches fromStatus, returning
// ErrStatusConflict otherwise, so concurrent analyze calls cannot race each
// other into torn writes.
type Repo interface {
	Create(ctx context.Context, c Contract) error
	GetByID(ctx context.Context, id string) (Contract, error)
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, updatedAt time.Time) error
	CompleteAnalysis(ctx context.Context, id string, result AnalysisResult, extractionQuality string, analyzedAt time.Time) error
	// List returns all records, newest first.
	List(ctx context.Context) ([]Contract, error)
}
