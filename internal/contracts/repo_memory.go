package contracts

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Contract
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Contract),
	}
}

// Create stores a new contract record.
func (r *MemoryRepo) Create(ctx context.Context, c Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[c.ID]; exists {
		return ErrInvalidInput
	}
	r.data[c.ID] = c
	return nil
}

// GetByID returns a contract record by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Contract, error) {
	if err := ctx.Err(); err != nil {
		return Contract{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return Contract{}, ErrNotFound
	}
	return c, nil
}

// UpdateStatus advances the status only if the stored status matches fromStatus.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != fromStatus {
		return ErrStatusConflict
	}
	c.Status = toStatus
	c.UpdatedAt = updatedAt
	r.data[id] = c
	return nil
}

// CompleteAnalysis writes the analysis and marks the record completed,
// conditioned on the record currently being in the analyzing state.
func (r *MemoryRepo) CompleteAnalysis(ctx context.Context, id string, result AnalysisResult, extractionQuality string, analyzedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	if c.Status != StatusAnalyzing {
		return ErrStatusConflict
	}
	c.Status = StatusCompleted
	c.Analysis = &result
	c.ExtractionQuality = extractionQuality
	c.AnalyzedAt = &analyzedAt
	c.UpdatedAt = analyzedAt
	r.data[id] = c
	return nil
}

// List returns all records, newest first.
func (r *MemoryRepo) List(ctx context.Context) ([]Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Contract, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
