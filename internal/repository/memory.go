package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"truthteller/internal/model"

	"github.com/google/uuid"
)

// MemoryRepository keeps prediction records in process memory. It backs the
// history endpoints when no DATABASE_URL is configured; records are lost on
// restart.
type MemoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*model.Prediction
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[uuid.UUID]*model.Prediction)}
}

func (r *MemoryRepository) Create(ctx context.Context, p *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.records[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) UpdateResult(ctx context.Context, p *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[p.ID]; !ok {
		return fmt.Errorf("prediction not found: %s", p.ID)
	}
	cp := *p
	r.records[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("prediction not found: %s", id)
	}
	// Return a copy to avoid race conditions
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context, limit, offset int) ([]model.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]model.Prediction, 0, len(r.records))
	for _, p := range r.records {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return []model.Prediction{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}
