package repository

import (
	"context"
	"testing"
	"time"

	"truthteller/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(createdAt time.Time) *model.Prediction {
	return &model.Prediction{
		ID:        uuid.New(),
		Source:    model.SourceLocal,
		Locator:   "uploads/video/clip.mp4",
		Language:  "en",
		Status:    "received",
		CreatedAt: createdAt,
	}
}

func TestMemoryRepositoryCreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record := newRecord(time.Now())
	require.NoError(t, repo.Create(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "received", got.Status)

	// The stored record is a copy, not an alias.
	got.Status = "mutated"
	again, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "received", again.Status)
}

func TestMemoryRepositoryGetMissing(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestMemoryRepositoryUpdateResult(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	record := newRecord(time.Now())
	require.NoError(t, repo.Create(ctx, record))

	count := 4
	record.Status = "completed"
	record.SentenceCount = &count
	require.NoError(t, repo.UpdateResult(ctx, record))

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.SentenceCount)
	assert.Equal(t, 4, *got.SentenceCount)
}

func TestMemoryRepositoryUpdateMissing(t *testing.T) {
	repo := NewMemoryRepository()
	err := repo.UpdateResult(context.Background(), newRecord(time.Now()))
	assert.Error(t, err)
}

func TestMemoryRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	oldest := newRecord(time.Now().Add(-2 * time.Hour))
	middle := newRecord(time.Now().Add(-1 * time.Hour))
	newest := newRecord(time.Now())
	for _, r := range []*model.Prediction{oldest, middle, newest} {
		require.NoError(t, repo.Create(ctx, r))
	}

	records, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newest.ID, records[0].ID)
	assert.Equal(t, middle.ID, records[1].ID)

	page2, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, oldest.ID, page2[0].ID)

	empty, err := repo.List(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
