package repository

import (
	"context"
	"truthteller/internal/model"

	"github.com/google/uuid"
)

// PredictionRepository defines the interface for prediction-run data access
type PredictionRepository interface {
	// Create creates a new prediction record
	Create(ctx context.Context, p *model.Prediction) error

	// UpdateResult updates the terminal outcome of a run (status,
	// distribution, sentence count, error message, processing time)
	UpdateResult(ctx context.Context, p *model.Prediction) error

	// GetByID retrieves a prediction record by ID
	GetByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error)

	// List retrieves the most recent prediction records with pagination
	List(ctx context.Context, limit, offset int) ([]model.Prediction, error)
}
