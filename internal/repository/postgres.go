package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"truthteller/internal/db"
	"truthteller/internal/model"

	"github.com/google/uuid"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository() PredictionRepository {
	return &postgresRepository{
		db: db.DB,
	}
}

// Create creates a new prediction record
func (r *postgresRepository) Create(ctx context.Context, p *model.Prediction) error {
	query := `
		INSERT INTO predictions (
			id, source, locator, title, language, status,
			sentence_count, final_statements, error_message,
			processing_time_ms, metadata, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	distJSON, err := json.Marshal(p.Distribution)
	if err != nil {
		return fmt.Errorf("failed to marshal distribution: %w", err)
	}
	metadataJSON, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		p.ID,
		p.Source,
		p.Locator,
		p.Title,
		p.Language,
		p.Status,
		p.SentenceCount,
		distJSON,
		p.ErrorMessage,
		p.ProcessingTimeMs,
		metadataJSON,
		p.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	return nil
}

// UpdateResult updates the terminal outcome of a run
func (r *postgresRepository) UpdateResult(ctx context.Context, p *model.Prediction) error {
	query := `
		UPDATE predictions
		SET
			status = COALESCE($1, status),
			sentence_count = COALESCE($2, sentence_count),
			final_statements = COALESCE($3, final_statements),
			error_message = COALESCE($4, error_message),
			processing_time_ms = COALESCE($5, processing_time_ms),
			title = CASE WHEN $6 <> '' THEN $6 ELSE title END
		WHERE id = $7
	`

	var distJSON interface{}
	if p.Distribution != nil {
		b, err := json.Marshal(p.Distribution)
		if err != nil {
			return fmt.Errorf("failed to marshal distribution: %w", err)
		}
		distJSON = b
	}

	_, err := r.db.ExecContext(ctx, query,
		p.Status,
		p.SentenceCount,
		distJSON,
		p.ErrorMessage,
		p.ProcessingTimeMs,
		p.Title,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update prediction: %w", err)
	}

	return nil
}

// GetByID retrieves a prediction record by ID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	query := `
		SELECT
			id, source, locator, title, language, status,
			sentence_count, final_statements, error_message,
			processing_time_ms, metadata, created_at
		FROM predictions
		WHERE id = $1
	`

	p, err := scanPrediction(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prediction not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return p, nil
}

// List retrieves the most recent prediction records with pagination
func (r *postgresRepository) List(ctx context.Context, limit, offset int) ([]model.Prediction, error) {
	query := `
		SELECT
			id, source, locator, title, language, status,
			sentence_count, final_statements, error_message,
			processing_time_ms, metadata, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []model.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return predictions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (*model.Prediction, error) {
	var p model.Prediction
	var distJSON, metadataJSON []byte
	var createdAt time.Time

	err := row.Scan(
		&p.ID,
		&p.Source,
		&p.Locator,
		&p.Title,
		&p.Language,
		&p.Status,
		&p.SentenceCount,
		&distJSON,
		&p.ErrorMessage,
		&p.ProcessingTimeMs,
		&metadataJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = createdAt

	if len(distJSON) > 0 {
		if err := json.Unmarshal(distJSON, &p.Distribution); err != nil {
			return nil, fmt.Errorf("failed to unmarshal distribution: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	} else {
		p.Metadata = make(map[string]interface{})
	}

	return &p, nil
}
