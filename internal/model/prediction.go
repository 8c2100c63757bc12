package model

import (
	"time"

	"github.com/google/uuid"
)

// Prediction represents one pipeline run as persisted for history lookups.
type Prediction struct {
	ID               uuid.UUID              `json:"id"`
	Source           SourceKind             `json:"source"`
	Locator          string                 `json:"locator"`
	Title            string                 `json:"title"`
	Language         string                 `json:"language"`
	Status           string                 `json:"status"`
	SentenceCount    *int                   `json:"sentence_count,omitempty"`
	Distribution     LabelDistribution      `json:"final_statements,omitempty"`
	ErrorMessage     *string                `json:"error_message,omitempty"`
	ProcessingTimeMs *int                   `json:"processing_time_ms,omitempty"`
	Metadata         map[string]interface{} `json:"metadata"`
	CreatedAt        time.Time              `json:"created_at"`
}
