package classify

import (
	"context"
	"fmt"
	"log"

	"truthteller/internal/model"
)

// Capability is the truthfulness classifier consumed by the adapter. It
// accepts a batch of combined-text strings and returns one raw label string
// per input, in the same order.
type Capability interface {
	// ClassifyBatch classifies combined texts. len(output) == len(input).
	ClassifyBatch(ctx context.Context, texts []string) ([]string, error)

	// Name returns the name of the provider (e.g., "roberta", "openai")
	Name() string
}

// Classifier batches transcribed sentences, invokes the capability and
// normalizes its output into ClassificationResult records.
type Classifier struct {
	capability Capability
}

func NewClassifier(capability Capability) *Classifier {
	return &Classifier{capability: capability}
}

// Classify runs the batch and preserves one-to-one correspondence: output
// order matches input order and every SentenceID is carried through
// unchanged. A label outside the fixed set is a contract violation by the
// capability and fails the whole batch; it is never coerced to a default.
func (c *Classifier) Classify(ctx context.Context, sentences []model.TranscriptSentence) ([]model.ClassificationResult, error) {
	if len(sentences) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(sentences))
	for _, s := range sentences {
		texts = append(texts, s.CombinedText())
	}

	labels, err := c.capability.ClassifyBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("classifier %s failed: %w", c.capability.Name(), err)
	}
	if len(labels) != len(sentences) {
		return nil, fmt.Errorf("classifier %s returned %d labels for %d sentences", c.capability.Name(), len(labels), len(sentences))
	}

	results := make([]model.ClassificationResult, 0, len(sentences))
	for i, s := range sentences {
		label, err := model.ParseLabel(labels[i])
		if err != nil {
			return nil, fmt.Errorf("classifier %s contract violation for sentence %s: %w", c.capability.Name(), s.SentenceID, err)
		}
		results = append(results, model.ClassificationResult{
			SentenceID:     s.SentenceID,
			CombinedText:   texts[i],
			PredictedLabel: label,
			OriginalText:   s.Text,
			SpeakerName:    s.SpeakerName,
			SpeakerRole:    s.SpeakerRole,
			SpeechTitle:    s.SpeechTitle,
			URL:            s.URL,
		})
	}

	log.Printf("[Classify] %d sentences classified via %s", len(results), c.capability.Name())
	return results, nil
}
