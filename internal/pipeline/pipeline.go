package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"truthteller/internal/classify"
	"truthteller/internal/model"
	"truthteller/internal/repository"

	"github.com/google/uuid"
)

// Status is the per-request pipeline state. Every stage may transition
// directly to StatusFailed; there are no automatic retries, the caller may
// resubmit.
type Status string

const (
	StatusReceived       Status = "received"
	StatusAudioExtracted Status = "audio_extracted"
	StatusTranscribed    Status = "transcribed"
	StatusClassified     Status = "classified"
	StatusAggregated     Status = "aggregated"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// Extractor demuxes a video file into a waveform artifact.
type Extractor interface {
	Extract(ctx context.Context, videoPath string) (string, error)
}

// Transcriber turns a waveform into sentence strings in temporal order.
type Transcriber interface {
	Sentences(ctx context.Context, wavPath, language, runID string) ([]string, error)
}

// SentenceClassifier labels transcript sentences one-to-one.
type SentenceClassifier interface {
	Classify(ctx context.Context, sentences []model.TranscriptSentence) ([]model.ClassificationResult, error)
}

// RemoteAcquirer downloads a remote video and returns its local path and
// display title.
type RemoteAcquirer interface {
	Download(ctx context.Context, url string) (string, string, error)
}

// Pipeline sequences extraction, transcription, classification and
// aggregation for one request at a time. Concurrent requests share no
// mutable state: artifacts are namespaced per run ID.
type Pipeline struct {
	extractor   Extractor
	transcriber Transcriber
	classifier  SentenceClassifier
	acquirer    RemoteAcquirer
	repo        repository.PredictionRepository // optional, may be nil

	retainArtifacts bool
	requestTimeout  time.Duration
}

func New(extractor Extractor, transcriber Transcriber, classifier SentenceClassifier, acquirer RemoteAcquirer) *Pipeline {
	return &Pipeline{
		extractor:   extractor,
		transcriber: transcriber,
		classifier:  classifier,
		acquirer:    acquirer,
	}
}

// WithRepository attaches optional run persistence.
func (p *Pipeline) WithRepository(repo repository.PredictionRepository) *Pipeline {
	p.repo = repo
	return p
}

// WithRetainArtifacts keeps waveform artifacts after the run instead of
// deleting them.
func (p *Pipeline) WithRetainArtifacts(retain bool) *Pipeline {
	p.retainArtifacts = retain
	return p
}

// WithRequestTimeout sets the per-request deadline. On expiry the current
// stage is aborted and the run's artifacts are released like any other
// failure.
func (p *Pipeline) WithRequestTimeout(d time.Duration) *Pipeline {
	p.requestTimeout = d
	return p
}

// Run executes the full media-to-verdict pipeline for one request and
// returns either a complete PipelineResult or a StageError. No partial
// results are ever returned.
func (p *Pipeline) Run(ctx context.Context, ref model.MediaReference) (*model.PipelineResult, error) {
	if p.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.requestTimeout)
		defer cancel()
	}

	runID := strings.ReplaceAll(uuid.New().String(), "-", "")
	startTime := time.Now()
	log.Printf("[Pipeline] Run %s: %s %s (language=%s)", runID, ref.Source, ref.Locator, ref.Language)

	record := p.createRecord(ctx, ref)

	advance := func(s Status) {
		log.Printf("[Pipeline] Run %s: state=%s", runID, s)
	}

	fail := func(category Category, err error) (*model.PipelineResult, error) {
		advance(StatusFailed)
		serr := stageErr(category, err)
		log.Printf("[Pipeline] Run %s failed: %v", runID, serr)
		p.finishRecord(record, StatusFailed, nil, 0, serr, startTime)
		return nil, serr
	}

	// Acquisition: remote sources are downloaded first; local uploads were
	// already materialized by the HTTP layer. Extraction must never run for
	// a source that could not be acquired.
	videoPath := ref.Locator
	title := ref.Title
	if ref.Source == model.SourceRemote {
		var err error
		videoPath, title, err = p.acquirer.Download(ctx, ref.Locator)
		if err != nil {
			return fail(CategoryAcquisition, err)
		}
	} else if _, err := os.Stat(videoPath); err != nil {
		return fail(CategoryAcquisition, fmt.Errorf("video file not readable: %w", err))
	}
	if title == "" {
		title = videoPath
	}

	wavPath, err := p.extractor.Extract(ctx, videoPath)
	if err != nil {
		return fail(CategoryExtraction, err)
	}
	advance(StatusAudioExtracted)
	// The waveform never outlives its owning request: released on success
	// and on failure, unless retention is explicitly configured.
	defer func() {
		if p.retainArtifacts {
			log.Printf("[Pipeline] Run %s: retaining waveform %s", runID, wavPath)
			return
		}
		if err := os.Remove(wavPath); err != nil {
			log.Printf("[Pipeline] Run %s: failed to remove waveform: %v", runID, err)
		}
	}()

	texts, err := p.transcriber.Sentences(ctx, wavPath, ref.Language, runID)
	if err != nil {
		return fail(CategoryTranscription, err)
	}
	advance(StatusTranscribed)
	log.Printf("[Pipeline] Run %s: %d sentences transcribed", runID, len(texts))

	sentences := model.SentencesFromTranscript(texts)
	results, err := p.classifier.Classify(ctx, sentences)
	if err != nil {
		return fail(CategoryClassification, err)
	}
	advance(StatusClassified)

	// Aggregation over an empty set is well-defined: all-zero shares.
	distribution := classify.Aggregate(results)
	advance(StatusAggregated)

	result := &model.PipelineResult{
		Filename:     title,
		Distribution: distribution,
		Results:      results,
	}
	advance(StatusCompleted)
	if record != nil {
		record.Title = title
	}
	p.finishRecord(record, StatusCompleted, distribution, len(results), nil, startTime)
	log.Printf("[Pipeline] Run %s completed in %v (%d sentences)", runID, time.Since(startTime), len(results))

	return result, nil
}

// createRecord persists the initial run record when a repository is
// configured. Persistence failures are logged and ignored: history is a
// convenience, not part of the pipeline contract.
func (p *Pipeline) createRecord(ctx context.Context, ref model.MediaReference) *model.Prediction {
	if p.repo == nil {
		return nil
	}
	record := &model.Prediction{
		ID:        uuid.New(),
		Source:    ref.Source,
		Locator:   ref.Locator,
		Title:     ref.Title,
		Language:  ref.Language,
		Status:    string(StatusReceived),
		Metadata:  make(map[string]interface{}),
		CreatedAt: time.Now(),
	}
	if err := p.repo.Create(ctx, record); err != nil {
		log.Printf("[Pipeline] Failed to persist run record: %v", err)
		return nil
	}
	return record
}

// finishRecord writes the terminal outcome. It uses a fresh context so a
// run that failed on deadline expiry can still record its failure.
func (p *Pipeline) finishRecord(record *model.Prediction, status Status, dist model.LabelDistribution, sentenceCount int, serr *StageError, startTime time.Time) {
	if p.repo == nil || record == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	elapsed := int(time.Since(startTime).Milliseconds())
	record.Status = string(status)
	record.Distribution = dist
	record.SentenceCount = &sentenceCount
	record.ProcessingTimeMs = &elapsed
	if serr != nil {
		msg := serr.Message()
		record.ErrorMessage = &msg
	}
	if err := p.repo.UpdateResult(ctx, record); err != nil {
		log.Printf("[Pipeline] Failed to update run record: %v", err)
	}
}
