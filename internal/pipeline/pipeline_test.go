package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"truthteller/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	t       *testing.T
	dir     string
	err     error
	calls   int
	wavPath string
}

func (f *fakeExtractor) Extract(ctx context.Context, videoPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	f.wavPath = filepath.Join(f.dir, "out.wav")
	require.NoError(f.t, os.WriteFile(f.wavPath, []byte("wav"), 0644))
	return f.wavPath, nil
}

type fakeTranscriber struct {
	sentences []string
	err       error
	language  string
}

func (f *fakeTranscriber) Sentences(ctx context.Context, wavPath, language, runID string) ([]string, error) {
	f.language = language
	return f.sentences, f.err
}

type fakeClassifier struct {
	labels []model.Label
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, sentences []model.TranscriptSentence) ([]model.ClassificationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ClassificationResult, len(sentences))
	for i, s := range sentences {
		out[i] = model.ClassificationResult{
			SentenceID:     s.SentenceID,
			CombinedText:   s.CombinedText(),
			OriginalText:   s.Text,
			PredictedLabel: f.labels[i%len(f.labels)],
		}
	}
	return out, nil
}

type fakeAcquirer struct {
	path  string
	title string
	err   error
	calls int
}

func (f *fakeAcquirer) Download(ctx context.Context, url string) (string, string, error) {
	f.calls++
	return f.path, f.title, f.err
}

func writeVideo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0644))
	return path
}

func TestRunLocalSuccess(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	transcriber := &fakeTranscriber{sentences: []string{"It is raining", "Taxes doubled"}}
	classifier := &fakeClassifier{labels: []model.Label{model.LabelTrue, model.LabelFalse}}
	p := New(extractor, transcriber, classifier, &fakeAcquirer{})

	ref := model.MediaReference{
		Source:   model.SourceLocal,
		Locator:  writeVideo(t),
		Language: "en",
		Title:    "clip.mp4",
	}
	result, err := p.Run(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "clip.mp4", result.Filename)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "0", result.Results[0].SentenceID)
	assert.Equal(t, "en", transcriber.language)

	require.Len(t, result.Distribution, 3)
	assert.Equal(t, 50.0, result.Distribution[0].Percentage)
	assert.Equal(t, 50.0, result.Distribution[1].Percentage)
	assert.Equal(t, 0.0, result.Distribution[2].Percentage)

	// The waveform never outlives its run.
	_, statErr := os.Stat(extractor.wavPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunRemoteAcquisitionFailureSkipsExtraction(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	acquirer := &fakeAcquirer{err: errors.New("video unavailable")}
	p := New(extractor, &fakeTranscriber{}, &fakeClassifier{}, acquirer)

	_, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceRemote,
		Locator: "https://example.com/watch?v=x",
	})
	require.Error(t, err)

	serr, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CategoryAcquisition, serr.Category)
	assert.Equal(t, 1, acquirer.calls)
	assert.Zero(t, extractor.calls, "extraction must not run after failed acquisition")
}

func TestRunLocalMissingFileIsAcquisitionFailure(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	p := New(extractor, &fakeTranscriber{}, &fakeClassifier{}, &fakeAcquirer{})

	_, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceLocal,
		Locator: "/nonexistent/clip.mp4",
	})
	require.Error(t, err)

	serr, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CategoryAcquisition, serr.Category)
	assert.Zero(t, extractor.calls)
}

func TestRunExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{t: t, err: errors.New("no audio stream")}
	p := New(extractor, &fakeTranscriber{}, &fakeClassifier{}, &fakeAcquirer{})

	_, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceLocal,
		Locator: writeVideo(t),
	})
	serr, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CategoryExtraction, serr.Category)
}

func TestRunClassificationFailureStillRemovesWaveform(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	classifier := &fakeClassifier{err: errors.New("contract violation")}
	p := New(extractor, &fakeTranscriber{sentences: []string{"One"}}, classifier, &fakeAcquirer{})

	_, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceLocal,
		Locator: writeVideo(t),
	})
	serr, ok := AsStageError(err)
	require.True(t, ok)
	assert.Equal(t, CategoryClassification, serr.Category)

	_, statErr := os.Stat(extractor.wavPath)
	assert.True(t, os.IsNotExist(statErr), "waveform must be removed on failure too")
}

func TestRunEmptyTranscriptYieldsZeroDistribution(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	p := New(extractor, &fakeTranscriber{}, &fakeClassifier{}, &fakeAcquirer{})

	result, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceLocal,
		Locator: writeVideo(t),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	require.Len(t, result.Distribution, 3)
	for _, share := range result.Distribution {
		assert.Equal(t, 0.0, share.Percentage)
	}
}

func TestRunRemoteUsesDownloadedTitle(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	acquirer := &fakeAcquirer{path: writeVideo(t), title: "Budget_Speech"}
	p := New(extractor, &fakeTranscriber{sentences: []string{"Hello"}}, &fakeClassifier{labels: []model.Label{model.LabelNeutral}}, acquirer)

	result, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceRemote,
		Locator: "https://example.com/v",
	})
	require.NoError(t, err)
	assert.Equal(t, "Budget_Speech", result.Filename)
}

func TestRunRetainArtifactsKeepsWaveform(t *testing.T) {
	extractor := &fakeExtractor{t: t, dir: t.TempDir()}
	p := New(extractor, &fakeTranscriber{}, &fakeClassifier{}, &fakeAcquirer{}).
		WithRetainArtifacts(true)

	_, err := p.Run(context.Background(), model.MediaReference{
		Source:  model.SourceLocal,
		Locator: writeVideo(t),
	})
	require.NoError(t, err)

	_, statErr := os.Stat(extractor.wavPath)
	assert.NoError(t, statErr, "retained waveform should survive the run")
}
