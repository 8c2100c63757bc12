package transcript

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"unicode"

	"truthteller/internal/segment"
)

// Engine transcribes a whole waveform file in one blocking call. Used for
// the English path.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Recognizer transcribes a single utterance chunk in the given language.
// An empty string (no speech detected) is a valid result, not an error.
type Recognizer interface {
	Recognize(ctx context.Context, chunkPath, languageCode string) (string, error)
}

// Segmenter is the silence-based splitter consumed by the non-English path.
type Segmenter interface {
	Segment(ctx context.Context, wavPath, runID string) ([]segment.Chunk, error)
	CleanupRun(runID string)
}

// Router picks the transcription strategy from the requested language:
// English goes through the whole-file engine, everything else through the
// segment-and-recognize loop.
type Router struct {
	engine     Engine
	recognizer Recognizer
	segmenter  Segmenter
}

func NewRouter(engine Engine, recognizer Recognizer, segmenter Segmenter) *Router {
	return &Router{engine: engine, recognizer: recognizer, segmenter: segmenter}
}

// Sentences produces the transcript of wavPath as sentence-like strings in
// temporal order. An empty slice is valid: silent or unintelligible audio
// simply yields zero sentences downstream.
func (r *Router) Sentences(ctx context.Context, wavPath, language, runID string) ([]string, error) {
	if IsEnglish(language) {
		log.Printf("[Transcribe] Using whole-file engine for language %q", language)
		return r.wholeFile(ctx, wavPath)
	}
	log.Printf("[Transcribe] Using per-chunk recognition for language %q", language)
	return r.perChunk(ctx, wavPath, RecognitionLanguage(language), runID)
}

// wholeFile transcribes in a single pass and splits on ". ". The split is
// deliberately crude: it keeps the English path single-pass and low-latency
// at the cost of imperfect segmentation around abbreviations.
func (r *Router) wholeFile(ctx context.Context, wavPath string) ([]string, error) {
	text, err := r.engine.Transcribe(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("whole-file transcription failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, ". "), nil
}

// perChunk splits the waveform at silence boundaries and recognizes each
// chunk individually. A chunk whose recognition fails or comes back empty is
// dropped; one unintelligible utterance must not invalidate the recording.
// Every chunk file is deleted once its recognition call returns, and the
// run's chunk directory is removed whenever perChunk returns, segmentation
// failures included.
func (r *Router) perChunk(ctx context.Context, wavPath, languageCode, runID string) ([]string, error) {
	if r.recognizer == nil {
		return nil, fmt.Errorf("no chunk recognizer configured; set GOOGLE_STT_KEY_FILE to enable non-English transcription")
	}

	// Registered before Segment: a segmentation failure mid-extraction can
	// leave chunks behind, and those must not outlive the request either.
	defer r.segmenter.CleanupRun(runID)

	chunks, err := r.segmenter.Segment(ctx, wavPath, runID)
	if err != nil {
		return nil, fmt.Errorf("segmentation failed: %w", err)
	}

	var results []string
	for _, chunk := range chunks {
		text, err := r.recognizer.Recognize(ctx, chunk.Path, languageCode)
		if removeErr := os.Remove(chunk.Path); removeErr != nil {
			log.Printf("[Transcribe] Failed to remove chunk %s: %v", chunk.Path, removeErr)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[Transcribe] Dropping chunk %d: %v", chunk.Index, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			log.Printf("[Transcribe] Dropping chunk %d: empty result", chunk.Index)
			continue
		}
		results = append(results, Capitalize(text))
	}

	log.Printf("[Transcribe] %d/%d chunks produced text", len(results), len(chunks))
	return results, nil
}

// IsEnglish reports whether the requested language routes to the whole-file
// engine: any case-insensitive "en" prefix (en, EN-us, en_GB, ...).
func IsEnglish(language string) bool {
	return strings.HasPrefix(strings.ToLower(language), "en")
}

// RecognitionLanguage maps a short ISO code to the region-qualified code the
// recognition API expects. Unqualified codes default to their most common
// region; the fallback target is Hindi.
func RecognitionLanguage(language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		return "hi-IN"
	}
	if strings.Contains(lang, "-") || strings.Contains(lang, "_") {
		return strings.ReplaceAll(language, "_", "-")
	}
	switch lang {
	case "hi":
		return "hi-IN"
	case "vi":
		return "vi-VN"
	default:
		return language
	}
}

// Capitalize upper-cases the first rune of s for display.
func Capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
