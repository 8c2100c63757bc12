package transcript

import (
	"context"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperEngine is the whole-file English transcription engine, backed by
// the OpenAI audio transcription API.
type WhisperEngine struct {
	client *openai.Client
	model  string
}

// NewWhisperEngine creates the engine. The API key is required; without it
// every English-path request would fail, so the constructor rejects it early.
func NewWhisperEngine(apiKey string) (*WhisperEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	return &WhisperEngine{
		client: openai.NewClient(apiKey),
		model:  openai.Whisper1,
	}, nil
}

// Transcribe sends the whole waveform in one request and returns the full
// transcript text.
func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	startTime := time.Now()

	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    e.model,
		FilePath: audioPath,
	})
	if err != nil {
		log.Printf("[Whisper] Transcription error: %v", err)
		return "", fmt.Errorf("whisper transcription error: %w", err)
	}

	log.Printf("[Whisper] Transcription successful: length=%d, duration=%v",
		len(resp.Text), time.Since(startTime))
	return resp.Text, nil
}
