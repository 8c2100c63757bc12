package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Upload handling
	VideoDir    string
	MaxUploadMB int64
	DownloadDir string // remote acquisitions land here
	YtDlpPath   string

	// Pipeline artifact directories
	AudioDir        string
	ChunkDir        string
	RetainArtifacts bool // keep waveforms after a run instead of deleting them
	RequestTimeout  time.Duration

	// Transcription
	FFmpegPath      string
	DefaultLanguage string
	OpenAIKey       string
	GoogleSTTKey    string // API key, key-file path, or raw JSON credentials

	// Classifier
	ClassifierProvider string
	ModelServerURL     string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		VideoDir:    getEnv("VIDEO_DIR", "uploads/video"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 10),
		DownloadDir: getEnv("DOWNLOAD_DIR", "uploads/yt"),
		YtDlpPath:   getEnv("YTDLP_PATH", "yt-dlp"),

		AudioDir:        getEnv("AUDIO_DIR", "uploads/audio"),
		ChunkDir:        getEnv("CHUNK_DIR", "uploads/audio_chunks"),
		RetainArtifacts: getEnvBool("RETAIN_ARTIFACTS", false),
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 600)) * time.Second,

		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleSTTKey:    os.Getenv("GOOGLE_STT_KEY_FILE"),

		ClassifierProvider: getEnv("CLASSIFIER_PROVIDER", "roberta"),
		ModelServerURL:     os.Getenv("MODEL_SERVER_URL"),
	}

	// A broken setup should fail at startup, not on the first request.
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required (Whisper transcription). Set it as an environment variable or in .env")
	}
	if cfg.ClassifierProvider == "roberta" && cfg.ModelServerURL == "" {
		return nil, fmt.Errorf("MODEL_SERVER_URL is required when CLASSIFIER_PROVIDER=roberta (the address of the truthfulness model server). Set it as an environment variable or in .env")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
