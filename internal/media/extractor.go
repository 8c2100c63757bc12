package media

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Extractor demuxes the audio stream of a video container into an
// uncompressed WAV artifact using ffmpeg.
type Extractor struct {
	ffmpegPath string
	audioDir   string
}

func NewExtractor(ffmpegPath, audioDir string) *Extractor {
	return &Extractor{ffmpegPath: ffmpegPath, audioDir: audioDir}
}

// ArtifactPath builds a collision-resistant artifact name for a video file:
// <base>_<uuidhex>.wav inside the audio directory. Two runs over the same
// input always get distinct paths.
func (e *Extractor) ArtifactPath(videoPath string) string {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	name := fmt.Sprintf("%s_%s.wav", base, strings.ReplaceAll(uuid.New().String(), "-", ""))
	return filepath.Join(e.audioDir, name)
}

// Extract demuxes videoPath to a mono 16kHz PCM WAV file and returns the
// artifact path. Extraction failures (corrupt container, missing audio
// stream, codec error) come back as errors, never panics; they are
// non-transient, so callers should not retry the same input.
func (e *Extractor) Extract(ctx context.Context, videoPath string) (string, error) {
	if err := os.MkdirAll(e.audioDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}

	outPath := e.ArtifactPath(videoPath)

	// The generated name should never collide, but if something occupies the
	// target path, clear it first. A removal failure (permission denial) is a
	// reported error, not a crash.
	if _, err := os.Stat(outPath); err == nil {
		if err := os.Remove(outPath); err != nil {
			log.Printf("[Audio Extract] Permission denied while removing existing file: %v", err)
			return "", fmt.Errorf("failed to remove existing audio artifact: %w", err)
		}
	}

	// -vn: drop video, -ac 1 -ar 16000 -c:a pcm_s16le: mono 16kHz PCM,
	// the layout speech engines expect.
	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-y", "-hide_banner",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		"-f", "wav",
		outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Printf("[Audio Extract] ffmpeg failed for %s: %v", videoPath, err)
		// A partial artifact from a failed run must not linger.
		_ = os.Remove(outPath)
		return "", fmt.Errorf("ffmpeg audio extraction failed: %w (output: %s)", err, tail(string(output), 300))
	}

	log.Printf("[Audio Extract] Wrote %s", outPath)
	return outPath, nil
}

// tail returns the last n bytes of s, for keeping ffmpeg noise out of logs.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
