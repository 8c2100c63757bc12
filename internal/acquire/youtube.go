package acquire

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Downloader acquires remote videos through yt-dlp. It is the remote half of
// video acquisition; local uploads are materialized by internal/storage.
type Downloader struct {
	ytDlpPath string
	outputDir string
}

func NewDownloader(ytDlpPath, outputDir string) *Downloader {
	return &Downloader{ytDlpPath: ytDlpPath, outputDir: outputDir}
}

// Download fetches the video at url as a 480p-capped MP4 and returns the
// local file path plus the sanitized video title used as display name.
func (d *Downloader) Download(ctx context.Context, url string) (string, string, error) {
	if err := os.MkdirAll(d.outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create download directory: %w", err)
	}

	// First pass: resolve the title without downloading.
	titleCmd := exec.CommandContext(ctx, d.ytDlpPath, "--no-playlist", "--print", "title", "--skip-download", url)
	titleOut, err := titleCmd.Output()
	if err != nil {
		log.Printf("[Acquire] yt-dlp title probe failed for %s: %v", url, err)
		return "", "", fmt.Errorf("failed to resolve video: %w", err)
	}

	safeTitle := SanitizeTitle(strings.TrimSpace(string(titleOut)))
	if safeTitle == "" {
		safeTitle = "video"
	}

	outPath := d.targetPath(safeTitle)

	dlCmd := exec.CommandContext(ctx, d.ytDlpPath,
		"--no-playlist",
		"-f", "best[height<=480][ext=mp4]/best[ext=mp4]",
		"--merge-output-format", "mp4",
		"-o", outPath,
		url,
	)
	if output, err := dlCmd.CombinedOutput(); err != nil {
		log.Printf("[Acquire] yt-dlp download failed for %s: %v", url, err)
		return "", "", fmt.Errorf("failed to download video: %w (output: %s)", err, previewOutput(string(output)))
	}

	log.Printf("[Acquire] Downloaded %s -> %s", url, outPath)
	return outPath, safeTitle, nil
}

// targetPath builds a collision-resistant download destination. Two requests
// for the same video must never share a file: yt-dlp would truncate it under
// a concurrent run still reading it.
func (d *Downloader) targetPath(safeTitle string) string {
	name := fmt.Sprintf("%s_%s.mp4", safeTitle, strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return filepath.Join(d.outputDir, name)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeTitle reduces an arbitrary video title to a filesystem-safe name,
// truncated to 50 characters.
func SanitizeTitle(title string) string {
	safe := unsafeChars.ReplaceAllString(title, "_")
	safe = strings.Trim(safe, "._-")
	if len(safe) > 50 {
		safe = safe[:50]
	}
	return safe
}

func previewOutput(s string) string {
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
