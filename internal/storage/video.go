package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Container formats accepted for upload. Anything else is rejected before a
// byte is written to disk.
var allowedExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".avi": true,
	".mkv": true,
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// VideoStore materializes uploaded video files under a single directory,
// prefixing each with a fresh UUID so concurrent uploads of the same
// filename never collide.
type VideoStore struct {
	dir      string
	maxBytes int64
}

func NewVideoStore(dir string, maxUploadMB int) *VideoStore {
	return &VideoStore{
		dir:      dir,
		maxBytes: int64(maxUploadMB) * 1024 * 1024,
	}
}

// Save validates and writes an uploaded video, returning its local path.
func (s *VideoStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported video format %q (allowed: mp4, mov, avi, mkv)", ext)
	}
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", fmt.Errorf("file too large: %d bytes (limit %d)", file.Size, s.maxBytes)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create video directory: %w", err)
	}

	name := SanitizeFilename(strings.TrimSuffix(filepath.Base(file.Filename), ext))
	dst := filepath.Join(s.dir, fmt.Sprintf("%s_%s%s", uuid.New().String()[:8], name, ext))

	if err := saveMultipartFile(file, dst); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return dst, nil
}

// SanitizeFilename strips characters that are unsafe in paths or shell
// contexts and caps the length.
func SanitizeFilename(name string) string {
	clean := unsafeChars.ReplaceAllString(name, "_")
	clean = strings.Trim(clean, "_.")
	if clean == "" {
		clean = "video"
	}
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return clean
}

func saveMultipartFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.ReadFrom(src)
	return err
}
