package media

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactPathIsUniquePerCall(t *testing.T) {
	e := NewExtractor("ffmpeg", "uploads/audio")

	first := e.ArtifactPath("uploads/video/clip.mp4")
	second := e.ArtifactPath("uploads/video/clip.mp4")

	assert.NotEqual(t, first, second, "same input must never map to the same artifact")
	assert.Equal(t, "uploads/audio", filepath.Dir(first))
	assert.True(t, strings.HasPrefix(filepath.Base(first), "clip_"))
	assert.True(t, strings.HasSuffix(first, ".wav"))
}

func TestArtifactPathStripsContainerExtension(t *testing.T) {
	e := NewExtractor("ffmpeg", "out")
	path := e.ArtifactPath("/videos/some.talk.mkv")
	assert.False(t, strings.Contains(filepath.Base(path), ".mkv"))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "some.talk_"))
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("short", 10))
	assert.Equal(t, "...cdefghij", tail("abcdefghij", 8))
}
