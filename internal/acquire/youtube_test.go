package acquire

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTitle(t *testing.T) {
	assert.Equal(t, "Budget_Speech_2024", SanitizeTitle("Budget Speech 2024"))
	assert.Equal(t, "a_b_c", SanitizeTitle("a/b\\c"))
	assert.Equal(t, "hello", SanitizeTitle("  hello!!!  "))
	assert.Equal(t, "", SanitizeTitle("???"))
}

func TestSanitizeTitleTruncatesTo50(t *testing.T) {
	long := strings.Repeat("x", 80)
	assert.Len(t, SanitizeTitle(long), 50)
}

func TestSanitizeTitleKeepsSafeChars(t *testing.T) {
	assert.Equal(t, "clip-01_final.v2", SanitizeTitle("clip-01_final.v2"))
}

func TestTargetPathIsUniquePerCall(t *testing.T) {
	d := NewDownloader("yt-dlp", "uploads/yt")

	first := d.targetPath("Budget_Speech")
	second := d.targetPath("Budget_Speech")

	assert.NotEqual(t, first, second, "same title must never map to the same download path")
	assert.True(t, strings.HasPrefix(filepath.Base(first), "Budget_Speech_"))
	assert.True(t, strings.HasSuffix(first, ".mp4"))
}
