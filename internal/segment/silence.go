package segment

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default splitting parameters, matching the tuning the truthfulness model
// was validated against.
const (
	// DefaultMinSilence is the minimum silence duration that counts as an
	// utterance boundary.
	DefaultMinSilence = 500 * time.Millisecond

	// DefaultThresholdOffsetDB is subtracted from the file's mean volume to
	// form the silence threshold, so quiet recordings do not split on every
	// breath.
	DefaultThresholdOffsetDB = 14.0

	// DefaultKeepSilence is how much of the bounding silence each chunk
	// retains, so word onsets and offsets are not clipped.
	DefaultKeepSilence = 300 * time.Millisecond
)

// Chunk is one silence-delimited utterance persisted as a transient WAV file.
type Chunk struct {
	Index int
	Path  string
	Start time.Duration
	End   time.Duration
}

// Segmenter splits a waveform into utterance-sized chunks at silence
// boundaries using ffmpeg's volumedetect and silencedetect filters. Chunks
// for each run live in their own directory under chunkRoot so concurrent
// runs can never see or delete each other's files.
type Segmenter struct {
	ffmpegPath        string
	chunkRoot         string
	minSilence        time.Duration
	thresholdOffsetDB float64
	keepSilence       time.Duration
}

func NewSegmenter(ffmpegPath, chunkRoot string) *Segmenter {
	return &Segmenter{
		ffmpegPath:        ffmpegPath,
		chunkRoot:         chunkRoot,
		minSilence:        DefaultMinSilence,
		thresholdOffsetDB: DefaultThresholdOffsetDB,
		keepSilence:       DefaultKeepSilence,
	}
}

// RunDir returns the chunk directory owned by a single pipeline run.
func (s *Segmenter) RunDir(runID string) string {
	return filepath.Join(s.chunkRoot, "run_"+runID)
}

// CleanupRun removes a run's chunk directory wholesale. Safe to call even
// when the directory was never created.
func (s *Segmenter) CleanupRun(runID string) {
	if err := os.RemoveAll(s.RunDir(runID)); err != nil {
		log.Printf("[Segmenter] Failed to remove chunk dir for run %s: %v", runID, err)
	}
}

// PurgeStaleRuns removes leftover run_* chunk directories older than maxAge.
// It runs at startup, not per request, so an in-flight sibling run's chunks
// are never touched.
func PurgeStaleRuns(chunkRoot string, maxAge time.Duration) {
	entries, err := os.ReadDir(chunkRoot)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		stale := filepath.Join(chunkRoot, entry.Name())
		if err := os.RemoveAll(stale); err != nil {
			log.Printf("[Segmenter] Failed to purge stale chunk dir %s: %v", stale, err)
		} else {
			log.Printf("[Segmenter] Purged stale chunk dir %s", stale)
		}
	}
}

// Segment splits wavPath into chunks and writes them under the run's chunk
// directory. A waveform with no detectable silence yields exactly one chunk
// spanning the whole input. The caller owns the returned chunk files and the
// run directory.
func (s *Segmenter) Segment(ctx context.Context, wavPath, runID string) ([]Chunk, error) {
	meanVolume, total, err := s.probe(ctx, wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe waveform: %w", err)
	}

	threshold := meanVolume - s.thresholdOffsetDB
	silences, err := s.detectSilences(ctx, wavPath, threshold)
	if err != nil {
		return nil, fmt.Errorf("silence detection failed: %w", err)
	}
	log.Printf("[Segmenter] mean_volume=%.1fdB threshold=%.1fdB silences=%d duration=%v",
		meanVolume, threshold, len(silences), total)

	intervals := speechIntervals(silences, total, s.keepSilence)
	if len(intervals) == 0 {
		// Whole file below threshold: no utterances at all.
		return nil, nil
	}

	runDir := s.RunDir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chunk directory: %w", err)
	}

	chunks := make([]Chunk, 0, len(intervals))
	for i, iv := range intervals {
		name := fmt.Sprintf("chunk_%03d_%s.wav", i, strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
		chunkPath := filepath.Join(runDir, name)
		if err := s.extractChunk(ctx, wavPath, chunkPath, iv.start, iv.end); err != nil {
			return nil, err
		}
		chunks = append(chunks, Chunk{Index: i, Path: chunkPath, Start: iv.start, End: iv.end})
	}

	return chunks, nil
}

// probe runs a volumedetect pass and returns the mean volume in dB plus the
// stream duration.
func (s *Segmenter) probe(ctx context.Context, wavPath string) (float64, time.Duration, error) {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-hide_banner",
		"-i", wavPath,
		"-af", "volumedetect",
		"-f", "null", "-",
	)
	// ffmpeg writes filter stats to stderr; the exit code can be non-zero
	// even when the stats are usable, so parse before failing.
	output, err := cmd.CombinedOutput()
	text := string(output)

	mean, meanErr := parseMeanVolume(text)
	dur, durErr := parseDuration(text)
	if meanErr != nil || durErr != nil {
		if err != nil {
			return 0, 0, fmt.Errorf("ffmpeg volumedetect failed: %w", err)
		}
		if meanErr != nil {
			return 0, 0, meanErr
		}
		return 0, 0, durErr
	}
	return mean, dur, nil
}

// detectSilences runs silencedetect with the adaptive threshold and returns
// the detected silence spans in temporal order.
func (s *Segmenter) detectSilences(ctx context.Context, wavPath string, thresholdDB float64) ([]span, error) {
	filter := fmt.Sprintf("silencedetect=noise=%.1fdB:d=%.3f", thresholdDB, s.minSilence.Seconds())
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-hide_banner",
		"-i", wavPath,
		"-af", filter,
		"-f", "null", "-",
	)
	output, err := cmd.CombinedOutput()
	text := string(output)

	silences, parseErr := parseSilences(text)
	if parseErr != nil {
		if err != nil {
			return nil, fmt.Errorf("ffmpeg silencedetect failed: %w", err)
		}
		return nil, parseErr
	}
	return silences, nil
}

func (s *Segmenter) extractChunk(ctx context.Context, wavPath, chunkPath string, start, end time.Duration) error {
	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-y", "-hide_banner",
		"-i", wavPath,
		"-ss", formatFFmpegTime(start),
		"-to", formatFFmpegTime(end),
		"-c:a", "pcm_s16le",
		chunkPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to extract chunk %s: %w (output: %s)", filepath.Base(chunkPath), err, tail(string(output), 200))
	}
	return nil
}

// span is a half-open [start, end) time range inside the waveform.
type span struct {
	start time.Duration
	end   time.Duration
}

// speechIntervals computes the complement of the silence spans over the
// stream and widens each interval by up to keep on both sides. Inside a
// silence gap shared by two intervals each side takes at most half the gap,
// so intervals never swallow a neighbour's padding.
func speechIntervals(silences []span, total, keep time.Duration) []span {
	if total <= 0 {
		return nil
	}
	if len(silences) == 0 {
		return []span{{0, total}}
	}

	var out []span
	cursor := time.Duration(0)
	for _, sil := range silences {
		if sil.start > cursor {
			out = append(out, span{cursor, sil.start})
		}
		if sil.end > cursor {
			cursor = sil.end
		}
	}
	if cursor < total {
		out = append(out, span{cursor, total})
	}
	if len(out) == 0 {
		return nil
	}

	// Padding is computed against the unpadded bounds for every interval, so
	// both neighbours of a narrow gap get the same half-gap share.
	padded := make([]span, len(out))
	for i := range out {
		start := out[i].start
		pad := keep
		if i > 0 {
			gap := out[i].start - out[i-1].end
			if half := gap / 2; half < pad {
				pad = half
			}
		}
		start -= pad
		if start < 0 {
			start = 0
		}

		end := out[i].end
		pad = keep
		if i < len(out)-1 {
			gap := out[i+1].start - out[i].end
			if half := gap / 2; half < pad {
				pad = half
			}
		}
		end += pad
		if end > total {
			end = total
		}
		padded[i] = span{start, end}
	}

	return padded
}

var (
	reMeanVolume = regexp.MustCompile(`mean_volume:\s*(-?\d+(?:\.\d+)?)\s*dB`)
	reDuration   = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)
	reSilStart   = regexp.MustCompile(`silence_start:\s*(-?\d+(?:\.\d+)?)`)
	reSilEnd     = regexp.MustCompile(`silence_end:\s*(-?\d+(?:\.\d+)?)`)
)

func parseMeanVolume(output string) (float64, error) {
	m := reMeanVolume.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("could not parse mean_volume from ffmpeg output")
	}
	return strconv.ParseFloat(m[1], 64)
}

// parseDuration extracts "Duration: HH:MM:SS.cc" from ffmpeg stderr.
func parseDuration(output string) (time.Duration, error) {
	m := reDuration.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("could not parse duration from ffmpeg output")
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])

	frac := m[4]
	ms, _ := strconv.Atoi(frac)
	switch len(frac) {
	case 1:
		ms *= 100
	case 2:
		ms *= 10
	case 3:
		// already milliseconds
	default:
		for i := len(frac); i > 3; i-- {
			ms /= 10
		}
	}

	return time.Duration(h)*time.Hour +
		time.Duration(mi)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// parseSilences pairs silence_start/silence_end markers from silencedetect
// output. A trailing silence_start without an end means the file ends in
// silence; the span is left open-ended to the stream duration by the caller
// logic (the interval builder only needs the start).
func parseSilences(output string) ([]span, error) {
	starts := reSilStart.FindAllStringSubmatch(output, -1)
	ends := reSilEnd.FindAllStringSubmatch(output, -1)

	var silences []span
	for i, sm := range starts {
		startSec, err := strconv.ParseFloat(sm[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad silence_start value %q", sm[1])
		}
		start := time.Duration(startSec * float64(time.Second))
		if start < 0 {
			start = 0
		}

		end := time.Duration(1<<62 - 1) // open-ended: file ends in silence
		if i < len(ends) {
			endSec, err := strconv.ParseFloat(ends[i][1], 64)
			if err != nil {
				return nil, fmt.Errorf("bad silence_end value %q", ends[i][1])
			}
			end = time.Duration(endSec * float64(time.Second))
		}
		silences = append(silences, span{start, end})
	}
	return silences, nil
}

func formatFFmpegTime(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, sec)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
