package model

import (
	"strconv"
	"strings"
)

// SourceKind tells the pipeline where the video comes from.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
)

// MediaReference describes one incoming prediction request. It is created per
// request and discarded once the pipeline reaches a terminal state.
type MediaReference struct {
	Source   SourceKind `json:"source"`
	Locator  string     `json:"locator"`  // local file path or remote URL
	Language string     `json:"language"` // ISO code, defaults to "en"
	Title    string     `json:"title"`    // display name (upload filename or video title)
}

// TranscriptSentence is one sentence of the transcript in temporal order.
// SentenceID is sequential and zero-based; it follows emission order of the
// speech, not any lexical order. The speaker metadata fields are empty for
// pipeline-originated sentences but may be pre-populated for batch input.
type TranscriptSentence struct {
	SentenceID  string `json:"sentence_id"`
	SpeakerName string `json:"speaker_name"`
	SpeakerRole string `json:"speaker_role"`
	SpeechTitle string `json:"speech_title"`
	Text        string `json:"text"`
	URL         string `json:"url"`
}

// CombinedText builds the string handed to the classifier: the speaker
// metadata fields and the sentence text joined by single spaces, trimmed.
// The field order is fixed; the classifier was trained on this template.
func (s TranscriptSentence) CombinedText() string {
	return strings.TrimSpace(s.SpeakerName + " " + s.SpeakerRole + " " + s.SpeechTitle + " " + s.Text)
}

// SentencesFromTranscript wraps raw transcript strings into sentence records
// with sequential zero-based IDs and empty speaker metadata.
func SentencesFromTranscript(texts []string) []TranscriptSentence {
	sentences := make([]TranscriptSentence, 0, len(texts))
	for i, text := range texts {
		sentences = append(sentences, TranscriptSentence{
			SentenceID: strconv.Itoa(i),
			Text:       text,
		})
	}
	return sentences
}

// ClassificationResult is the verdict for a single sentence. It is one-to-one
// with its originating TranscriptSentence and echoes its metadata.
type ClassificationResult struct {
	SentenceID     string `json:"sentence_id"`
	CombinedText   string `json:"combined_text"`
	PredictedLabel Label  `json:"predicted_label"`
	OriginalText   string `json:"original_text"`
	SpeakerName    string `json:"speaker_name"`
	SpeakerRole    string `json:"speaker_role"`
	SpeechTitle    string `json:"speech_title"`
	URL            string `json:"url"`
}

// LabelShare is one bucket of the final distribution.
type LabelShare struct {
	Label      Label   `json:"label"`
	Percentage float64 `json:"percentage"`
}

// LabelDistribution always carries exactly the three fixed labels in stable
// order (TRUE, FALSE, Neutral). Percentages are rounded to two decimals and
// sum to 100 within rounding tolerance when at least one sentence exists;
// for an empty classification set all shares are deterministically zero.
type LabelDistribution []LabelShare

// PipelineResult is the immutable terminal output of one successful run.
// The JSON keys are the wire contract consumed by the frontend.
type PipelineResult struct {
	Filename     string                 `json:"filename"`
	Distribution LabelDistribution      `json:"finalStatements"`
	Results      []ClassificationResult `json:"predicted_results"`
}
