package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombinedText(t *testing.T) {
	s := TranscriptSentence{
		SpeakerName: "Jane Doe",
		SpeakerRole: "Senator",
		SpeechTitle: "Budget Address",
		Text:        "Taxes went down.",
	}
	assert.Equal(t, "Jane Doe Senator Budget Address Taxes went down.", s.CombinedText())
}

func TestCombinedTextPartialMetadata(t *testing.T) {
	// Only leading and trailing whitespace is trimmed; empty fields in the
	// middle keep their joining spaces, matching what the classifier was
	// trained on.
	s := TranscriptSentence{SpeakerName: "A", Text: "First."}
	assert.Equal(t, "A   First.", s.CombinedText())
}

func TestCombinedTextEmptyMetadata(t *testing.T) {
	s := TranscriptSentence{Text: "Only the sentence."}
	assert.Equal(t, "Only the sentence.", s.CombinedText())
}

func TestSentencesFromTranscript(t *testing.T) {
	sentences := SentencesFromTranscript([]string{"First", "Second", "Third"})
	require.Len(t, sentences, 3)
	assert.Equal(t, "0", sentences[0].SentenceID)
	assert.Equal(t, "1", sentences[1].SentenceID)
	assert.Equal(t, "2", sentences[2].SentenceID)
	assert.Equal(t, "Second", sentences[1].Text)
	assert.Empty(t, sentences[1].SpeakerName)
}

func TestSentencesFromTranscriptEmpty(t *testing.T) {
	assert.Empty(t, SentencesFromTranscript(nil))
}
