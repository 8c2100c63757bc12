package transcript

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleRecognizer implements per-chunk speech recognition using the Google
// Cloud Speech-to-Text REST API. It is tolerant by contract: a chunk with no
// detectable speech returns an empty transcript, not an error.
type GoogleRecognizer struct {
	apiKey     string
	httpClient *http.Client
	useAPIKey  bool
}

// NewGoogleRecognizer creates the recognizer. keyData can be either:
//   - An API key (39 characters, typically starts with "AIzaSy")
//   - A file path to a JSON service-account key file
//   - A JSON string containing the service account credentials
func NewGoogleRecognizer(keyData string) (*GoogleRecognizer, error) {
	keyDataTrimmed := strings.TrimSpace(keyData)
	if keyDataTrimmed == "" {
		return nil, fmt.Errorf("GOOGLE_STT_KEY_FILE environment variable is not set. It can be an API key, a path to a JSON key file, or a JSON credentials string")
	}

	if len(keyDataTrimmed) == 39 && strings.HasPrefix(keyDataTrimmed, "AIzaSy") {
		log.Printf("[Google STT] Using API key authentication")
		return &GoogleRecognizer{
			apiKey:     keyDataTrimmed,
			httpClient: &http.Client{Timeout: 90 * time.Second},
			useAPIKey:  true,
		}, nil
	}

	ctx := context.Background()
	var jsonData []byte
	if strings.HasPrefix(keyDataTrimmed, "{") {
		log.Printf("[Google STT] Using JSON credentials from environment")
		jsonData = []byte(keyDataTrimmed)
	} else {
		log.Printf("[Google STT] Reading key file: %s", keyDataTrimmed)
		var err error
		jsonData, err = os.ReadFile(keyDataTrimmed)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file '%s': %w", keyDataTrimmed, err)
		}
	}

	creds, err := google.CredentialsFromJSON(ctx, jsonData, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
	}

	return &GoogleRecognizer{
		httpClient: oauth2.NewClient(ctx, creds.TokenSource),
		useAPIKey:  false,
	}, nil
}

type googleRecognizeRequest struct {
	Config googleRecognitionConfig `json:"config"`
	Audio  googleRecognitionAudio  `json:"audio"`
}

type googleRecognitionConfig struct {
	Encoding        string `json:"encoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
	LanguageCode    string `json:"languageCode"`
}

type googleRecognitionAudio struct {
	Content string `json:"content"` // Base64 encoded
}

type googleRecognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Recognize transcribes a single utterance chunk in the given language.
func (r *GoogleRecognizer) Recognize(ctx context.Context, chunkPath, languageCode string) (string, error) {
	audioBytes, err := os.ReadFile(chunkPath)
	if err != nil {
		return "", fmt.Errorf("failed to read chunk file: %w", err)
	}

	reqBody := googleRecognizeRequest{
		Config: googleRecognitionConfig{
			Encoding:        "LINEAR16",
			SampleRateHertz: 16000,
			LanguageCode:    languageCode,
		},
		Audio: googleRecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audioBytes),
		},
	}

	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := "https://speech.googleapis.com/v1/speech:recognize"
	if r.useAPIKey {
		apiURL = apiURL + "?key=" + r.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(reqJSON))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Google Speech-to-Text API returned status %d: %s", resp.StatusCode, previewBody(body))
	}

	var sttResp googleRecognizeResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return "", fmt.Errorf("failed to parse Google Speech-to-Text response: %w", err)
	}
	if sttResp.Error != nil {
		return "", fmt.Errorf("Google Speech-to-Text API error: %s", sttResp.Error.Message)
	}

	// No results or no alternatives means no speech in this chunk. That is a
	// normal outcome for a chunk of breath or background noise.
	if len(sttResp.Results) == 0 || len(sttResp.Results[0].Alternatives) == 0 {
		return "", nil
	}

	return strings.TrimSpace(sttResp.Results[0].Alternatives[0].Transcript), nil
}

func previewBody(body []byte) string {
	s := string(body)
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
