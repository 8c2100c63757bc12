package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// RobertaCapability calls the fine-tuned sequence-classification model hosted
// by the model server. The model is loaded once by the server at its fixed
// location; this client only checks reachability at construction so a missing
// model surfaces at startup instead of on the first request.
type RobertaCapability struct {
	baseURL    string
	httpClient *http.Client
}

// NewRobertaCapability creates the client and probes the model server's
// health endpoint.
func NewRobertaCapability(baseURL string) (*RobertaCapability, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("MODEL_SERVER_URL environment variable is not set")
	}

	c := &RobertaCapability{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}

	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return nil, fmt.Errorf("model server unreachable at %s: %w", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server at %s is not healthy (status %d); is the model loaded?", baseURL, resp.StatusCode)
	}

	log.Printf("[Classifier Factory] Model server ready at %s", baseURL)
	return c, nil
}

// Name returns the provider name
func (c *RobertaCapability) Name() string {
	return "roberta"
}

type robertaPredictRequest struct {
	Texts []string `json:"texts"`
}

type robertaPredictResponse struct {
	Labels []string `json:"labels"`
}

// ClassifyBatch sends the combined texts to the model server's /predict
// endpoint and returns its raw labels in order.
func (c *RobertaCapability) ClassifyBatch(ctx context.Context, texts []string) ([]string, error) {
	b, err := json.Marshal(robertaPredictRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model server returned status %d: %s", resp.StatusCode, previewBody(body))
	}

	var out robertaPredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse model server response: %w", err)
	}

	return out.Labels, nil
}

func previewBody(body []byte) string {
	s := string(body)
	if len(s) > 300 {
		return s[:300] + "..."
	}
	return s
}
