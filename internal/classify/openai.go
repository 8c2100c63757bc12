package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICapability labels sentences through a chat-completion call with a
// strict JSON response format. It is the fallback provider for deployments
// without the model server.
type OpenAICapability struct {
	client *openai.Client
}

func NewOpenAICapability(apiKey string) (*OpenAICapability, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}
	return &OpenAICapability{client: openai.NewClient(apiKey)}, nil
}

// Name returns the provider name
func (c *OpenAICapability) Name() string {
	return "openai"
}

const labelSystemPrompt = `You are a truthfulness classifier for political and public speech.
For every numbered statement you receive, assign exactly one label:
- "TRUE" for statements that are factually accurate
- "FALSE" for statements that are factually inaccurate
- "Neutral" for opinions, questions, or statements that cannot be fact-checked

Respond with JSON only, in the form {"labels": ["TRUE", "Neutral", ...]},
with exactly one label per input statement, in input order. Use the three
label spellings above verbatim and nothing else.`

type openAILabelResponse struct {
	Labels []string `json:"labels"`
}

// ClassifyBatch sends the batch in one completion request and returns the
// model's raw labels in order.
func (c *OpenAICapability) ClassifyBatch(ctx context.Context, texts []string) ([]string, error) {
	var sb strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}

	req := openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: labelSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: sb.String(),
			},
		},
		Temperature: 0.0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Printf("[OpenAI Classify] API error: %v", err)
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	content := resp.Choices[0].Message.Content
	var out openAILabelResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		log.Printf("[OpenAI Classify] Failed to parse response: %s", content)
		return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w", err)
	}

	log.Printf("[OpenAI Classify] %d labels returned (tokens: %d)", len(out.Labels), resp.Usage.TotalTokens)
	return out.Labels, nil
}
