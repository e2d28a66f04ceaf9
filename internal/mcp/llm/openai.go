// internal/mcp/llm/openai.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Client adalah kontrak minimal yang dipakai planner.
type Client interface {
	// AnswerJSON meminta jawaban berupa JSON object valid.
	AnswerJSON(ctx context.Context, user, system string) (string, error)
}

// OpenAIClient adalah implementasi Client berbasis go-openai.
type OpenAIClient struct {
	api   *openai.Client
	model string
}

// ErrNoAPIKey dikembalikan NewClient bila key kosong; router lanjut tanpa planner.
var ErrNoAPIKey = errors.New("llm: api key not set")

// NewClient membuat client; baseURL kosong = endpoint default OpenAI.
func NewClient(apiKey, baseURL, model string) (*OpenAIClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(baseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini" // mendukung JSON mode
	}
	return &OpenAIClient{api: openai.NewClientWithConfig(cfg), model: model}, nil
}

// AnswerJSON memakai JSON mode; deadline 8 detik bila ctx belum punya.
func (c *OpenAIClient) AnswerJSON(ctx context.Context, user, system string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 8*time.Second)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion (json): %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices")
	}
	return stripFences(resp.Choices[0].Message.Content), nil
}

// stripFences membuang ```json ... ``` yang kadang diselipkan model.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
