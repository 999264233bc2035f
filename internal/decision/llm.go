package decision

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pfl-dev/paperfolio/internal/logger"
)

// Model abstracts the external language model: context in, raw body out.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIModel talks to any OpenAI-compatible chat endpoint.
type OpenAIModel struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewOpenAIModel returns nil when no API key is configured, which the policy
// treats as "model path unavailable".
func NewOpenAIModel(apiKey, baseURL, model string, timeout time.Duration, log *logger.Logger) *OpenAIModel {
	if apiKey == "" {
		return nil
	}
	ocfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		ocfg.BaseURL = baseURL
	}
	return &OpenAIModel{
		client:  openai.NewClientWithConfig(ocfg),
		model:   model,
		timeout: timeout,
		logger:  log,
	}
}

func (m *OpenAIModel) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("model API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	body := resp.Choices[0].Message.Content
	m.logger.Debug("model raw response", "length", len(body))
	return body, nil
}
