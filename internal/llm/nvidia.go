package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	nvidiaBaseURL      = "https://integrate.api.nvidia.com/v1"
	nvidiaDefaultModel = "deepseek-ai/deepseek-v3.1"
)

// NvidiaClient talks to the NVIDIA-hosted OpenAI-compatible endpoint.
type NvidiaClient struct {
	client *openai.Client
	model  string
}

func NewNvidia(apiKey, model string) *NvidiaClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = nvidiaBaseURL
	if model == "" {
		model = nvidiaDefaultModel
	}
	return &NvidiaClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *NvidiaClient) Generate(ctx context.Context, prompt string, _ []Attachment) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		TopP:        0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("nvidia chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("nvidia returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
