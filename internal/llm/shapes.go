package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const shapesBaseURL = "https://api.shapes.inc/v1"

// ShapesClient talks to the Shapes.inc OpenAI-compatible endpoint. It
// is the only multimodal-capable client: images are sent as image_url
// message parts, audio is referenced by URL from the text part.
type ShapesClient struct {
	client *openai.Client
	shape  string
}

func NewShapes(apiKey, shapeUsername string) *ShapesClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = shapesBaseURL
	if shapeUsername == "" {
		shapeUsername = "miko"
	}
	return &ShapesClient{
		client: openai.NewClientWithConfig(cfg),
		shape:  shapeUsername,
	}
}

func (c *ShapesClient) Generate(ctx context.Context, prompt string, attachments []Attachment) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(attachments) == 0 {
		msg.Content = prompt
	} else {
		text := openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: prompt}
		parts := []openai.ChatMessagePart{}
		for _, a := range attachments {
			switch a.Type {
			case AttachmentImage:
				parts = append(parts, openai.ChatMessagePart{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: a.URL},
				})
			case AttachmentAudio:
				text.Text += "\n[audio attachment] " + a.URL
			}
		}
		msg.MultiContent = append([]openai.ChatMessagePart{text}, parts...)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       "shapesinc/" + c.shape,
		Messages:    []openai.ChatCompletionMessage{msg},
		Temperature: 0.7,
		MaxTokens:   1024,
	})
	if err != nil {
		return "", fmt.Errorf("shapes chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("shapes returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
