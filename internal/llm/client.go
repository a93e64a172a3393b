package llm

import (
	"context"
	"strings"
)

const (
	ProviderNvidia = "nvidia"
	ProviderGemini = "gemini"
	ProviderShapes = "shapes"
)

const (
	AttachmentImage = "image"
	AttachmentAudio = "audio"
)

// Attachment is a media file accompanying a prompt. Only the Shapes
// client consumes attachments; the other providers are text-only.
type Attachment struct {
	Type string
	URL  string
	Name string
}

// Client is the normalized provider contract: one prompt, one
// completion, single attempt, no retry.
type Client interface {
	Generate(ctx context.Context, prompt string, attachments []Attachment) (string, error)
}

// StripPersona removes a leading "<name>:" echo from a provider
// response and trims surrounding whitespace.
func StripPersona(text, name string) string {
	out := strings.TrimSpace(text)
	prefix := name + ":"
	if strings.HasPrefix(out, prefix) {
		return strings.TrimSpace(out[len(prefix):])
	}
	return out
}
