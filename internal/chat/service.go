package chat

import (
	"context"
	"log"

	"miko-bot/internal/llm"
	"miko-bot/internal/memory"
	"miko-bot/internal/persona"
)

const fallbackText = "Aww 👉👈, Miko is confused rn 💕"

const voicePlaceholder = "Sent voice message"

// Reply is what the platform layer renders. Text is always present;
// Voice points to a downloaded audio file when the provider smuggled
// a voice link into its output.
type Reply struct {
	Text  string
	Voice *MediaFile
}

// MediaFetcher downloads an upstream media URL into a local temp file.
type MediaFetcher interface {
	Download(ctx context.Context, url string) (*MediaFile, error)
}

// Service composes the provider registry, the memory store and media
// handling into the single "answer this message" operation.
type Service struct {
	registry *llm.Registry
	persona  *persona.Store
	memory   memory.Store
	media    MediaFetcher
}

func New(registry *llm.Registry, ps *persona.Store, mem memory.Store, media MediaFetcher) *Service {
	return &Service{registry: registry, persona: ps, memory: mem, media: media}
}

// Answer is total: whatever fails inside, the caller always gets a
// renderable reply. Provider faults and storage faults are logged, not
// propagated.
func (s *Service) Answer(ctx context.Context, userID, username, text string, attachments []llm.Attachment) Reply {
	set := s.persona.Settings()

	providerName := set.ActiveProvider
	if len(attachments) > 0 {
		// Attachments force the multimodal provider regardless of the
		// configured default.
		providerName = set.MultimodalProvider
	}
	client, err := s.registry.Get(providerName)
	if err != nil {
		log.Printf("❌ provider lookup failed for user %s: %v", userID, err)
		return Reply{Text: fallbackText}
	}

	prompt := buildPrompt(set, s.memory.Context(userID), username, text)

	raw, err := client.Generate(ctx, prompt, attachments)
	if err != nil {
		log.Printf("❌ generation failed via %s for user %s: %v", providerName, userID, err)
		return Reply{Text: fallbackText}
	}
	cleaned := llm.StripPersona(raw, set.Name)

	if url, rest, ok := ExtractVoiceURL(cleaned); ok {
		file, err := s.media.Download(ctx, url)
		if err != nil {
			// Fall back to text only; the URL stays stripped.
			log.Printf("voice download failed for user %s: %v", userID, err)
			s.commit(userID, text, rest)
			return Reply{Text: rest}
		}
		stored := rest
		if stored == "" {
			stored = voicePlaceholder
		}
		s.commit(userID, text, stored)
		return Reply{Text: rest, Voice: file}
	}

	s.commit(userID, text, cleaned)
	return Reply{Text: cleaned}
}

// GenerateImage asks the multimodal provider for an image via the
// special prompt prefix and extracts any image URL from the reply.
// An empty url with nil error means the provider answered text-only.
func (s *Service) GenerateImage(ctx context.Context, prompt string) (url, text string, err error) {
	set := s.persona.Settings()
	client, err := s.registry.Get(set.MultimodalProvider)
	if err != nil {
		return "", "", err
	}
	raw, err := client.Generate(ctx, "!imagine "+prompt, nil)
	if err != nil {
		return "", "", err
	}
	url, rest, ok := ExtractImageURL(raw)
	if !ok {
		return "", raw, nil
	}
	return url, rest, nil
}

func (s *Service) commit(userID, userMsg, botReply string) {
	if err := s.memory.Append(userID, userMsg, botReply); err != nil {
		log.Printf("❌ failed to save conversation for user %s: %v", userID, err)
	}
}

// buildPrompt assembles system instruction, optional history block and
// the new turn. The trailing "<persona>:" primes the model to answer
// in character.
func buildPrompt(set persona.Settings, history, username, text string) string {
	historySection := ""
	if history != "" {
		historySection = "[Conversation History]\n" + history
	}
	newMessage := "[New Message]\n" + username + ": " + text + "\n" + set.Name + ":"
	return string(set.SystemInstruction) + "\n\n" + historySection + "\n\n" + newMessage
}
