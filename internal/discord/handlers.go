package discord

import (
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"miko-bot/internal/chat"
	"miko-bot/internal/llm"
)

// defaultAttachmentPrompt stands in for the message text when a user
// mentions the bot with attachments only.
const defaultAttachmentPrompt = "explain this"

const confusedMsg = "miko confused"

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State.User == nil || !mentionsBot(m, s.State.User.ID) {
		return
	}
	if b.channels.Contains(m.ChannelID) {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic while handling message: %v", r)
			if _, err := s.ChannelMessageSend(m.ChannelID, confusedMsg); err != nil {
				log.Printf("❌ failed to send error reply: %v", err)
			}
		}
	}()

	content := stripMention(m.Content, s.State.User.ID)
	atts := collectAttachments(m.Attachments)
	if content == "" && len(atts) == 0 {
		return
	}
	if content == "" {
		content = defaultAttachmentPrompt
	}

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		log.Printf("failed to send typing indicator: %v", err)
	}

	reply := b.chat.Answer(b.ctx, m.Author.ID, m.Author.Username, content, atts)
	b.sendReply(m, reply)
}

func mentionsBot(m *discordgo.MessageCreate, botID string) bool {
	for _, u := range m.Mentions {
		if u.ID == botID {
			return true
		}
	}
	return false
}

func stripMention(content, botID string) string {
	content = strings.ReplaceAll(content, "<@"+botID+">", "")
	content = strings.ReplaceAll(content, "<@!"+botID+">", "")
	return strings.TrimSpace(content)
}

func collectAttachments(in []*discordgo.MessageAttachment) []llm.Attachment {
	var out []llm.Attachment
	for _, a := range in {
		switch {
		case strings.HasPrefix(a.ContentType, "image/"):
			out = append(out, llm.Attachment{Type: llm.AttachmentImage, URL: a.URL, Name: a.Filename})
		case strings.HasPrefix(a.ContentType, "audio/"), strings.HasPrefix(a.ContentType, "video/"):
			out = append(out, llm.Attachment{Type: llm.AttachmentAudio, URL: a.URL, Name: a.Filename})
		}
	}
	return out
}

func (b *Bot) sendReply(m *discordgo.MessageCreate, reply chat.Reply) {
	if reply.Voice != nil {
		if b.sendVoiceReply(m, reply) {
			return
		}
		reply.Text = voiceFallbackText(reply.Text)
	}
	if _, err := b.session.ChannelMessageSendReply(m.ChannelID, reply.Text, m.Reference()); err != nil {
		log.Printf("❌ failed to send reply: %v", err)
	}
}

// voiceFallbackText picks the text to send when the voice upload
// failed; a voice-only reply degrades to the confused message rather
// than silence.
func voiceFallbackText(text string) string {
	if text == "" {
		return confusedMsg
	}
	return text
}

func (b *Bot) sendVoiceReply(m *discordgo.MessageCreate, reply chat.Reply) bool {
	f, err := os.Open(reply.Voice.Path)
	if err != nil {
		log.Printf("❌ failed to open voice file %s: %v", reply.Voice.Path, err)
		return false
	}
	defer func() {
		_ = f.Close()
	}()
	_, err = b.session.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:   reply.Text,
		Files:     []*discordgo.File{{Name: reply.Voice.Name, Reader: f}},
		Reference: m.Reference(),
	})
	if err != nil {
		log.Printf("❌ failed to send voice reply: %v", err)
		return false
	}
	return true
}
