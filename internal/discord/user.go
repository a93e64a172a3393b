package discord

import (
	"bytes"
	"fmt"
	"log"
	"net/url"
	"path"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleImagine(i *discordgo.InteractionCreate) {
	b.deferEphemeral(i)
	prompt := optionString(i.ApplicationCommandData(), "prompt")

	imgURL, text, err := b.chat.GenerateImage(b.ctx, prompt)
	if err != nil {
		log.Printf("❌ image generation failed: %v", err)
		b.editResponse(i, "❌ An error occurred while generating the image. Please try again later.")
		return
	}
	if imgURL == "" {
		if text == "" {
			text = "❌ Failed to generate image. Please try again with a different prompt."
		}
		b.editResponse(i, text)
		return
	}

	content := text
	if content == "" {
		content = fmt.Sprintf("🎨 Here's your generated image for: %q", prompt)
	}

	data, ctype, err := b.fetchBytes(b.ctx, imgURL)
	if err != nil {
		// Relay the raw URL; Discord renders it inline.
		log.Printf("image fetch failed, relaying URL: %v", err)
		b.editResponse(i, content+"\n"+imgURL)
		return
	}
	_, err = b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files: []*discordgo.File{{
			Name:        "miko" + urlExtension(imgURL),
			ContentType: ctype,
			Reader:      bytes.NewReader(data),
		}},
	})
	if err != nil {
		log.Printf("❌ failed to send generated image: %v", err)
	}
}

func urlExtension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".png"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".png"
}

func (b *Bot) handleClearMemory(i *discordgo.InteractionCreate) {
	userID := interactionUser(i).ID
	existed, err := b.memory.Clear(userID)
	if err != nil {
		log.Printf("❌ failed to clear history for user %s: %v", userID, err)
		b.respondText(i, "❌ Failed to clear your conversation history. Please try again.", true)
		return
	}
	if existed {
		b.respondText(i, "🧹 Your conversation history has been cleared!", true)
		return
	}
	b.respondText(i, "You don't have any conversation history to clear.", true)
}

func (b *Bot) handleDisable(i *discordgo.InteractionCreate) {
	if !isChannelAdmin(i) {
		b.respondText(i, "❌ You need Administrator permissions to use this command!", true)
		return
	}
	changed, err := b.channels.Disable(i.ChannelID)
	if err != nil {
		log.Printf("❌ failed to disable channel %s: %v", i.ChannelID, err)
		b.respondText(i, "❌ Failed to disable bot in this channel. Please try again.", true)
		return
	}
	if !changed {
		b.respondText(i, "⚠️ Bot responses are already disabled in this channel!", true)
		return
	}
	b.respondText(i, "🔇 Bot responses have been **disabled** in this channel!", false)
}

func (b *Bot) handleEnable(i *discordgo.InteractionCreate) {
	if !isChannelAdmin(i) {
		b.respondText(i, "❌ You need Administrator permissions to use this command!", true)
		return
	}
	changed, err := b.channels.Enable(i.ChannelID)
	if err != nil {
		log.Printf("❌ failed to enable channel %s: %v", i.ChannelID, err)
		b.respondText(i, "❌ Failed to enable bot in this channel. Please try again.", true)
		return
	}
	if !changed {
		b.respondText(i, "⚠️ Bot responses are not disabled in this channel!", true)
		return
	}
	b.respondText(i, "🔊 Bot responses have been **enabled** in this channel!", false)
}
