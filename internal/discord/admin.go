package discord

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	maxBioLength  = 190
	maxImageBytes = 8 * 1024 * 1024
)

const notOwnerMsg = "❌ Only the bot owner can use this command!"

var validImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/gif":  true,
}

func (b *Bot) handleAbout(i *discordgo.InteractionCreate) {
	if !b.isOwner(i) {
		b.respondText(i, notOwnerMsg, true)
		return
	}
	b.deferEphemeral(i)

	desc := optionString(i.ApplicationCommandData(), "description")
	if bioTooLong(desc) {
		b.editResponse(i, fmt.Sprintf("❌ Description is too long! Please keep it under %d characters.", maxBioLength))
		return
	}

	body := struct {
		Description string `json:"description"`
	}{Description: desc}
	if _, err := b.session.Request(http.MethodPatch, discordgo.EndpointAPI+"applications/@me", body); err != nil {
		b.editResponse(i, "❌ Failed to update description: "+restErrorText(err))
		return
	}
	b.editResponse(i, fmt.Sprintf("✅ Bot description has been updated!\n\n**New Description:**\n> %s", desc))
}

func (b *Bot) handleActivity(i *discordgo.InteractionCreate) {
	if !b.isOwner(i) {
		b.respondText(i, notOwnerMsg, true)
		return
	}
	data := i.ApplicationCommandData()
	kind := optionString(data, "type")
	text := optionString(data, "text")
	if text == "" {
		b.respondText(i, "❌ Activity text is required!", true)
		return
	}

	act := &discordgo.Activity{Name: text}
	switch kind {
	case "listening":
		act.Type = discordgo.ActivityTypeListening
	case "watching":
		act.Type = discordgo.ActivityTypeWatching
	case "streaming":
		act.Type = discordgo.ActivityTypeStreaming
		act.URL = "https://www.twitch.tv/mikochan"
	case "custom":
		act.Type = discordgo.ActivityTypeCustom
		act.Name = "Custom Status"
		act.State = text
	default:
		act.Type = discordgo.ActivityTypeGame
	}

	err := b.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status:     "online",
		Activities: []*discordgo.Activity{act},
	})
	if err != nil {
		b.respondText(i, "❌ Failed to set activity. Please try again.", true)
		return
	}
	b.respondText(i, fmt.Sprintf("✅ Bot activity set to **%s** `%s`!", capitalize(kind), text), true)
}

func (b *Bot) handleAPI(i *discordgo.InteractionCreate) {
	if !b.isOwner(i) {
		b.respondText(i, notOwnerMsg, true)
		return
	}
	provider := optionString(i.ApplicationCommandData(), "provider")
	if b.persona.ActiveProvider() == provider {
		b.respondText(i, fmt.Sprintf("⚡ **%s** is already the active provider!", strings.ToUpper(provider)), true)
		return
	}
	if _, err := b.persona.SetActiveProvider(provider); err != nil {
		b.respondText(i, "❌ Failed to switch provider. Please try again.", true)
		return
	}
	b.respondText(i, fmt.Sprintf("✅ Switched to **%s**! All future responses will use it.", strings.ToUpper(provider)), true)
}

func (b *Bot) handleAvatar(i *discordgo.InteractionCreate) {
	b.updateImageAsset(i, "avatar", func(dataURI string) error {
		_, err := b.session.UserUpdate("", dataURI, "")
		return err
	})
}

func (b *Bot) handleBanner(i *discordgo.InteractionCreate) {
	b.updateImageAsset(i, "banner", func(dataURI string) error {
		_, err := b.session.UserUpdate("", "", dataURI)
		return err
	})
}

func (b *Bot) updateImageAsset(i *discordgo.InteractionCreate, what string, apply func(dataURI string) error) {
	if !b.isOwner(i) {
		b.respondText(i, notOwnerMsg, true)
		return
	}
	b.deferEphemeral(i)

	att := optionAttachment(i.ApplicationCommandData(), "image")
	if err := validateImage(att); err != nil {
		b.editResponse(i, "❌ "+err.Error())
		return
	}
	uri, err := b.fetchDataURI(b.ctx, att.URL, att.ContentType)
	if err != nil {
		b.editResponse(i, "❌ Failed to download the uploaded image. Please try again.")
		return
	}
	if err := apply(uri); err != nil {
		b.editResponse(i, fmt.Sprintf("❌ Failed to update %s: %s", what, restErrorText(err)))
		return
	}
	b.editResponse(i, fmt.Sprintf("✅ Bot %s has been updated!", what))
}

// bioTooLong counts code points, not bytes; the platform limit is in
// characters.
func bioTooLong(desc string) bool {
	return utf8.RuneCountInString(desc) > maxBioLength
}

func validateImage(att *discordgo.MessageAttachment) error {
	if att == nil {
		return errors.New("No image attached!")
	}
	if !validImageTypes[att.ContentType] {
		return errors.New("Please upload a valid image file (PNG, JPG, or GIF)!")
	}
	if att.Size > maxImageBytes {
		return errors.New("Image file is too large! Please upload an image smaller than 8MB.")
	}
	return nil
}

func (b *Bot) fetchBytes(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := b.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("file exceeds %d bytes", maxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (b *Bot) fetchDataURI(ctx context.Context, url, contentType string) (string, error) {
	data, _, err := b.fetchBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// restErrorText maps the common Discord error codes to readable text,
// falling back to the raw error message.
func restErrorText(err error) string {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeInvalidFormBody:
			return "invalid image or text format."
		case discordgo.ErrCodeMissingPermissions:
			return "the bot is missing permissions for that."
		case discordgo.ErrCodeMissingAccess:
			return "missing access; this may not be available for this bot type."
		}
		return rest.Message.Message
	}
	return err.Error()
}
