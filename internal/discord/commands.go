package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

func commandDefs() []*discordgo.ApplicationCommand {
	adminPerm := int64(discordgo.PermissionAdministrator)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "about",
			Description: "Change the bot's description/bio (Owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "description",
					Description: "New description for the bot (max 190 characters)",
					Required:    true,
					MaxLength:   maxBioLength,
				},
			},
		},
		{
			Name:        "activity",
			Description: "Set bot activity status (Owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "Activity type",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Playing", Value: "playing"},
						{Name: "Listening", Value: "listening"},
						{Name: "Watching", Value: "watching"},
						{Name: "Streaming", Value: "streaming"},
						{Name: "Custom Status", Value: "custom"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Activity text",
					Required:    true,
					MaxLength:   128,
				},
			},
		},
		{
			Name:        "api",
			Description: "Switch between AI providers (Owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "provider",
					Description: "Choose AI provider",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "NVIDIA", Value: "nvidia"},
						{Name: "Gemini", Value: "gemini"},
						{Name: "Shapes", Value: "shapes"},
					},
				},
			},
		},
		{
			Name:        "avatar",
			Description: "Change the bot's avatar (Owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "Upload a new avatar image (PNG, JPG, GIF)",
					Required:    true,
				},
			},
		},
		{
			Name:        "banner",
			Description: "Change the bot's banner (Owner only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "image",
					Description: "Upload a new banner image (PNG, JPG, GIF)",
					Required:    true,
				},
			},
		},
		{
			Name:        "imagine",
			Description: "Generate an image",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prompt",
					Description: "Describe the image you want to generate",
					Required:    true,
				},
			},
		},
		{
			Name:        "serverlist",
			Description: "View all servers the bot is in and manage them (Owner only)",
		},
		{
			Name:        "clearmemory",
			Description: "Clears your conversation history with the bot",
		},
		{
			Name:                     "disable",
			Description:              "Disable bot responses in this channel (Admin only)",
			DefaultMemberPermissions: &adminPerm,
		},
		{
			Name:                     "enable",
			Description:              "Re-enable bot responses in this channel (Admin only)",
			DefaultMemberPermissions: &adminPerm,
		},
		{
			Name:        "stats",
			Description: "Shows bot statistics",
		},
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic while handling interaction: %v", r)
			b.respondText(i, "There was an error while executing this command!", true)
		}
	}()
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(i)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(i)
	case discordgo.InteractionModalSubmit:
		b.handleModal(i)
	}
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	switch name {
	case "about":
		b.handleAbout(i)
	case "activity":
		b.handleActivity(i)
	case "api":
		b.handleAPI(i)
	case "avatar":
		b.handleAvatar(i)
	case "banner":
		b.handleBanner(i)
	case "imagine":
		b.handleImagine(i)
	case "serverlist":
		b.handleServerlist(i)
	case "clearmemory":
		b.handleClearMemory(i)
	case "disable":
		b.handleDisable(i)
	case "enable":
		b.handleEnable(i)
	case "stats":
		b.handleStats(i)
	default:
		log.Printf("❓ no command matching %q", name)
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) isOwner(i *discordgo.InteractionCreate) bool {
	u := interactionUser(i)
	return u != nil && b.ownerID != "" && u.ID == b.ownerID
}

func isChannelAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, o := range data.Options {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func optionAttachment(data discordgo.ApplicationCommandInteractionData, name string) *discordgo.MessageAttachment {
	for _, o := range data.Options {
		if o.Name != name {
			continue
		}
		id, ok := o.Value.(string)
		if !ok || data.Resolved == nil {
			return nil
		}
		return data.Resolved.Attachments[id]
	}
	return nil
}

func (b *Bot) respondText(i *discordgo.InteractionCreate, text string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: text}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("❌ failed to respond to interaction: %v", err)
	}
}

func (b *Bot) deferEphemeral(i *discordgo.InteractionCreate) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("❌ failed to defer interaction: %v", err)
	}
}

func (b *Bot) editResponse(i *discordgo.InteractionCreate, text string) {
	_, err := b.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &text})
	if err != nil {
		log.Printf("❌ failed to edit interaction response: %v", err)
	}
}
