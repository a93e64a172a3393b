package discord

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	leaveButtonID = "leave_server"
	leaveModalID  = "leave_server_modal"
	embedColor    = 0xFF69B4
)

func (b *Bot) handleServerlist(i *discordgo.InteractionCreate) {
	if !b.isOwner(i) {
		b.respondText(i, notOwnerMsg, true)
		return
	}
	guilds := b.session.State.Guilds
	if len(guilds) == 0 {
		b.respondText(i, "📭 The bot is not in any servers.", true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏰 Server List",
		Color:       embedColor,
		Description: buildServerList(guilds),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Use the button below to leave a server"},
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: leaveButtonID,
						Label:    "🚪 Leave Server",
						Style:    discordgo.DangerButton,
					},
				}},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("❌ failed to send server list: %v", err)
	}
}

func buildServerList(guilds []*discordgo.Guild) string {
	var sb strings.Builder
	plural := "s"
	if len(guilds) == 1 {
		plural = ""
	}
	fmt.Fprintf(&sb, "Bot is currently in **%d** server%s:\n\n", len(guilds), plural)
	for n, g := range guilds {
		fmt.Fprintf(&sb, "**%d.** %s\n   `%s` • %d members\n\n", n+1, g.Name, g.ID, g.MemberCount)
	}
	out := sb.String()
	if len(out) > 4000 {
		out = out[:3900] + "\n\n*... and more servers*"
	}
	return out
}

func (b *Bot) handleComponent(i *discordgo.InteractionCreate) {
	if i.MessageComponentData().CustomID != leaveButtonID {
		return
	}
	if !b.isOwner(i) {
		b.respondText(i, "❌ Only the bot owner can use this button!", true)
		return
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: leaveModalID,
			Title:    "Leave Server",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "server_number",
						Label:       "Enter the server number to leave:",
						Placeholder: "e.g., 1, 2, 3...",
						Style:       discordgo.TextInputShort,
						Required:    true,
						MaxLength:   3,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Printf("❌ failed to show leave modal: %v", err)
	}
}

func (b *Bot) handleModal(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if data.CustomID != leaveModalID {
		return
	}
	raw := modalInputValue(data, "server_number")
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		b.respondText(i, "❌ Please enter a valid server number!", true)
		return
	}
	guilds := b.session.State.Guilds
	if n > len(guilds) {
		plural := "s"
		if len(guilds) == 1 {
			plural = ""
		}
		b.respondText(i, fmt.Sprintf("❌ Invalid server number! Bot is only in %d server%s.", len(guilds), plural), true)
		return
	}
	g := guilds[n-1]
	if err := b.session.GuildLeave(g.ID); err != nil {
		log.Printf("❌ failed to leave guild %s: %v", g.ID, err)
		b.respondText(i, fmt.Sprintf("❌ Failed to leave server **%s**.", g.Name), true)
		return
	}
	b.respondText(i, fmt.Sprintf("✅ Successfully left server **%s** (`%s`)", g.Name, g.ID), true)
}

func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if in, ok := rc.(*discordgo.TextInput); ok && in.CustomID == customID {
				return in.Value
			}
		}
	}
	return ""
}
