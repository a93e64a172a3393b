package discord

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleStats(i *discordgo.InteractionCreate) {
	guilds := b.session.State.Guilds
	totalUsers := 0
	for _, g := range guilds {
		totalUsers += g.MemberCount
	}
	memUsers, memTurns := b.memory.Stats()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	desc := strings.Join([]string{
		fmt.Sprintf("🏓 **Gateway Latency:** %dms", b.session.HeartbeatLatency().Milliseconds()),
		fmt.Sprintf("⏰ **Uptime:** %s", formatUptime(time.Since(b.started))),
		fmt.Sprintf("🏰 **Servers:** %d", len(guilds)),
		fmt.Sprintf("👥 **Total Users:** %d", totalUsers),
		fmt.Sprintf("🧠 **Memory Users:** %d", memUsers),
		fmt.Sprintf("💬 **Conversations:** %d", memTurns),
		fmt.Sprintf("🤖 **Current API:** %s", strings.ToUpper(b.persona.ActiveProvider())),
		fmt.Sprintf("💾 **Heap:** %dMB", ms.HeapAlloc/1024/1024),
		fmt.Sprintf("⚙️ **Go:** %s", runtime.Version()),
	}, "\n")

	embed := &discordgo.MessageEmbed{
		Title:       "📊 Statistics",
		Color:       embedColor,
		Description: desc,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "always here for you! 💕"},
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}},
	})
	if err != nil {
		log.Printf("❌ failed to send stats: %v", err)
	}
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, mins, secs)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
	case mins > 0:
		return fmt.Sprintf("%dm %ds", mins, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
