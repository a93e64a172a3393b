package discord

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"miko-bot/internal/channels"
	"miko-bot/internal/chat"
	"miko-bot/internal/llm"
	"miko-bot/internal/memory"
	"miko-bot/internal/persona"
)

// responder is the slice of chat.Service the bot needs; an interface
// so handlers can be tested with a fake.
type responder interface {
	Answer(ctx context.Context, userID, username, text string, attachments []llm.Attachment) chat.Reply
	GenerateImage(ctx context.Context, prompt string) (url, text string, err error)
}

type Bot struct {
	session  *discordgo.Session
	chat     responder
	persona  *persona.Store
	memory   memory.Store
	channels *channels.FileSet
	ownerID  string
	httpc    *http.Client
	started  time.Time
	ctx      context.Context
}

func New(token string, svc *chat.Service, ps *persona.Store, mem memory.Store, ch *channels.FileSet, ownerID string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("init discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers

	b := &Bot{
		session:  session,
		chat:     svc,
		persona:  ps,
		memory:   mem,
		channels: ch,
		ownerID:  ownerID,
		httpc:    &http.Client{Timeout: 30 * time.Second},
		ctx:      context.Background(),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)
	return b, nil
}

// Start opens the gateway connection and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx
	b.started = time.Now()
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("🚀 Ready! Logged in as %s", r.User.Username)
	cmds := commandDefs()
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", cmds); err != nil {
		log.Printf("❌ failed to register application commands: %v", err)
		return
	}
	log.Printf("✅ registered %d application commands", len(cmds))
}
