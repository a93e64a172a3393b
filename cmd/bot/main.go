package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"miko-bot/internal/channels"
	"miko-bot/internal/chat"
	"miko-bot/internal/config"
	"miko-bot/internal/discord"
	"miko-bot/internal/llm"
	"miko-bot/internal/memory"
	"miko-bot/internal/persona"
	"miko-bot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := persona.Load(cfg.SettingsFilePath)

	mem, err := memory.NewFileStore(cfg.MemoryFilePath)
	if err != nil {
		log.Fatalf("failed to init memory store: %v", err)
	}

	disabled, err := channels.NewFileSet(cfg.DisableFilePath)
	if err != nil {
		log.Fatalf("failed to init disabled-channel set: %v", err)
	}

	registry := llm.NewRegistry()
	registry.Register(llm.ProviderNvidia, llm.NewNvidia(cfg.NvidiaAPIKey, ""))
	registry.Register(llm.ProviderShapes, llm.NewShapes(cfg.ShapesAPIKey, cfg.ShapesUsername))
	if gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, ""); err != nil {
		log.Printf("gemini client unavailable: %v", err)
	} else {
		registry.Register(llm.ProviderGemini, gemini)
	}

	svc := chat.New(registry, settings, mem, chat.NewDownloader(cfg.TempDir))

	bot, err := discord.New(cfg.DiscordToken, svc, settings, mem, disabled, cfg.OwnerID)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sweeper := scheduler.New(cfg.TempDir, time.Minute)
	if err := sweeper.Start(); err != nil {
		log.Printf("failed to start temp sweeper: %v", err)
	}
	defer sweeper.Stop()

	if err := bot.Start(ctx); err != nil {
		log.Fatalf("bot stopped: %v", err)
	}
}
