package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	OwnerID      string `env:"OWNER_ID"`

	// Provider credentials
	NvidiaAPIKey   string `env:"NVIDIA_API_KEY"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	ShapesAPIKey   string `env:"SHAPES_API_KEY"`
	ShapesUsername string `env:"SHAPES_USERNAME" envDefault:"miko"`

	// Storage
	SettingsFilePath string `env:"SETTINGS_FILE_PATH" envDefault:"data/config.json"`
	MemoryFilePath   string `env:"MEMORY_FILE_PATH" envDefault:"data/memory.json"`
	DisableFilePath  string `env:"DISABLE_FILE_PATH" envDefault:"data/disable.json"`
	TempDir          string `env:"TEMP_DIR" envDefault:"temp"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
