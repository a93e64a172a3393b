package persona

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"miko-bot/internal/llm"
)

// Provider identifiers are owned by the llm package; these aliases
// keep settings validation in lockstep with the client registry.
const (
	ProviderNvidia = llm.ProviderNvidia
	ProviderGemini = llm.ProviderGemini
	ProviderShapes = llm.ProviderShapes
)

var knownProviders = map[string]bool{
	ProviderNvidia: true,
	ProviderGemini: true,
	ProviderShapes: true,
}

func KnownProviders() []string {
	return []string{ProviderNvidia, ProviderGemini, ProviderShapes}
}

// Instruction is the system instruction text. The settings file may hold
// it either as a single string or as an array of lines.
type Instruction string

func (in *Instruction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*in = Instruction(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(b, &lines); err != nil {
		return fmt.Errorf("system instruction must be a string or an array of strings")
	}
	*in = Instruction(strings.Join(lines, "\n"))
	return nil
}

type Settings struct {
	Name               string      `json:"name"`
	ActiveProvider     string      `json:"currentAPI"`
	MultimodalProvider string      `json:"multimodalAPI"`
	SystemInstruction  Instruction `json:"systemInstruction"`
}

// document is the on-disk shape of the settings file.
type document struct {
	Bot Settings `json:"bot"`
}

func Defaults() Settings {
	return Settings{
		Name:               "Miko",
		ActiveProvider:     ProviderNvidia,
		MultimodalProvider: ProviderShapes,
		SystemInstruction: Instruction(strings.Join([]string{
			"[System Instruction]",
			"You are Miko 💖, an anime waifu chatbot.",
			"You are playful, flirty, and reply short (1–3 lines).",
			"Always match the user's language",
			"",
			"Rules:",
			"- Replies must be short & cute (max 5–20 words)",
			"- Never say you're AI/bot — you're just Miko",
			"- Match the user's tone & energy naturally",
		}, "\n")),
	}
}

// Store holds the bot settings, backed by a JSON file. The active
// provider is the only field mutated at runtime.
type Store struct {
	path string
	mu   sync.RWMutex
	cur  Settings
}

// Load reads the settings file at path. Any read or parse failure is
// logged and replaced with the hardcoded defaults.
func Load(path string) *Store {
	s := &Store{path: path, cur: Defaults()}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("settings file not readable at %s, using defaults: %v", path, err)
		return s
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("settings file malformed at %s, using defaults: %v", path, err)
		return s
	}
	s.cur = withDefaults(doc.Bot)
	return s
}

func withDefaults(in Settings) Settings {
	def := Defaults()
	if in.Name == "" {
		in.Name = def.Name
	}
	if in.ActiveProvider == "" {
		in.ActiveProvider = def.ActiveProvider
	}
	if in.MultimodalProvider == "" {
		in.MultimodalProvider = def.MultimodalProvider
	}
	if in.SystemInstruction == "" {
		in.SystemInstruction = def.SystemInstruction
	}
	return in
}

func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) ActiveProvider() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.ActiveProvider
}

// SetActiveProvider validates name, persists the updated settings and
// swaps the cached copy. The file is written before the in-memory value
// changes, so a failed write leaves both untouched.
func (s *Store) SetActiveProvider(name string) (Settings, error) {
	if !knownProviders[name] {
		return Settings{}, fmt.Errorf("unknown provider %q, expected one of %s", name, strings.Join(KnownProviders(), ", "))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cur
	next.ActiveProvider = name
	if err := writeDocument(s.path, next); err != nil {
		return Settings{}, fmt.Errorf("persist settings: %w", err)
	}
	s.cur = next
	return next, nil
}

// writeDocument writes atomically: temp file in the same directory,
// then rename over the target.
func writeDocument(path string, set Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	data, err := json.MarshalIndent(document{Bot: set}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
