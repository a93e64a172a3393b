package channels

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// document is the on-disk shape of the disabled-channel file.
type document struct {
	DisabledChannels []string `json:"disabledChannels"`
}

// FileSet is the set of channels where mention responses are
// suppressed, backed by a JSON file.
type FileSet struct {
	path string
	mu   sync.Mutex
	ids  map[string]bool
}

func NewFileSet(path string) (*FileSet, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	s := &FileSet{path: path, ids: make(map[string]bool)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("disable file not readable at %s, starting empty: %v", path, err)
		}
		return s, nil
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Printf("disable file malformed at %s, starting empty: %v", path, err)
		return s, nil
	}
	for _, id := range doc.DisabledChannels {
		s.ids[id] = true
	}
	return s, nil
}

func (s *FileSet) Contains(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[channelID]
}

// Disable adds channelID to the set. Returns false when the channel was
// already disabled; nothing is written in that case.
func (s *FileSet) Disable(channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[channelID] {
		return false, nil
	}
	s.ids[channelID] = true
	if err := s.saveUnlocked(); err != nil {
		delete(s.ids, channelID)
		return false, err
	}
	return true, nil
}

// Enable removes channelID from the set. Returns false when the channel
// was not disabled.
func (s *FileSet) Enable(channelID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ids[channelID] {
		return false, nil
	}
	delete(s.ids, channelID)
	if err := s.saveUnlocked(); err != nil {
		s.ids[channelID] = true
		return false, err
	}
	return true, nil
}

func (s *FileSet) saveUnlocked() error {
	doc := document{DisabledChannels: make([]string, 0, len(s.ids))}
	for id := range s.ids {
		doc.DisabledChannels = append(doc.DisabledChannels, id)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".disable-*")
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
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
