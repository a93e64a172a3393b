package memory

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileStore keeps all histories in memory behind one mutex and flushes
// the whole map to a JSON file on every mutation. The write goes to a
// temp file first and is renamed over the target.
type FileStore struct {
	path string
	mu   sync.Mutex
	data map[string][]Turn
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure dir: %w", err)
	}
	s := &FileStore{path: path, data: make(map[string][]Turn)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.saveUnlocked(); err != nil {
				return nil, fmt.Errorf("init memory file: %w", err)
			}
			return s, nil
		}
		log.Printf("memory file not readable at %s, starting empty: %v", path, err)
		return s, nil
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			log.Printf("memory file malformed at %s, starting empty: %v", path, err)
			s.data = make(map[string][]Turn)
		}
	}
	return s, nil
}

// History returns the stored turns for userID, oldest first. Missing
// users get an empty slice.
func (s *FileStore) History(userID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.data[userID]
	out := make([]Turn, len(ts))
	copy(out, ts)
	return out
}

// Append records a new turn, evicting the oldest once the per-user cap
// is exceeded, and persists the store. The cached state is updated even
// when the flush fails; the error tells the caller the write was lost.
func (s *FileStore) Append(userID, userMsg, botReply string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := append(s.data[userID], Turn{User: userMsg, Bot: botReply, At: time.Now().UTC()})
	if len(ts) > MaxTurns {
		ts = ts[len(ts)-MaxTurns:]
	}
	s.data[userID] = ts
	return s.saveUnlocked()
}

// Clear removes the user's history entirely and reports whether there
// was anything to clear.
func (s *FileStore) Clear(userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[userID]; !ok {
		return false, nil
	}
	delete(s.data, userID)
	return true, s.saveUnlocked()
}

// Context joins the user's turns with newlines for prompt assembly.
func (s *FileStore) Context(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.data[userID]
	if len(ts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(ts))
	for _, t := range ts {
		lines = append(lines, t.Line())
	}
	return strings.Join(lines, "\n")
}

func (s *FileStore) Stats() (users, turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ts := range s.data {
		turns += len(ts)
	}
	return len(s.data), turns
}

func (s *FileStore) saveUnlocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".memory-*")
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
