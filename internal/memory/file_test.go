package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "memory.json")
	s, err := NewFileStore(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return s, p
}

func TestAppend_EvictsOldestPastCap(t *testing.T) {
	s, _ := newStore(t)
	for i := 0; i < MaxTurns+2; i++ {
		if err := s.Append("u1", fmt.Sprintf("msg-%d", i), fmt.Sprintf("reply-%d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	ts := s.History("u1")
	if len(ts) != MaxTurns {
		t.Fatalf("want %d turns, got %d", MaxTurns, len(ts))
	}
	if ts[0].User != "msg-2" {
		t.Fatalf("oldest not evicted first, head = %q", ts[0].User)
	}
	if ts[len(ts)-1].User != fmt.Sprintf("msg-%d", MaxTurns+1) {
		t.Fatalf("tail = %q", ts[len(ts)-1].User)
	}
}

func TestHistory_MissingUserIsEmpty(t *testing.T) {
	s, _ := newStore(t)
	if ts := s.History("nobody"); len(ts) != 0 {
		t.Fatalf("expected empty history, got %d turns", len(ts))
	}
}

func TestClear_ReportsWhetherEntryExisted(t *testing.T) {
	s, _ := newStore(t)
	existed, err := s.Clear("u1")
	if err != nil {
		t.Fatalf("clear empty: %v", err)
	}
	if existed {
		t.Fatalf("clear on missing user reported true")
	}

	if err := s.Append("u1", "hi", "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	existed, err = s.Clear("u1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !existed {
		t.Fatalf("clear on existing user reported false")
	}
	if len(s.History("u1")) != 0 {
		t.Fatalf("history survived clear")
	}
}

func TestContext_JoinsTurnsInOrder(t *testing.T) {
	s, _ := newStore(t)
	if got := s.Context("u1"); got != "" {
		t.Fatalf("empty history context = %q", got)
	}
	_ = s.Append("u1", "hi", "hewwo~")
	_ = s.Append("u1", "how are you", "doing great")
	want := "user: hi | bot: hewwo~\nuser: how are you | bot: doing great"
	if got := s.Context("u1"); got != want {
		t.Fatalf("context mismatch:\n got %q\nwant %q", got, want)
	}
	if strings.HasSuffix(s.Context("u1"), "\n") {
		t.Fatalf("trailing separator in context")
	}
}

func TestPersistence_SurvivesReload(t *testing.T) {
	s, p := newStore(t)
	_ = s.Append("u1", "hi", "hello")
	_ = s.Append("u2", "yo", "hey")

	s2, err := NewFileStore(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := s2.Context("u1"); got != "user: hi | bot: hello" {
		t.Fatalf("reloaded context = %q", got)
	}
	users, turns := s2.Stats()
	if users != 2 || turns != 2 {
		t.Fatalf("stats after reload: users=%d turns=%d", users, turns)
	}
}

func TestAppend_SurfacesPersistFailure(t *testing.T) {
	s, p := newStore(t)
	// Replace the target file with a non-empty directory so the rename
	// in the flush fails.
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(p, "block"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := s.Append("u1", "hi", "hello"); err == nil {
		t.Fatalf("append swallowed the persist failure")
	}
	// The cached state still advanced; the error only reports the lost
	// write.
	ts := s.History("u1")
	if len(ts) != 1 || ts[0].User != "hi" {
		t.Fatalf("cached turn missing after failed flush: %v", ts)
	}

	if _, err := s.Clear("u1"); err == nil {
		t.Fatalf("clear swallowed the persist failure")
	}
}

func TestHistory_ReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	_ = s.Append("u1", "hi", "hello")
	ts := s.History("u1")
	ts[0].User = "mutated"
	if s.History("u1")[0].User != "hi" {
		t.Fatalf("internal state mutated via returned slice")
	}
}
