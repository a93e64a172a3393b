package scheduler

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweep_RemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.mp3")
	newFile := filepath.Join(dir, "new.mp3")
	for _, p := range []string{oldFile, newFile} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().Add(-10 * time.Minute)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	New(dir, time.Minute).Sweep()

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Fatalf("old file not removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatalf("new file removed: %v", err)
	}
}

func TestSweep_MissingDirIsNoop(t *testing.T) {
	New(filepath.Join(t.TempDir(), "nope"), time.Minute).Sweep()
}
