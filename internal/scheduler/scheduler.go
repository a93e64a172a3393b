package scheduler

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically removes downloaded media files from the temp
// directory once they are old enough to have been delivered.
type Sweeper struct {
	cron   *cron.Cron
	dir    string
	maxAge time.Duration
}

func New(dir string, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		dir:    dir,
		maxAge: maxAge,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 5m", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("📅 temp sweeper started for %s (max age %s)", s.dir, s.maxAge)
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep removes regular files older than maxAge from the temp dir.
func (s *Sweeper) Sweep() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("sweep: read dir %s: %v", s.dir, err)
		}
		return
	}
	cutoff := time.Now().Add(-s.maxAge)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if err := os.Remove(p); err != nil {
			log.Printf("sweep: remove %s: %v", p, err)
		}
	}
}
