package chat

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Voice replies arrive as a file-hosting URL embedded in the response
// text. The pattern is the single place that knowledge lives.
var voiceURLPattern = regexp.MustCompile(`(?i)https://files\.shapes\.inc/api/files/\S+\.(mp3|wav|ogg)`)

var imageURLPattern = regexp.MustCompile(`(?i)https://\S+\.(jpg|jpeg|png|gif|webp)`)

// ExtractVoiceURL finds a voice-file URL in text and returns it along
// with the remaining text, trimmed.
func ExtractVoiceURL(text string) (voiceURL, rest string, ok bool) {
	return extractURL(voiceURLPattern, text)
}

// ExtractImageURL finds an image URL in text and returns it along with
// the remaining text, trimmed.
func ExtractImageURL(text string) (imageURL, rest string, ok bool) {
	return extractURL(imageURLPattern, text)
}

func extractURL(re *regexp.Regexp, text string) (string, string, bool) {
	match := re.FindString(text)
	if match == "" {
		return "", text, false
	}
	rest := strings.TrimSpace(strings.Replace(text, match, "", 1))
	return match, rest, true
}

// MediaFile is a downloaded attachment: Name is what the platform
// displays, Path is the local temp file.
type MediaFile struct {
	Name string
	Path string
}

var cuteNames = []string{"miko", "kawaii", "waifu", "neko", "senpai", "chan", "desu", "sugoi"}

// Downloader fetches media URLs into a temp directory. Files are
// cleaned up later by the sweeper, not by the downloader.
type Downloader struct {
	dir    string
	client *http.Client
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{
		dir:    dir,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *Downloader) Download(ctx context.Context, rawURL string) (*MediaFile, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure temp dir: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media: unexpected status %s", resp.Status)
	}

	ext := urlExt(rawURL)
	fpath := filepath.Join(d.dir, uuid.NewString()+ext)
	f, err := os.Create(fpath)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(fpath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(fpath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	name := cuteNames[rand.IntN(len(cuteNames))] + ext
	return &MediaFile{Name: name, Path: fpath}, nil
}

func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".mp3"
	}
	if ext := path.Ext(u.Path); ext != "" {
		return ext
	}
	return ".mp3"
}
