package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"miko-bot/internal/llm"
	"miko-bot/internal/memory"
	"miko-bot/internal/persona"
)

type fakeClient struct {
	resp    string
	err     error
	calls   int
	prompts []string
	atts    [][]llm.Attachment
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, atts []llm.Attachment) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.atts = append(f.atts, atts)
	return f.resp, f.err
}

type fakeFetcher struct {
	file *MediaFile
	err  error
	urls []string
}

func (f *fakeFetcher) Download(ctx context.Context, url string) (*MediaFile, error) {
	f.urls = append(f.urls, url)
	return f.file, f.err
}

func newService(t *testing.T, nvidia, shapes llm.Client, fetcher MediaFetcher) (*Service, memory.Store) {
	t.Helper()
	dir := t.TempDir()
	reg := llm.NewRegistry()
	if nvidia != nil {
		reg.Register(llm.ProviderNvidia, nvidia)
	}
	if shapes != nil {
		reg.Register(llm.ProviderShapes, shapes)
	}
	ps := persona.Load(filepath.Join(dir, "config.json"))
	mem, err := memory.NewFileStore(filepath.Join(dir, "memory.json"))
	if err != nil {
		t.Fatalf("memory init: %v", err)
	}
	if fetcher == nil {
		fetcher = &fakeFetcher{err: errors.New("no fetcher")}
	}
	return New(reg, ps, mem, fetcher), mem
}

func TestAnswer_EndToEnd(t *testing.T) {
	nvidia := &fakeClient{resp: "Miko: hewwo~"}
	svc, mem := newService(t, nvidia, &fakeClient{}, nil)

	reply := svc.Answer(context.Background(), "u1", "alice", "hi", nil)
	if reply.Text != "hewwo~" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if reply.Voice != nil {
		t.Fatalf("unexpected voice attachment")
	}
	if got := mem.Context("u1"); got != "user: hi | bot: hewwo~" {
		t.Fatalf("stored context = %q", got)
	}
	if nvidia.calls != 1 {
		t.Fatalf("nvidia calls = %d", nvidia.calls)
	}
	prompt := nvidia.prompts[0]
	if !strings.Contains(prompt, "[New Message]\nalice: hi\nMiko:") {
		t.Fatalf("prompt missing new-message block:\n%s", prompt)
	}
	if strings.Contains(prompt, "[Conversation History]") {
		t.Fatalf("history block present for empty history:\n%s", prompt)
	}
}

func TestAnswer_HistoryBlockIncludedOnSecondTurn(t *testing.T) {
	nvidia := &fakeClient{resp: "sure"}
	svc, _ := newService(t, nvidia, &fakeClient{}, nil)

	svc.Answer(context.Background(), "u1", "alice", "hi", nil)
	svc.Answer(context.Background(), "u1", "alice", "again", nil)

	prompt := nvidia.prompts[1]
	if !strings.Contains(prompt, "[Conversation History]\nuser: hi | bot: sure") {
		t.Fatalf("history block missing:\n%s", prompt)
	}
}

func TestAnswer_AttachmentsForceMultimodalProvider(t *testing.T) {
	nvidia := &fakeClient{resp: "text-only"}
	shapes := &fakeClient{resp: "i see a cat"}
	svc, _ := newService(t, nvidia, shapes, nil)

	atts := []llm.Attachment{{Type: llm.AttachmentImage, URL: "https://cdn.example/cat.png"}}
	reply := svc.Answer(context.Background(), "u1", "alice", "what is this", atts)
	if reply.Text != "i see a cat" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if nvidia.calls != 0 {
		t.Fatalf("active provider invoked despite attachments")
	}
	if shapes.calls != 1 || len(shapes.atts[0]) != 1 {
		t.Fatalf("multimodal provider not invoked with attachments")
	}
}

func TestAnswer_ProviderErrorYieldsFallback(t *testing.T) {
	nvidia := &fakeClient{err: errors.New("upstream boom")}
	svc, mem := newService(t, nvidia, &fakeClient{}, nil)

	reply := svc.Answer(context.Background(), "u1", "alice", "hi", nil)
	if reply.Text != fallbackText {
		t.Fatalf("reply = %q", reply.Text)
	}
	if got := mem.Context("u1"); got != "" {
		t.Fatalf("failed turn was committed: %q", got)
	}
}

func TestAnswer_UnknownProviderYieldsFallback(t *testing.T) {
	// Registry without the active provider registered.
	svc, _ := newService(t, nil, &fakeClient{}, nil)
	reply := svc.Answer(context.Background(), "u1", "alice", "hi", nil)
	if reply.Text != fallbackText {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestAnswer_VoiceExtractedAndDownloaded(t *testing.T) {
	nvidia := &fakeClient{resp: "listen https://files.shapes.inc/api/files/v1.mp3"}
	fetcher := &fakeFetcher{file: &MediaFile{Name: "miko.mp3", Path: "/tmp/v1.mp3"}}
	svc, mem := newService(t, nvidia, &fakeClient{}, fetcher)

	reply := svc.Answer(context.Background(), "u1", "alice", "sing", nil)
	if reply.Voice == nil || reply.Voice.Name != "miko.mp3" {
		t.Fatalf("voice attachment missing: %+v", reply.Voice)
	}
	if strings.Contains(reply.Text, "files.shapes.inc") {
		t.Fatalf("URL leaked into reply text: %q", reply.Text)
	}
	if len(fetcher.urls) != 1 || fetcher.urls[0] != "https://files.shapes.inc/api/files/v1.mp3" {
		t.Fatalf("fetcher urls = %v", fetcher.urls)
	}
	if got := mem.Context("u1"); got != "user: sing | bot: listen" {
		t.Fatalf("stored context = %q", got)
	}
}

func TestAnswer_VoiceOnlyReplyStoresPlaceholder(t *testing.T) {
	nvidia := &fakeClient{resp: "https://files.shapes.inc/api/files/v2.ogg"}
	fetcher := &fakeFetcher{file: &MediaFile{Name: "neko.ogg", Path: "/tmp/v2.ogg"}}
	svc, mem := newService(t, nvidia, &fakeClient{}, fetcher)

	reply := svc.Answer(context.Background(), "u1", "alice", "sing", nil)
	if reply.Voice == nil || reply.Text != "" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if got := mem.Context("u1"); got != "user: sing | bot: Sent voice message" {
		t.Fatalf("stored context = %q", got)
	}
}

func TestAnswer_VoiceDownloadFailureFallsBackToText(t *testing.T) {
	nvidia := &fakeClient{resp: "here https://files.shapes.inc/api/files/v3.mp3 you go"}
	fetcher := &fakeFetcher{err: errors.New("fetch failed")}
	svc, mem := newService(t, nvidia, &fakeClient{}, fetcher)

	reply := svc.Answer(context.Background(), "u1", "alice", "sing", nil)
	if reply.Voice != nil {
		t.Fatalf("voice attachment produced despite failed download")
	}
	if strings.Contains(reply.Text, "files.shapes.inc") {
		t.Fatalf("URL re-inserted into text: %q", reply.Text)
	}
	if !strings.Contains(mem.Context("u1"), "user: sing | bot: here") {
		t.Fatalf("stored context = %q", mem.Context("u1"))
	}
}

func TestGenerateImage(t *testing.T) {
	shapes := &fakeClient{resp: "🎨 https://files.shapes.inc/api/files/art.png done"}
	svc, _ := newService(t, &fakeClient{}, shapes, nil)

	url, text, err := svc.GenerateImage(context.Background(), "a cat in space")
	if err != nil {
		t.Fatalf("generate image: %v", err)
	}
	if url != "https://files.shapes.inc/api/files/art.png" {
		t.Fatalf("url = %q", url)
	}
	if strings.Contains(text, ".png") {
		t.Fatalf("url leaked into text: %q", text)
	}
	if !strings.HasPrefix(shapes.prompts[0], "!imagine a cat in space") {
		t.Fatalf("imagine prefix missing: %q", shapes.prompts[0])
	}
}

func TestGenerateImage_TextOnlyReply(t *testing.T) {
	shapes := &fakeClient{resp: "sorry, can't draw that"}
	svc, _ := newService(t, &fakeClient{}, shapes, nil)

	url, text, err := svc.GenerateImage(context.Background(), "x")
	if err != nil || url != "" {
		t.Fatalf("url=%q err=%v", url, err)
	}
	if text != "sorry, can't draw that" {
		t.Fatalf("text = %q", text)
	}
}
