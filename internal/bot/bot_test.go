package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/quailyquaily/text2cw/internal/content"
	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/dispatch"
	"github.com/quailyquaily/text2cw/internal/feed"
	"github.com/quailyquaily/text2cw/internal/kv"
	"github.com/quailyquaily/text2cw/internal/render"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

type sent struct {
	kind string
	text string
	data []byte
}

type fakeReplier struct {
	mu      sync.Mutex
	sent    []sent
	failAll bool
}

func (f *fakeReplier) add(s sent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
	if f.failAll {
		return errors.New("network down")
	}
	return nil
}

func (f *fakeReplier) SendText(_ context.Context, text string, _ dispatch.Keyboard) error {
	return f.add(sent{kind: "text", text: text})
}

func (f *fakeReplier) SendAudio(_ context.Context, path, title string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return f.add(sent{kind: "audio", text: title, data: data})
}

func (f *fakeReplier) SendVoice(_ context.Context, path, caption string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return f.add(sent{kind: "voice", text: caption, data: data})
}

func (f *fakeReplier) SendDocument(_ context.Context, filename string, data []byte) error {
	return f.add(sent{kind: "document", text: filename, data: data})
}

func (f *fakeReplier) reset() {
	f.mu.Lock()
	f.sent = nil
	f.mu.Unlock()
}

func (f *fakeReplier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, s := range f.sent {
		out[i] = s.kind
	}
	return out
}

// fakeRenderer writes the job text as the artifact.
type fakeRenderer struct {
	mu   sync.Mutex
	jobs []render.Job
	err  error
	pnc  bool
}

func (r *fakeRenderer) Render(_ context.Context, job render.Job) (string, error) {
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	if r.pnc {
		panic("renderer exploded")
	}
	if r.err != nil {
		return "", r.err
	}
	if err := os.WriteFile(job.FinalPath(), []byte(job.Text), 0o600); err != nil {
		return "", err
	}
	return job.FinalPath(), nil
}

type fakeFeed struct {
	url  string
	opts feed.Options
	text string
	err  error
}

func (f *fakeFeed) Get(_ context.Context, url string, opts feed.Options) (string, error) {
	f.url, f.opts = url, opts
	return f.text, f.err
}

func newTestBot(t *testing.T) (*Bot, *fakeRenderer, string) {
	t.Helper()
	dir := t.TempDir()
	r := settings.Default()
	dict, err := content.LoadDictionary(strings.NewReader("casa\ncane\nmare\nsole\n"))
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	renderer := &fakeRenderer{}
	b := &Bot{
		Store:      session.NewStore(kv.NewMemory()),
		Machine:    dispatch.MustNew(r, dispatch.DefaultTable(r)),
		Registry:   r,
		Builder:    render.Builder{WorkDir: dir, Author: "text2cw"},
		Renderer:   renderer,
		Dictionary: dict,
		QSO:        content.DefaultQSOData(),
		NewRand:    func() *rand.Rand { return content.NewRand(7) },
	}
	return b, renderer, dir
}

func send(t *testing.T, b *Bot, out *fakeReplier, text string) {
	t.Helper()
	b.HandleEvent(context.Background(), Event{UserID: "42", MessageID: "1", Text: text, FirstName: "Ada"}, out)
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir has %d leftover artifacts", len(entries))
	}
}

func TestJoinSetSpeedsAndSendMessage(t *testing.T) {
	t.Parallel()

	b, renderer, dir := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	if k := out.kinds(); len(k) != 1 || !strings.HasPrefix(out.sent[0].text, "Hi Ada") {
		t.Fatalf("/start sent %+v", out.sent)
	}
	send(t, b, out, "/wpm 15,30")
	out.reset()
	send(t, b, out, "hello world")

	if len(renderer.jobs) != 2 {
		t.Fatalf("rendered %d jobs, want 2", len(renderer.jobs))
	}
	if got := out.kinds(); strings.Join(got, ",") != "audio,audio" {
		t.Fatalf("sent kinds = %v, want two audios", got)
	}
	if out.sent[0].text != "CW Text 15wpm" || out.sent[1].text != "CW Text 30wpm" {
		t.Fatalf("titles = %q, %q", out.sent[0].text, out.sent[1].text)
	}
	if string(out.sent[0].data) != "hello world" {
		t.Fatalf("rendered text = %q", out.sent[0].data)
	}
	assertEmptyDir(t, dir)
}

func TestNotJoinedUserIsNotPersisted(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "hello")
	if len(out.sent) != 1 || !strings.Contains(out.sent[0].text, "/start") {
		t.Fatalf("sent %+v, want a join hint", out.sent)
	}
	if len(renderer.jobs) != 0 {
		t.Fatalf("rendered for a user who never joined")
	}
	for sess, err := range b.Store.All(context.Background()) {
		t.Fatalf("store has session %+v (err %v)", sess, err)
	}
}

func TestVoiceFormat(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/format voice")
	out.reset()
	send(t, b, out, "cq cq")
	if got := out.kinds(); len(got) != 1 || got[0] != "voice" {
		t.Fatalf("sent kinds = %v, want one voice", got)
	}
}

func TestGroupsSendsSolutionText(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/groupcount 3")
	send(t, b, out, "/shuffle both")
	out.reset()
	send(t, b, out, "/groups")

	if got := strings.Join(out.kinds(), ","); got != "audio,text" {
		t.Fatalf("sent kinds = %s, want audio,text", got)
	}
	solution := out.sent[1].text
	if groups := strings.Fields(solution); len(groups) != 3 {
		t.Fatalf("solution = %q, want 3 groups", solution)
	}
	if renderer.jobs[0].Text != solution {
		t.Fatalf("rendered %q, solution %q: groups must not be shuffled", renderer.jobs[0].Text, solution)
	}
}

func TestWordsSendsSolutionPDF(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/charset acenrs")
	send(t, b, out, "/wordlen 4-4")
	send(t, b, out, "/wordcount 2")
	send(t, b, out, "/solution pdf")
	out.reset()
	send(t, b, out, "/words")

	if got := strings.Join(out.kinds(), ","); got != "audio,document" {
		t.Fatalf("sent kinds = %s, want audio,document", got)
	}
	words := strings.Fields(string(out.sent[0].data))
	if len(words) != 2 {
		t.Fatalf("words = %v, want 2", words)
	}
	for _, w := range words {
		if w != "CASA" && w != "CANE" {
			t.Fatalf("word %q is not made of the charset", w)
		}
	}
	if !bytes.HasPrefix(out.sent[1].data, []byte("%PDF-")) || !strings.HasSuffix(out.sent[1].text, ".pdf") {
		t.Fatalf("document = %q, %d bytes", out.sent[1].text, len(out.sent[1].data))
	}
}

func TestWordsNotFound(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/charset xyz")
	out.reset()
	send(t, b, out, "/words")
	if len(out.sent) != 1 || out.sent[0].text != msgNotFound {
		t.Fatalf("sent %+v, want not found apology", out.sent)
	}
	if len(renderer.jobs) != 0 {
		t.Fatalf("rendered without content")
	}
}

func TestQSOHasProsigns(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/solution none")
	out.reset()
	send(t, b, out, "/qso")
	if got := out.kinds(); len(got) != 1 || got[0] != "audio" {
		t.Fatalf("sent kinds = %v, want one audio", got)
	}
	if !strings.Contains(renderer.jobs[0].Text, "<SK>") {
		t.Fatalf("qso text %q has no <SK>", renderer.jobs[0].Text)
	}
}

func TestNewsUsesSettingsAndFeeds(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	ff := &fakeFeed{text: "Title one <AR>"}
	b.FeedReader = ff
	b.Feeds = Feeds{Default: "ansa", URLs: map[string]string{"ansa": "https://a.example/rss", "bbc": "https://b.example/rss"}}
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/newscount 3")
	send(t, b, out, "/newsfilter meteo")
	out.reset()

	send(t, b, out, "/news")
	if ff.url != "https://a.example/rss" || ff.opts.Count != 3 || ff.opts.Filter != "meteo" || ff.opts.Timestamps {
		t.Fatalf("feed request = %s %+v", ff.url, ff.opts)
	}
	if len(renderer.jobs) != 1 || !strings.Contains(renderer.jobs[0].Text, "<AR>") {
		t.Fatalf("rendered jobs = %+v", renderer.jobs)
	}

	send(t, b, out, "/news BBC")
	if ff.url != "https://b.example/rss" {
		t.Fatalf("feed url = %s, want bbc", ff.url)
	}

	out.reset()
	send(t, b, out, "/news nope")
	if len(out.sent) != 1 || !strings.Contains(out.sent[0].text, "ansa, bbc") {
		t.Fatalf("sent %+v, want the list of feeds", out.sent)
	}
}

func TestNewsUnreadable(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBot(t)
	b.FeedReader = &fakeFeed{err: fmt.Errorf("%w: boom", cwerr.ErrFeedUnreadable)}
	b.Feeds = Feeds{URLs: map[string]string{"ansa": "https://a.example/rss"}}
	out := &fakeReplier{}
	send(t, b, out, "/start")
	out.reset()
	send(t, b, out, "/news")
	if len(out.sent) != 1 || out.sent[0].text != msgFeedUnreadable {
		t.Fatalf("sent %+v, want feed apology", out.sent)
	}
}

func TestRenderFailureKeepsSettings(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	send(t, b, out, "/tone 700")
	renderer.err = &cwerr.RenderFailure{Stage: cwerr.StageRun, ExitCode: 2}
	out.reset()
	send(t, b, out, "hello")
	if len(out.sent) != 1 || out.sent[0].text != msgRenderFailed {
		t.Fatalf("sent %+v, want render apology", out.sent)
	}
	sess, err := b.Store.Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.Settings[settings.KeyTone] != "700" || !sess.State.IsMain() {
		t.Fatalf("session after failure = %+v", sess)
	}
}

func TestPanicIsReported(t *testing.T) {
	t.Parallel()

	b, renderer, _ := newTestBot(t)
	out := &fakeReplier{}
	send(t, b, out, "/start")
	renderer.pnc = true
	out.reset()
	send(t, b, out, "hello")
	if len(out.sent) != 1 || out.sent[0].text != msgFailure {
		t.Fatalf("sent %+v, want generic failure", out.sent)
	}
}

func TestSendErrorsDoNotCorruptSession(t *testing.T) {
	t.Parallel()

	b, _, dir := newTestBot(t)
	out := &fakeReplier{failAll: true}
	send(t, b, out, "/start")
	send(t, b, out, "/wpm 20")
	send(t, b, out, "hello")
	sess, err := b.Store.Get(context.Background(), "42")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !sess.Exists || sess.Settings[settings.KeyWPM] != "20" {
		t.Fatalf("session = %+v", sess)
	}
	assertEmptyDir(t, dir)
}

func TestFeedsResolve(t *testing.T) {
	t.Parallel()

	f := Feeds{URLs: map[string]string{"b": "u2", "a": "u1"}}
	if got, err := f.Resolve(""); err != nil || got != "u1" {
		t.Fatalf("Resolve(\"\") = %q, %v, want first feed", got, err)
	}
	if _, err := f.Resolve("zz"); err == nil {
		t.Fatalf("Resolve(zz) expected error")
	}
	if _, err := (Feeds{}).Resolve(""); err == nil {
		t.Fatalf("Resolve() without feeds expected error")
	}
}
