package dispatch

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/quailyquaily/text2cw/internal/render"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

func joined(t *testing.T, m *Machine) *session.Session {
	t.Helper()
	sess := session.New("42")
	out := m.Handle(sess, Input{Text: "/start", FirstName: "Ada"})
	if !sess.Exists {
		t.Fatalf("/start did not join")
	}
	if len(out.Replies) != 1 || !strings.HasPrefix(out.Replies[0].Text, "Hi Ada\n") {
		t.Fatalf("/start replies = %+v", out.Replies)
	}
	if len(out.Migrated) != 0 {
		t.Fatalf("/start on a new user reported migrations %v", out.Migrated)
	}
	return sess
}

func TestNotJoinedIsRefused(t *testing.T) {
	t.Parallel()

	m := Default()
	for _, text := range []string{"hello", "/wpm", "/stop", "/leave"} {
		sess := session.New("1")
		out := m.Handle(sess, Input{Text: text})
		if !out.NotJoined || out.Task != nil || len(out.Replies) != 1 {
			t.Fatalf("Handle(%q) on a new user = %+v", text, out)
		}
		if sess.Exists {
			t.Fatalf("Handle(%q) joined the user", text)
		}
	}
}

func TestJoinWpmListMessageBuildsTwoJobs(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	if got := sess.Settings.String(settings.KeyWPM); got != "25" {
		t.Fatalf("default wpm = %q, want 25", got)
	}

	out := m.Handle(sess, Input{Text: "/wpm 15,30"})
	if sess.State != session.StateMain {
		t.Fatalf("state after /wpm 15,30 = %q, want main", sess.State)
	}
	if len(out.Replies) != 1 || out.Replies[0].Text != "Ok - speed is now 15,30wpm" {
		t.Fatalf("/wpm 15,30 replies = %+v", out.Replies)
	}

	out = m.Handle(sess, Input{Text: "hello"})
	if out.Task == nil || out.Task.Kind != TaskMessage || len(out.Replies) != 0 {
		t.Fatalf("Handle(hello) = %+v", out)
	}
	jobs, err := render.Builder{WorkDir: "/tmp"}.Build(sess.UserID, "1", out.Task.Settings, out.Task.Text)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].WPM != 15 || jobs[1].WPM != 30 {
		t.Fatalf("Build() = %+v, want jobs at 15 and 30 wpm", jobs)
	}
	a := strings.Replace(jobs[0].Title, "15", "X", 1)
	b := strings.Replace(jobs[1].Title, "30", "X", 1)
	if a != b {
		t.Fatalf("titles %q and %q differ beyond the speed", jobs[0].Title, jobs[1].Title)
	}
}

func TestUnknownCommandGetsExactlyOneReply(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	for _, text := range []string{"/foo", "/foo some free text", "/leave", "/FOO@text2cw_bot now"} {
		out := m.Handle(sess, Input{Text: text})
		if out.Task != nil || len(out.Replies) != 1 || out.Replies[0].Text != msgUnknown {
			t.Fatalf("Handle(%q) = %+v, want one sorry reply", text, out)
		}
		if sess.State != session.StateMain {
			t.Fatalf("Handle(%q) state = %q", text, sess.State)
		}
	}
	out := m.Handle(sess, Input{Text: "free text"})
	if out.Task == nil || len(out.Replies) != 0 {
		t.Fatalf("Handle(free text) = %+v, want one task", out)
	}
}

func TestTypingStateFlow(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)

	m.Handle(sess, Input{Text: "/tone"})
	if sess.State != session.TypingState(settings.KeyTone) {
		t.Fatalf("state = %q, want typing tone", sess.State)
	}
	out := m.Handle(sess, Input{Text: "loud"})
	if sess.State != session.TypingState(settings.KeyTone) || out.Replies[0].Text != "Hey ... this is not a number!!" {
		t.Fatalf("invalid answer = %+v, state %q", out.Replies, sess.State)
	}
	out = m.Handle(sess, Input{Text: "1201"})
	if out.Replies[0].Text != "Sorry - Valid frequency is between 200 and 1200\nTry again" {
		t.Fatalf("out of range reply = %q", out.Replies[0].Text)
	}
	out = m.Handle(sess, Input{Text: "/qso"})
	if out.Task != nil || sess.State != session.TypingState(settings.KeyTone) {
		t.Fatalf("command while typing = %+v, state %q", out, sess.State)
	}
	out = m.Handle(sess, Input{NonText: true})
	if len(out.Replies) != 1 || sess.State != session.TypingState(settings.KeyTone) {
		t.Fatalf("non text while typing = %+v", out)
	}
	out = m.Handle(sess, Input{Text: "/leave"})
	if sess.State != session.StateMain || out.Replies[0].Text != msgLeave {
		t.Fatalf("/leave = %+v, state %q", out.Replies, sess.State)
	}
	if sess.Settings[settings.KeyTone] != "600" {
		t.Fatalf("/leave changed tone to %q", sess.Settings[settings.KeyTone])
	}

	m.Handle(sess, Input{Text: "/tone"})
	out = m.Handle(sess, Input{Text: "800"})
	if sess.State != session.StateMain || sess.Settings[settings.KeyTone] != "800" {
		t.Fatalf("valid answer state %q tone %q", sess.State, sess.Settings[settings.KeyTone])
	}
	if out.Replies[0].Text != "Ok - tone frequency is now 800Hz" || out.Replies[0].Keyboard != KeyboardMain {
		t.Fatalf("valid answer reply = %+v", out.Replies[0])
	}
}

func TestOptionalSettingAcceptsNone(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	m.Handle(sess, Input{Text: "/snr -3"})
	if sess.Settings[settings.KeySNR] != "-3" {
		t.Fatalf("snr = %q, want -3", sess.Settings[settings.KeySNR])
	}
	m.Handle(sess, Input{Text: "/snr"})
	out := m.Handle(sess, Input{Text: "NONE"})
	if sess.Settings[settings.KeySNR] != settings.None || out.Replies[0].Text != "Ok - no noise will be added" {
		t.Fatalf("snr none = %q, reply %q", sess.Settings[settings.KeySNR], out.Replies[0].Text)
	}
}

func TestInlineInvalidAnswerWaitsForRetry(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	out := m.Handle(sess, Input{Text: "/wpm 0"})
	if sess.State != session.TypingState(settings.KeyWPM) {
		t.Fatalf("state = %q, want typing wpm", sess.State)
	}
	if !strings.Contains(out.Replies[0].Text, "between 1 and 100") {
		t.Fatalf("reply = %q", out.Replies[0].Text)
	}
	m.Handle(sess, Input{Text: "20"})
	if sess.State != session.StateMain || sess.Settings[settings.KeyWPM] != "20" {
		t.Fatalf("retry state %q wpm %q", sess.State, sess.Settings[settings.KeyWPM])
	}
}

func TestStopFromAnyState(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	m.Handle(sess, Input{Text: "/title"})
	out := m.Handle(sess, Input{Text: "/stop"})
	if sess.Exists || sess.State != session.StateMain || out.Replies[0].Text != msgBye {
		t.Fatalf("/stop = %+v, exists %v state %q", out.Replies, sess.Exists, sess.State)
	}
	if out := m.Handle(sess, Input{Text: "hello"}); !out.NotJoined {
		t.Fatalf("Handle() after /stop = %+v, want NotJoined", out)
	}
	m.Handle(sess, Input{Text: "/start"})
	if !sess.Exists {
		t.Fatalf("/start after /stop did not rejoin")
	}
}

func TestMigrationReportedOnce(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	delete(sess.Settings, settings.KeyNewsFilter)
	out := m.Handle(sess, Input{Text: "/help"})
	if len(out.Migrated) != 1 || out.Migrated[0] != settings.KeyNewsFilter || len(out.Replies) != 2 {
		t.Fatalf("Handle() migration = %+v", out)
	}
	out = m.Handle(sess, Input{Text: "/help"})
	if len(out.Migrated) != 0 || len(out.Replies) != 1 {
		t.Fatalf("second Handle() migration = %+v", out)
	}
}

func TestContentCommandsRunTasks(t *testing.T) {
	t.Parallel()

	m := Default()
	sess := joined(t, m)
	cases := map[string]TaskKind{"/groups": TaskGroups, "/words": TaskWords, "/qso": TaskQSO, "/news radio": TaskNews}
	for text, kind := range cases {
		out := m.Handle(sess, Input{Text: text})
		if out.Task == nil || out.Task.Kind != kind {
			t.Fatalf("Handle(%q) task = %+v, want %s", text, out.Task, kind)
		}
		if kind == TaskNews && out.Task.Arg != "radio" {
			t.Fatalf("/news arg = %q, want radio", out.Task.Arg)
		}
	}

	out := m.Handle(sess, Input{Text: "hello"})
	sess.Settings[settings.KeyTone] = "900"
	if out.Task.Settings[settings.KeyTone] != "600" {
		t.Fatalf("task settings are not a snapshot")
	}
}

func TestMachineOnlyProducesDeclaredStates(t *testing.T) {
	t.Parallel()

	m := Default()
	var tokens []string
	for _, s := range m.Specs() {
		tokens = append(tokens, "/"+s.Name, "/"+s.Name+" 5")
	}
	tokens = append(tokens, "hello", "none", "15,30", "on", "-3", "/nope", "")
	rng := rand.New(rand.NewPCG(1, 1))
	sess := session.New("9")
	for i := 0; i < 2000; i++ {
		text := tokens[rng.IntN(len(tokens))]
		m.Handle(sess, Input{Text: text, NonText: text == ""})
		if !m.ValidState(sess.State) {
			t.Fatalf("Handle(%q) produced undeclared state %q", text, sess.State)
		}
		if sess.Exists {
			for _, p := range settings.Default().Defaults() {
				if _, ok := sess.Settings[p.Key]; !ok {
					t.Fatalf("joined session lacks %s", p.Key)
				}
			}
		}
	}
}

func TestNewRejectsBadTables(t *testing.T) {
	t.Parallel()

	r := settings.Default()
	base := DefaultTable(r)
	noop := func(*Context) session.State { return session.StateMain }
	cases := map[string][]CommandSpec{
		"duplicate":     append(append([]CommandSpec(nil), base...), CommandSpec{Name: "help", Prompt: noop}),
		"no prompt":     append(append([]CommandSpec(nil), base...), CommandSpec{Name: "x"}),
		"accept w/o fn": append(append([]CommandSpec(nil), base...), CommandSpec{Name: "x", Prompt: noop, AcceptState: "typing_x"}),
		"missing stop":  {base[0], base[2]},
	}
	for name, table := range cases {
		if _, err := New(r, table); err == nil {
			t.Fatalf("New(%s) expected error", name)
		}
	}
}

func TestHelpListsVisibleCommands(t *testing.T) {
	t.Parallel()

	help := Default().Help()
	for _, want := range []string{"/wpm", "/settings", "/news", "/stop"} {
		if !strings.Contains(help, want+"\n") {
			t.Fatalf("Help() lacks %s", want)
		}
	}
	if strings.Contains(help, "/leave\n") {
		t.Fatalf("Help() lists hidden /leave")
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, name, args string }{
		{in: "/wpm 15,30", name: "wpm", args: "15,30"},
		{in: "/WPM@bot\n20", name: "wpm", args: "20"},
		{in: "hello world", name: "", args: "hello world"},
		{in: "/", name: "", args: "/"},
	}
	for _, tc := range cases {
		name, args := ParseCommand(tc.in)
		if name != tc.name || args != tc.args {
			t.Fatalf("ParseCommand(%q) = %q, %q", tc.in, name, args)
		}
	}
}
