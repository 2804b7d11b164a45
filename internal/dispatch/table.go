package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

// Commands that the machine handles specially.
const (
	CmdStart = "start"
	CmdStop  = "stop"
	CmdLeave = "leave"
)

// MainKeyboard is the layout of the reply keyboard shown in MAIN.
var MainKeyboard = [][]string{
	{"/wpm", "/tone", "/snr"},
	{"/groups", "/words", "/qso", "/news"},
	{"/title", "/settings", "/help"},
}

// LeaveKeyboard is shown while waiting for an answer.
var LeaveKeyboard = [][]string{{"/leave"}}

// question describes how a setting is asked for and confirmed.
type question struct {
	key   string
	label string
	unit  string
	ask   string
	// none is the confirmation used when the answer disables the setting.
	none string
}

func (q question) show(v string) string {
	if v == settings.None || v == "" {
		return settings.None
	}
	return v + q.unit
}

// settingRow builds the table row of a setting with a prompt.
func settingRow(r *settings.Registry, q question) CommandSpec {
	s, ok := r.Lookup(q.key)
	if !ok {
		panic(fmt.Sprintf("dispatch: unknown setting %q", q.key))
	}
	state := session.TypingState(q.key)
	return CommandSpec{
		Name:        q.key,
		Description: s.Help,
		AcceptState: state,
		Prompt: func(c *Context) session.State {
			c.Reply(fmt.Sprintf("Current value is %s\n%s", q.show(c.Session.Settings.String(q.key)), q.ask), KeyboardLeave)
			return state
		},
		Accept: func(c *Context, answer string) session.State {
			value, err := c.Registry.Validate(q.key, answer)
			if err != nil {
				reason := err.Error()
				if v, ok := cwerr.IsValidation(err); ok {
					reason = v.Reason
				}
				c.Reply(reason, KeyboardLeave)
				return state
			}
			c.Session.Settings[q.key] = value
			if value == settings.None && q.none != "" {
				c.Reply(q.none, KeyboardMain)
			} else {
				c.Reply(fmt.Sprintf("Ok - %s is now %s", q.label, q.show(value)), KeyboardMain)
			}
			return session.StateMain
		},
	}
}

var defaultQuestions = []question{
	{key: settings.KeyWPM, label: "speed", unit: "wpm", ask: "What is your desired speed?\nUse a comma separated list (like 15,20,25) to get one file per speed"},
	{key: settings.KeyEffectiveWPM, label: "effective speed", unit: "wpm", ask: "What is your desired effective speed (type none to disable)?", none: "Ok - effective speed disabled"},
	{key: settings.KeyExtraSpace, label: "extra word space", ask: "How much extra space between words (type none to disable)?", none: "Ok - no extra space will be added"},
	{key: settings.KeyQRQ, label: "qrq interval", unit: "min", ask: "After how many minutes should speed grow by 1wpm (type none to disable)?", none: "Ok - speed will stay constant"},
	{key: settings.KeyTone, label: "tone frequency", unit: "Hz", ask: "What is your desired tone frequency?"},
	{key: settings.KeyWaveform, label: "waveform", ask: "What is your desired waveform (sine, sawtooth, square)?"},
	{key: settings.KeySNR, label: "snr", unit: "db", ask: "What is your desired snr (type none for no added noise at all)?", none: "Ok - no noise will be added"},
	{key: settings.KeyTitle, label: "title", ask: "What is your desired title?"},
	{key: settings.KeyFormat, label: "format", ask: "Do you want an audio file or a voice message (audio, voice)?"},
	{key: settings.KeySimplify, label: "simplify", ask: "Should I replace symbols I can't send with blanks (on, off)?"},
	{key: settings.KeyNoAccents, label: "noaccents", ask: "Should I replace accented letters with plain ones (on, off)?"},
	{key: settings.KeyNumbers, label: "numbers", ask: "Should I spell out numbers (on, off)?"},
	{key: settings.KeyShuffle, label: "shuffle", ask: "What should I shuffle (nothing, words, letters, both)?"},
	{key: settings.KeyCharset, label: "charset", ask: "Which symbols should I use for groups and words?"},
	{key: settings.KeyGroupCount, label: "number of groups", ask: "How many groups should I send?"},
	{key: settings.KeyWordCount, label: "number of words", ask: "How many words should I send?"},
	{key: settings.KeyWordLen, label: "word length", ask: "Which word length do you want (min-max, like 2-8)?"},
	{key: settings.KeyNewsCount, label: "number of news", ask: "How many news should I send?"},
	{key: settings.KeyNewsTime, label: "newstime", ask: "Should I add the publication time to news (on, off)?"},
	{key: settings.KeyNewsFilter, label: "news filter", ask: "Which text must news titles contain (type none to disable)?", none: "Ok - all news will be sent"},
	{key: settings.KeySolution, label: "solution", ask: "How should I send the clear text of exercises (none, text, pdf)?"},
}

func greeting(c *Context) string {
	name := strings.TrimSpace(c.Input.FirstName)
	if name == "" {
		return "Hi\n" + c.Help()
	}
	return "Hi " + name + "\n" + c.Help()
}

// DefaultTable returns the transition table of the bot.
func DefaultTable(r *settings.Registry) []CommandSpec {
	table := []CommandSpec{
		{
			Name: CmdStart, Description: "Join, or show this help", Global: true, Hidden: true,
			Prompt: func(c *Context) session.State {
				if !c.Session.Exists {
					c.Join()
				}
				c.Reply(greeting(c), KeyboardMain)
				return session.StateMain
			},
		},
		{
			Name: CmdStop, Description: "Leave permanently, your settings are kept for a later /start", Global: true,
			Prompt: func(c *Context) session.State {
				c.Session.Leave()
				c.Reply(msgBye, KeyboardRemove)
				return session.StateMain
			},
		},
		{
			Name: CmdLeave, Description: "Leave a question keeping the current value", Hidden: true,
			Prompt: func(c *Context) session.State {
				c.Reply(msgLeave, KeyboardMain)
				return session.StateMain
			},
		},
		{
			Name: "help", Description: "Show this help",
			Prompt: func(c *Context) session.State {
				c.Reply(c.Help(), KeyboardMain)
				return session.StateMain
			},
		},
		{
			Name: "settings", Description: "Show your current settings",
			Prompt: func(c *Context) session.State {
				c.Reply(FormatSettings(c.Registry, c.Session.Settings), KeyboardMain)
				return session.StateMain
			},
		},
		{
			Name: "groups", Description: "Send random groups of five symbols from your charset",
			Prompt: runTask(TaskGroups),
		},
		{
			Name: "words", Description: "Send random words made of your charset",
			Prompt: runTask(TaskWords),
		},
		{
			Name: "qso", Description: "Send a random QSO",
			Prompt: runTask(TaskQSO),
		},
		{
			Name: "news", Description: "Send the latest news, optionally naming a feed (/news name)",
			Prompt: runTask(TaskNews),
		},
	}
	for _, q := range defaultQuestions {
		table = append(table, settingRow(r, q))
	}
	return table
}

func runTask(kind TaskKind) Handler {
	return func(c *Context) session.State {
		c.Run(kind, "")
		return session.StateMain
	}
}

// Default returns the machine of the bot over the default registry.
func Default() *Machine {
	r := settings.Default()
	return MustNew(r, DefaultTable(r))
}

// FormatSettings lists settings in registry order, then any unknown key.
func FormatSettings(r *settings.Registry, v settings.Values) string {
	var b strings.Builder
	b.WriteString("Your settings are:")
	known := make(map[string]bool, len(v))
	for _, p := range r.Defaults() {
		known[p.Key] = true
		fmt.Fprintf(&b, "\n%s: %s", p.Key, displayValue(v[p.Key]))
	}
	var extra []string
	for k := range v {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(&b, "\n%s: %s", k, v[k])
	}
	return b.String()
}
