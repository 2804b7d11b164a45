// Package dispatch is the table driven state machine that decides what to do
// with every inbound message.
//
// The transition table is an ordered list of CommandSpec rows. A row names a
// command, what happens when it is issued and, for commands that ask a
// question, the state waiting for the answer and how the answer is accepted.
// Machine interprets the table; it never does I/O. Long running work is
// returned as a Task for the caller to run.
package dispatch

import (
	"fmt"
	"strings"

	"github.com/quailyquaily/text2cw/internal/session"
	"github.com/quailyquaily/text2cw/internal/settings"
)

// Keyboard selects the reply keyboard sent with a reply.
type Keyboard int

const (
	KeyboardKeep Keyboard = iota
	KeyboardMain
	KeyboardLeave
	KeyboardRemove
)

type Reply struct {
	Text     string
	Keyboard Keyboard
}

// TaskKind names the long running work requested by a message.
type TaskKind string

const (
	TaskMessage TaskKind = "message"
	TaskGroups  TaskKind = "groups"
	TaskWords   TaskKind = "words"
	TaskQSO     TaskKind = "qso"
	TaskNews    TaskKind = "news"
)

// Task carries a snapshot of the settings so that later updates of the
// session don't change work already accepted.
type Task struct {
	Kind     TaskKind
	Text     string
	Arg      string
	Settings settings.Values
}

// Input is one inbound message.
type Input struct {
	Text      string
	FirstName string
	// NonText is set for stickers, photos and other messages without text.
	NonText bool
}

// Outcome is what the caller must do after Handle.
type Outcome struct {
	Replies []Reply
	Task    *Task
	// Migrated lists settings backfilled with their default.
	Migrated []string
	// NotJoined is set when the input was refused because the user has not
	// joined.
	NotJoined bool
}

// Context is handed to the handlers of a CommandSpec.
type Context struct {
	Session  *session.Session
	Registry *settings.Registry
	Input    Input
	// Args is the text following the command, if any.
	Args    string
	machine *Machine
	out     *Outcome
}

func (c *Context) Reply(text string, kb Keyboard) {
	c.out.Replies = append(c.out.Replies, Reply{Text: text, Keyboard: kb})
}

// Run requests a long running task on a snapshot of the session settings.
func (c *Context) Run(kind TaskKind, text string) {
	c.out.Task = &Task{Kind: kind, Text: text, Arg: c.Args, Settings: c.Session.Settings.Clone()}
}

// Join marks the session as joined and reports settings backfilled on a
// returning user.
func (c *Context) Join() {
	wasEmpty := len(c.Session.Settings) == 0
	added := c.Session.Join(c.Registry)
	if !wasEmpty {
		c.reportMigrated(added)
	}
}

func (c *Context) reportMigrated(added []string) {
	if len(added) == 0 {
		return
	}
	c.out.Migrated = append(c.out.Migrated, added...)
	for _, key := range added {
		c.Reply(migrationNotice(c.Registry, key), KeyboardKeep)
	}
}

// Help is the help text built from the table.
func (c *Context) Help() string {
	return c.machine.Help()
}

// Handler runs when a command is issued and returns the next state.
type Handler func(c *Context) session.State

// AcceptHandler receives the answer in AcceptState and returns the next
// state. Returning AcceptState keeps waiting for a valid answer.
type AcceptHandler func(c *Context, answer string) session.State

// CommandSpec is one row of the transition table.
type CommandSpec struct {
	Name        string
	Description string
	Prompt      Handler
	// AcceptState is the state waiting for an answer, empty for commands that
	// complete immediately.
	AcceptState session.State
	Accept      AcceptHandler
	// Global commands are recognized in every state.
	Global bool
	// Hidden commands are left out of the help text.
	Hidden bool
}

// Machine interprets a transition table.
type Machine struct {
	registry *settings.Registry
	specs    []CommandSpec
	byName   map[string]int
	byState  map[session.State]int
}

// New checks the table: names are unique, every AcceptState has an Accept
// handler and belongs to one row only.
func New(registry *settings.Registry, specs []CommandSpec) (*Machine, error) {
	if registry == nil {
		return nil, fmt.Errorf("dispatch: nil registry")
	}
	m := &Machine{
		registry: registry,
		specs:    append([]CommandSpec(nil), specs...),
		byName:   make(map[string]int, len(specs)),
		byState:  make(map[session.State]int),
	}
	for i, s := range m.specs {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" || strings.ContainsAny(name, " /@") {
			return nil, fmt.Errorf("dispatch: invalid command name %q", s.Name)
		}
		if _, dup := m.byName[name]; dup {
			return nil, fmt.Errorf("dispatch: duplicate command %q", name)
		}
		if s.Prompt == nil {
			return nil, fmt.Errorf("dispatch: command %q has no prompt handler", name)
		}
		m.specs[i].Name = name
		m.byName[name] = i
		if s.AcceptState == "" {
			continue
		}
		if s.AcceptState.IsMain() || s.Accept == nil {
			return nil, fmt.Errorf("dispatch: command %q has an invalid accept state", name)
		}
		if _, dup := m.byState[s.AcceptState]; dup {
			return nil, fmt.Errorf("dispatch: duplicate accept state %q", s.AcceptState)
		}
		m.byState[s.AcceptState] = i
	}
	for _, required := range []string{CmdStart, CmdStop, CmdLeave} {
		if _, ok := m.byName[required]; !ok {
			return nil, fmt.Errorf("dispatch: table lacks /%s", required)
		}
	}
	return m, nil
}

func MustNew(registry *settings.Registry, specs []CommandSpec) *Machine {
	m, err := New(registry, specs)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Machine) Specs() []CommandSpec {
	return append([]CommandSpec(nil), m.specs...)
}

func (m *Machine) Lookup(name string) (CommandSpec, bool) {
	i, ok := m.byName[strings.ToLower(name)]
	if !ok {
		return CommandSpec{}, false
	}
	return m.specs[i], true
}

// States returns MAIN followed by every accept state in table order.
func (m *Machine) States() []session.State {
	out := []session.State{session.StateMain}
	for _, s := range m.specs {
		if s.AcceptState != "" {
			out = append(out, s.AcceptState)
		}
	}
	return out
}

// ValidState reports whether st is declared by the table.
func (m *Machine) ValidState(st session.State) bool {
	if st.IsMain() {
		return true
	}
	_, ok := m.byState[st]
	return ok
}

// Handle advances sess by one input. sess is mutated in place; the caller
// persists it.
func (m *Machine) Handle(sess *session.Session, in Input) Outcome {
	var out Outcome
	c := &Context{Session: sess, Registry: m.registry, Input: in, machine: m, out: &out}

	name, args := "", ""
	if !in.NonText {
		name, args = ParseCommand(in.Text)
	}
	c.Args = args

	if !sess.Exists {
		if name != CmdStart {
			out.NotJoined = true
			c.Reply(msgNotJoined, KeyboardRemove)
			return out
		}
	} else {
		wasEmpty := len(sess.Settings) == 0
		added := sess.Migrate(m.registry)
		if !wasEmpty {
			c.reportMigrated(added)
		}
	}
	if !m.ValidState(sess.State) {
		sess.State = session.StateMain
	}
	sess.State = m.step(c, name, args)
	return out
}

func (m *Machine) step(c *Context, name, args string) session.State {
	sess := c.Session
	if name != "" {
		if i, ok := m.byName[name]; ok && m.specs[i].Global {
			return m.next(m.specs[i].Prompt(c))
		}
	}

	if i, typing := m.byState[sess.State]; typing {
		spec := m.specs[i]
		switch {
		case name == CmdLeave:
			return m.next(m.specs[m.byName[CmdLeave]].Prompt(c))
		case name != "" || c.Input.NonText:
			c.Reply(answerOrLeave(spec.Name), KeyboardLeave)
			return sess.State
		default:
			return m.next(spec.Accept(c, strings.TrimSpace(c.Input.Text)))
		}
	}

	switch {
	case c.Input.NonText:
		c.Reply(msgUnknown, KeyboardKeep)
		return session.StateMain
	case name == "":
		if args == "" {
			c.Reply(msgUnknown, KeyboardKeep)
			return session.StateMain
		}
		c.Run(TaskMessage, c.Input.Text)
		return session.StateMain
	}

	i, ok := m.byName[name]
	if !ok || name == CmdLeave {
		c.Reply(msgUnknown, KeyboardKeep)
		return session.StateMain
	}
	spec := m.specs[i]
	if args != "" && spec.Accept != nil {
		return m.next(spec.Accept(c, args))
	}
	return m.next(spec.Prompt(c))
}

// next keeps the machine inside its declared states.
func (m *Machine) next(st session.State) session.State {
	if m.ValidState(st) {
		if st == "" {
			return session.StateMain
		}
		return st
	}
	return session.StateMain
}

// Help lists the visible commands of the table.
func (m *Machine) Help() string {
	lines := append([]string(nil), helpIntro...)
	for _, s := range m.specs {
		if s.Hidden {
			continue
		}
		lines = append(lines, "/"+s.Name, "    "+s.Description)
	}
	return strings.Join(lines, "\n")
}
