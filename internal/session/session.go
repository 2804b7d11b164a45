// Package session keeps the per-user conversation record: whether the user
// joined, the dispatcher state and the settings map.
package session

import (
	"strings"

	"github.com/quailyquaily/text2cw/internal/settings"
)

// State is a dispatcher state. The zero value is treated as StateMain.
type State string

const (
	StateMain    State = "main"
	typingPrefix       = "typing_"
)

// TypingState is the state waiting for an answer to the prompt of key.
func TypingState(key string) State {
	return State(typingPrefix + key)
}

// TypingKey returns the setting a Typing state waits for.
func (s State) TypingKey() (string, bool) {
	key, ok := strings.CutPrefix(string(s), typingPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func (s State) IsMain() bool {
	return s == StateMain || s == ""
}

type Session struct {
	UserID          string          `msgpack:"user_id"`
	Exists          bool            `msgpack:"exists"`
	State           State           `msgpack:"state"`
	SettingsVersion int             `msgpack:"settings_version,omitempty"`
	Settings        settings.Values `msgpack:"settings"`
}

// New returns a session for a user who has not joined yet.
func New(userID string) *Session {
	return &Session{
		UserID:   userID,
		State:    StateMain,
		Settings: settings.Values{},
	}
}

// Join marks the session as existing, backfills missing settings and moves
// it to StateMain. It returns the keys that received their default.
func (s *Session) Join(r *settings.Registry) []string {
	s.Exists = true
	s.State = StateMain
	return s.Migrate(r)
}

// Migrate backfills missing settings. It is idempotent.
func (s *Session) Migrate(r *settings.Registry) []string {
	if s.Settings == nil {
		s.Settings = settings.Values{}
	}
	added := r.Migrate(s.Settings)
	s.SettingsVersion = settings.Version
	return added
}

// Leave soft-deletes the session. Settings are retained for a later Join.
func (s *Session) Leave() {
	s.Exists = false
	s.State = StateMain
}

// Clone returns a deep copy, used as the snapshot handed to background tasks.
func (s *Session) Clone() *Session {
	out := *s
	out.Settings = s.Settings.Clone()
	return &out
}
