// Package settings is the closed, ordered schema of per-user settings.
//
// Values are persisted in canonical string form, the same text a user could type
// to set them. Validators turn raw input into that canonical form; typed accessors
// on Values read it back.
package settings

import (
	"fmt"
	"slices"
	"strings"
)

// Version is bumped every time a setting is added, removed or its canonical
// form changes. Sessions record the version they were last migrated to.
const Version = 4

// None is the canonical value of an unset optional setting.
const None = "none"

// Setting is one recognized per-user setting.
type Setting struct {
	Key      string
	Default  string
	Help     string
	Validate func(raw string) (string, error)
}

// Pair is a key with its value, as returned by Defaults.
type Pair struct {
	Key   string
	Value string
}

// Registry is an immutable ordered set of settings.
type Registry struct {
	settings []Setting
	index    map[string]int
}

// NewRegistry builds a registry. Keys must be unique and every default must
// pass its own validator.
func NewRegistry(settings ...Setting) (*Registry, error) {
	r := &Registry{
		settings: make([]Setting, 0, len(settings)),
		index:    make(map[string]int, len(settings)),
	}
	for _, s := range settings {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return nil, fmt.Errorf("settings: empty key")
		}
		if _, dup := r.index[key]; dup {
			return nil, fmt.Errorf("settings: duplicate key %q", key)
		}
		if s.Validate == nil {
			return nil, fmt.Errorf("settings: %s has no validator", key)
		}
		canonical, err := s.Validate(s.Default)
		if err != nil {
			return nil, fmt.Errorf("settings: default of %s: %w", key, err)
		}
		s.Key = key
		s.Default = canonical
		r.index[key] = len(r.settings)
		r.settings = append(r.settings, s)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static tables.
func MustNewRegistry(settings ...Setting) *Registry {
	r, err := NewRegistry(settings...)
	if err != nil {
		panic(err)
	}
	return r
}

// Settings returns the settings in registry order.
func (r *Registry) Settings() []Setting {
	return append([]Setting(nil), r.settings...)
}

// Defaults returns every key with its default value, in registry order.
func (r *Registry) Defaults() []Pair {
	out := make([]Pair, 0, len(r.settings))
	for _, s := range r.settings {
		out = append(out, Pair{Key: s.Key, Value: s.Default})
	}
	return out
}

// Lookup returns the setting registered under key.
func (r *Registry) Lookup(key string) (Setting, bool) {
	i, ok := r.index[key]
	if !ok {
		return Setting{}, false
	}
	return r.settings[i], true
}

// Validate checks raw input for key and returns its canonical form.
func (r *Registry) Validate(key, raw string) (string, error) {
	s, ok := r.Lookup(key)
	if !ok {
		return "", fmt.Errorf("settings: unknown key %q", key)
	}
	return s.Validate(raw)
}

// NewValues returns a map holding every default.
func (r *Registry) NewValues() Values {
	v := make(Values, len(r.settings))
	for _, s := range r.settings {
		v[s.Key] = s.Default
	}
	return v
}

// Migrate inserts the default of every registry key missing from v and
// returns the inserted keys in registry order. A second call on the same map
// inserts nothing.
func (r *Registry) Migrate(v Values) []string {
	var added []string
	for _, s := range r.settings {
		if _, ok := v[s.Key]; ok {
			continue
		}
		v[s.Key] = s.Default
		added = append(added, s.Key)
	}
	return added
}

// Prune removes keys that are no longer registered and returns them sorted.
func (r *Registry) Prune(v Values) []string {
	var removed []string
	for key := range v {
		if _, ok := r.index[key]; !ok {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		delete(v, key)
	}
	slices.Sort(removed)
	return removed
}

// Repair re-validates stored values. Values that no longer validate are reset
// to their default; values that validate to a different canonical form are
// rewritten. Keys reset to default are returned in registry order.
func (r *Registry) Repair(v Values) []string {
	var reset []string
	for _, s := range r.settings {
		raw, ok := v[s.Key]
		if !ok {
			continue
		}
		canonical, err := s.Validate(raw)
		if err != nil {
			v[s.Key] = s.Default
			reset = append(reset, s.Key)
			continue
		}
		v[s.Key] = canonical
	}
	return reset
}
