package settings

import (
	"strconv"
	"strings"
)

// Values maps setting keys to canonical values.
type Values map[string]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// String returns the raw canonical value.
func (v Values) String(key string) string {
	return v[key]
}

// OptString returns the value and false when it is none.
func (v Values) OptString(key string) (string, bool) {
	s := v[key]
	if s == "" || s == None {
		return "", false
	}
	return s, true
}

// Int returns an integer value, 0 when unset.
func (v Values) Int(key string) int {
	n, _ := strconv.Atoi(v[key])
	return n
}

// OptInt returns an optional integer value.
func (v Values) OptInt(key string) (int, bool) {
	s, ok := v.OptString(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// OptFloat returns an optional decimal value.
func (v Values) OptFloat(key string) (float64, bool) {
	s, ok := v.OptString(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Ints returns a comma separated integer list.
func (v Values) Ints(key string) []int {
	var out []int
	for _, f := range strings.Split(v[key], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Pair returns a min-max value.
func (v Values) Pair(key string) (int, int) {
	a, b, _ := strings.Cut(v[key], "-")
	minN, _ := strconv.Atoi(a)
	maxN, _ := strconv.Atoi(b)
	return minN, maxN
}

// Bool reports whether an on/off value is on.
func (v Values) Bool(key string) bool {
	return v[key] == "on"
}
