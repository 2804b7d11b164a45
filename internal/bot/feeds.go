package bot

import (
	"sort"
	"strings"

	"github.com/quailyquaily/text2cw/internal/cwerr"
)

const feedKey = "news"

// Feeds maps feed names to URLs.
type Feeds struct {
	// Default names the feed used when /news has no argument. Empty means the
	// first name in order.
	Default string
	URLs    map[string]string
}

// Names returns the feed names in order.
func (f Feeds) Names() []string {
	names := make([]string, 0, len(f.URLs))
	for name := range f.URLs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the URL of the named feed, or of the default feed for an
// empty name.
func (f Feeds) Resolve(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	names := f.Names()
	if len(names) == 0 {
		return "", cwerr.Invalid(feedKey, "Sorry - no news feed is configured")
	}
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(f.Default))
		if name == "" {
			name = names[0]
		}
	}
	for _, n := range names {
		if strings.ToLower(n) == name {
			return f.URLs[n], nil
		}
	}
	return "", cwerr.Invalid(feedKey, "Sorry - valid feeds are %s", strings.Join(names, ", "))
}
