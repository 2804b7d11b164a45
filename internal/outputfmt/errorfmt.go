// Package outputfmt cleans error text before it reaches logs.
package outputfmt

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[redacted]"

var absoluteURLInTextRE = regexp.MustCompile(`https?://[^\s"'<>]+`)

// botTokenSegmentRE matches the Bot API path segment that carries the token,
// e.g. "bot123456:AAE...".
var botTokenSegmentRE = regexp.MustCompile(`^bot[0-9]+:[A-Za-z0-9_-]+$`)

// Error returns err.Error() with credentials removed from any URL in it.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeErrorText(err.Error())
}

// SanitizeErrorText rewrites every absolute URL in raw, hiding bot tokens in
// the path, user info and sensitive query values. Hosts are kept.
func SanitizeErrorText(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return absoluteURLInTextRE.ReplaceAllStringFunc(raw, sanitizeURLInText)
}

func sanitizeURLInText(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	if u.User != nil {
		u.User = url.User(redacted)
	}
	segments := strings.Split(u.Path, "/")
	for i, seg := range segments {
		if botTokenSegmentRE.MatchString(seg) {
			segments[i] = "bot" + redacted
		}
	}
	u.Path = strings.Join(segments, "/")
	u.RawPath = ""
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if isSensitiveQueryKey(k) {
				q.Set(k, redacted)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}

func isSensitiveQueryKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return false
	}
	n := strings.ReplaceAll(strings.ReplaceAll(k, "-", ""), "_", "")
	if n == "key" {
		return true
	}
	for _, s := range []string{"apikey", "authorization", "token", "secret", "password", "cookie"} {
		if strings.Contains(n, s) {
			return true
		}
	}
	return false
}
