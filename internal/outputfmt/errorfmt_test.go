package outputfmt

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeErrorText_RedactsBotToken(t *testing.T) {
	in := `Post "https://api.telegram.org/bot123456:AAE-secret_Token/getUpdates": context deadline exceeded`

	out := SanitizeErrorText(in)
	if strings.Contains(out, "AAE-secret_Token") || strings.Contains(out, "123456") {
		t.Fatalf("token should be redacted, got %q", out)
	}
	if !strings.Contains(out, "api.telegram.org") {
		t.Fatalf("host should be kept, got %q", out)
	}
	if !strings.Contains(out, "/getUpdates") || !strings.Contains(out, "context deadline exceeded") {
		t.Fatalf("method and cause should be kept, got %q", out)
	}
}

func TestSanitizeErrorText_QueryAndUserInfo(t *testing.T) {
	in := `fetch failed: https://user:pw@a.example.com/rss?token=abc&lang=it then https://b.example.com/health?ok=1`
	out := SanitizeErrorText(in)
	if strings.Contains(out, "abc") || strings.Contains(out, ":pw@") {
		t.Fatalf("credentials should be redacted, got %q", out)
	}
	if !strings.Contains(out, "lang=it") || !strings.Contains(out, "token=%5Bredacted%5D") {
		t.Fatalf("query should be kept with token redacted, got %q", out)
	}
	if !strings.Contains(out, "https://b.example.com/health?ok=1") {
		t.Fatalf("second url should be untouched, got %q", out)
	}
}

func TestError(t *testing.T) {
	if got := Error(nil); got != "" {
		t.Fatalf("Error(nil) = %q, want empty", got)
	}
	got := Error(errors.New(`Get "https://example.com/api?apikey=123": bad gateway`))
	if strings.Contains(got, "123") {
		t.Fatalf("Error() = %q, apikey should be redacted", got)
	}
	if got := Error(errors.New("plain failure")); got != "plain failure" {
		t.Fatalf("Error() = %q, want text unchanged", got)
	}
}
