// Package feed reads RSS and Atom news feeds into plain text ready to be
// sent in Morse.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/quailyquaily/text2cw/internal/cwerr"
)

const (
	DefaultTimeout      = 20 * time.Second
	defaultMaxBodyBytes = 4 * 1024 * 1024
	defaultUserAgent    = "text2cw/1.0 (+feed reader)"

	// itemSeparator ends every item; <AR> is the end of message prosign.
	itemSeparator = " <AR>"
)

// Options selects and formats the items of a feed.
type Options struct {
	Count int
	// Timestamps prefixes every item with its publication time.
	Timestamps bool
	// Filter keeps only items whose title contains it, case-insensitively.
	Filter string
}

type Reader struct {
	Client       *http.Client
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	// Location is used for timestamps. Defaults to time.Local.
	Location *time.Location
}

func NewReader(timeout time.Duration) *Reader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reader{Client: &http.Client{Timeout: timeout}, Timeout: timeout}
}

// Get downloads url and returns its latest items as text. A download or parse
// failure wraps cwerr.ErrFeedUnreadable; a feed without matching items wraps
// cwerr.ErrNotFound.
func (r *Reader) Get(ctx context.Context, url string, opts Options) (string, error) {
	body, err := r.fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", cwerr.ErrFeedUnreadable, url, err)
	}
	return r.Format(body, opts)
}

// Format parses a feed document and renders the selected items.
func (r *Reader) Format(doc []byte, opts Options) (string, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("%w: %v", cwerr.ErrFeedUnreadable, err)
	}
	count := opts.Count
	if count <= 0 {
		count = 5
	}
	filter := strings.ToLower(strings.TrimSpace(opts.Filter))
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	var items []string
	for _, it := range parsed.Items {
		if len(items) >= count {
			break
		}
		if it == nil {
			continue
		}
		title := stripHTML(it.Title)
		if filter != "" && !strings.Contains(strings.ToLower(title), filter) {
			continue
		}
		var b strings.Builder
		if opts.Timestamps {
			if ts := itemTime(it); ts != nil {
				b.WriteString(ts.In(loc).Format("02/01 15:04"))
				b.WriteString(" = ")
			}
		}
		b.WriteString(title)
		if desc := stripHTML(it.Description); desc != "" && desc != title {
			b.WriteString(" = ")
			b.WriteString(desc)
		}
		b.WriteString(itemSeparator)
		items = append(items, b.String())
	}
	if len(items) == 0 {
		return "", fmt.Errorf("%w: no news in feed", cwerr.ErrNotFound)
	}
	return strings.Join(items, "\n"), nil
}

func itemTime(it *gofeed.Item) *time.Time {
	if it.PublishedParsed != nil {
		return it.PublishedParsed
	}
	return it.UpdatedParsed
}

func (r *Reader) fetch(ctx context.Context, url string) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	ua := r.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status=%d", resp.StatusCode)
	}
	limit := r.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// stripHTML returns the text content of an HTML fragment with blanks
// collapsed. Script and style elements are dropped.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(x *html.Node) {
		if x == nil {
			return
		}
		if x.Type == html.ElementNode && (x.Data == "script" || x.Data == "style") {
			return
		}
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
			b.WriteByte(' ')
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
