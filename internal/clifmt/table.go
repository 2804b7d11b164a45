package clifmt

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

const (
	defaultTableWidth     = 100
	defaultMinDetailWidth = 24
)

// Table has fixed width columns and a last column wrapped to the output
// width.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// EmptyText is printed instead of an empty table.
	EmptyText string
	Width     int
}

func PrintTable(out io.Writer, t Table) {
	if out == nil {
		out = os.Stdout
	}
	st := For(out)
	if title := strings.TrimSpace(t.Title); title != "" {
		fmt.Fprintln(out, st.Headerf("%s (%d)", title, len(t.Rows)))
	}
	if len(t.Rows) == 0 {
		empty := strings.TrimSpace(t.EmptyText)
		if empty == "" {
			empty = "No entries."
		}
		fmt.Fprintln(out, st.Warn(empty))
		return
	}

	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	widths := make([]int, cols)
	used := 0
	for i := 0; i < cols-1; i++ {
		widths[i] = utf8.RuneCountInString(cell(t.Headers, i))
		for _, row := range t.Rows {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell(row, i)))
		}
		used += widths[i] + 2
	}
	total := t.Width
	if total <= 0 {
		total = Width(out, defaultTableWidth)
	}
	widths[cols-1] = max(total-used, defaultMinDetailWidth)

	line := func(cells []string, style func(string) string) {
		var b strings.Builder
		for i := 0; i < cols-1; i++ {
			b.WriteString(style(padRightRunes(cell(cells, i), widths[i])))
			b.WriteString("  ")
		}
		b.WriteString(cells[cols-1])
		fmt.Fprintln(out, strings.TrimRight(b.String(), " "))
	}

	if len(t.Headers) > 0 {
		headers := make([]string, cols)
		for i := range headers {
			headers[i] = cell(t.Headers, i)
		}
		headers[cols-1] = st.Key(headers[cols-1])
		line(headers, st.Key)
		rules := make([]string, cols)
		for i := range rules {
			rules[i] = strings.Repeat("-", widths[i])
		}
		rules[cols-1] = st.Dim(rules[cols-1])
		line(rules, st.Dim)
	}
	for _, row := range t.Rows {
		wrapped := wrapTextRunes(cell(row, cols-1), widths[cols-1])
		first := make([]string, cols)
		for i := range first {
			first[i] = cell(row, i)
		}
		first[cols-1] = wrapped[0]
		line(first, st.Success)
		for _, extra := range wrapped[1:] {
			blank := make([]string, cols)
			blank[cols-1] = extra
			line(blank, func(s string) string { return s })
		}
	}
}

func padRightRunes(s string, width int) string {
	missing := width - utf8.RuneCountInString(s)
	if missing <= 0 {
		return s
	}
	return s + strings.Repeat(" ", missing)
}

func wrapTextRunes(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" || width <= 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	flush := func() {
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
	}
	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > width {
			flush()
			runes := []rune(word)
			lines = append(lines, string(runes[:width]))
			word = string(runes[width:])
		}
		switch {
		case current == "":
			current = word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= width:
			current += " " + word
		default:
			flush()
			current = word
		}
	}
	flush()
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
