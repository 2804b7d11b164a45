package content

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/quailyquaily/text2cw/internal/cwerr"
)

// Dictionary is a word list, one uppercase entry per line of the source.
type Dictionary struct {
	words []string
}

// LoadDictionary reads one word per line. Lines starting with '#' are
// comments.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		word := strings.ToUpper(strings.TrimSpace(line))
		if word == "" {
			continue
		}
		d.words = append(d.words, word)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return d, nil
}

func OpenDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return LoadDictionary(f)
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Anagrams returns the entries made only of symbols in chars with a length in
// [minLen, maxLen]. A bound <= 0 is not enforced. It fails with
// cwerr.ErrNotFound when nothing matches.
func (d *Dictionary) Anagrams(chars string, minLen, maxLen int) ([]string, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: no dictionary loaded", cwerr.ErrNotFound)
	}
	allowed := make(map[rune]bool)
	for _, r := range strings.ToUpper(chars) {
		allowed[r] = true
	}
	var out []string
	for _, w := range d.words {
		n := utf8.RuneCountInString(w)
		if (minLen > 0 && n < minLen) || (maxLen > 0 && n > maxLen) {
			continue
		}
		if onlyAllowed(w, allowed) {
			out = append(out, w)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no word of %d-%d symbols from %q", cwerr.ErrNotFound, minLen, maxLen, chars)
	}
	return out, nil
}

func onlyAllowed(w string, allowed map[rune]bool) bool {
	for _, r := range w {
		if !allowed[r] {
			return false
		}
	}
	return true
}

// Pick draws n entries uniformly. Entries are not repeated unless there are
// fewer than n of them.
func Pick(rng *rand.Rand, entries []string, n int) []string {
	if n <= 0 || len(entries) == 0 {
		return nil
	}
	if n > len(entries) {
		out := make([]string, n)
		for i := range out {
			out[i] = entries[rng.IntN(len(entries))]
		}
		return out
	}
	perm := rng.Perm(len(entries))[:n]
	out := make([]string, n)
	for i, p := range perm {
		out[i] = entries[p]
	}
	return out
}
