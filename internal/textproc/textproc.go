// Package textproc rewrites message text before it is sent to the renderer.
//
// The stages run in a fixed order: Simplify, FoldAccents, ExpandNumbers and
// Shuffle. Each one is a pure function and can be toggled independently.
package textproc

import (
	"math/rand/v2"
	"strings"
)

// Shuffle modes.
const (
	ShuffleNothing = "nothing"
	ShuffleWords   = "words"
	ShuffleLetters = "letters"
	ShuffleBoth    = "both"
)

type Options struct {
	Simplify bool
	Fold     bool
	Numbers  bool
	// Shuffle is one of the Shuffle* modes. Empty means ShuffleNothing.
	Shuffle string
	// Rand is required when Shuffle is not ShuffleNothing.
	Rand *rand.Rand
}

// Apply runs the enabled stages in order.
func Apply(text string, opts Options) string {
	if opts.Simplify {
		text = Simplify(text)
	}
	if opts.Fold {
		text = FoldAccents(text)
	}
	if opts.Numbers {
		text = ExpandNumbers(text)
	}
	if opts.Shuffle != "" && opts.Shuffle != ShuffleNothing && opts.Rand != nil {
		text = Shuffle(opts.Rand, text, opts.Shuffle)
	}
	return text
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// directiveLen returns the length of the inline renderer directive at the
// start of rs, like |f400 or |N-3, or 0 when there is none. Directives are
// handed to the renderer unchanged.
func directiveLen(rs []rune) int {
	if len(rs) < 3 || rs[0] != '|' || !isASCIILetter(rs[1]) {
		return 0
	}
	i := 2
	if rs[i] == '-' {
		i++
	}
	start := i
	for i < len(rs) && rs[i] >= '0' && rs[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	return i
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// directiveSpans returns the byte ranges of the directives in text.
// Directives are ASCII, so rune and byte lengths agree.
func directiveSpans(text string) [][2]int {
	var spans [][2]int
	for i := strings.IndexByte(text, '|'); i >= 0; {
		n := directiveLen([]rune(text[i:]))
		if n > 0 {
			spans = append(spans, [2]int{i, i + n})
		} else {
			n = 1
		}
		next := strings.IndexByte(text[i+n:], '|')
		if next < 0 {
			break
		}
		i += n + next
	}
	return spans
}

func insideSpan(spans [][2]int, start, end int) bool {
	for _, sp := range spans {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}
