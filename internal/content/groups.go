package content

import (
	"math/rand/v2"
	"strings"
)

const GroupSize = 5

// Groups returns k groups of GroupSize symbols drawn from charset, with no
// symbol repeated three or more times in a row. With a single symbol charset
// the constraint can't hold and k groups of that symbol are returned.
func Groups(rng *rand.Rand, charset string, k int) []string {
	symbols := uniqueRunes(charset)
	if k <= 0 || len(symbols) == 0 {
		return nil
	}
	if len(symbols) == 1 {
		group := strings.Repeat(string(symbols[0]), GroupSize)
		out := make([]string, k)
		for i := range out {
			out[i] = group
		}
		return out
	}

	seq := make([]rune, GroupSize*k)
	for i := range seq {
		seq[i] = symbols[rng.IntN(len(symbols))]
	}
	for i := 2; i < len(seq); i++ {
		if seq[i] == seq[i-1] && seq[i] == seq[i-2] {
			seq[i] = drawExcept(rng, symbols, seq[i-1])
		}
	}

	out := make([]string, 0, k)
	for i := 0; i < len(seq); i += GroupSize {
		out = append(out, string(seq[i:i+GroupSize]))
	}
	return out
}

func drawExcept(rng *rand.Rand, symbols []rune, not rune) rune {
	n := rng.IntN(len(symbols) - 1)
	for _, s := range symbols {
		if s == not {
			continue
		}
		if n == 0 {
			return s
		}
		n--
	}
	return not
}

func uniqueRunes(s string) []rune {
	seen := make(map[rune]bool, len(s))
	var out []rune
	for _, r := range s {
		if r == ' ' || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
