package textproc

import (
	"math/rand/v2"
	"strings"
)

// Shuffle permutes words, letters within words, or both. Prosigns such as
// <AR> are moved as a single symbol.
func Shuffle(rng *rand.Rand, text string, mode string) string {
	words := strings.Fields(text)
	switch mode {
	case ShuffleLetters, ShuffleBoth:
		for i, w := range words {
			words[i] = shuffleLetters(rng, w)
		}
	case ShuffleWords:
	default:
		return text
	}
	if mode == ShuffleWords || mode == ShuffleBoth {
		rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
	}
	return strings.Join(words, " ")
}

func shuffleLetters(rng *rand.Rand, word string) string {
	symbols := splitSymbols(word)
	rng.Shuffle(len(symbols), func(i, j int) { symbols[i], symbols[j] = symbols[j], symbols[i] })
	return strings.Join(symbols, "")
}

// splitSymbols splits a word into runes, keeping <...> prosigns and inline
// directives such as |f400 together.
func splitSymbols(word string) []string {
	var out []string
	runes := []rune(word)
	for i := 0; i < len(runes); i++ {
		if n := directiveLen(runes[i:]); n > 0 {
			out = append(out, string(runes[i:i+n]))
			i += n - 1
			continue
		}
		if runes[i] == '<' {
			if end := indexRune(runes[i+1:], '>'); end > 0 {
				out = append(out, string(runes[i:i+end+2]))
				i += end + 1
				continue
			}
		}
		out = append(out, string(runes[i]))
	}
	return out
}

func indexRune(rs []rune, r rune) int {
	for i, c := range rs {
		if c == r {
			return i
		}
	}
	return -1
}
