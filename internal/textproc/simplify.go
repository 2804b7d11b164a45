package textproc

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Punctuation the renderer can send, plus prosign delimiters and the pipe
// used by inline renderer directives.
const allowedPunct = `.,:;?'!/()&=+-_"$@<>|`

// Accented letters that have a Morse code of their own.
const allowedAccents = "àèéìòùçÀÈÉÌÒÙÇ"

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r < 0x80:
		return strings.ContainsRune(allowedPunct, r)
	default:
		return strings.ContainsRune(allowedAccents, r)
	}
}

// Simplify replaces every rune that can't be sent with a blank and collapses
// whitespace runs.
func Simplify(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return collapseSpaces(b.String())
}
