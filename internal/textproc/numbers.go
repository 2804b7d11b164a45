package textproc

import (
	"regexp"
	"strconv"
	"strings"
)

// '.' separates thousands and ',' separates decimals. A leading '+' is not
// part of the number.
var numberPattern = regexp.MustCompile(`-?,?\d+(\.\d\d\d)*,?\d*`)

const (
	maxIntegerDigits = 18
	maxDecimalDigits = 15
	numberWordsMinus = "meno"
	numberWordsZero  = "zero"
	numberWordsPoint = ","
)

var units = [...]string{
	"uno", "due", "tre", "quattro", "cinque",
	"sei", "sette", "otto", "nove", "dieci",
	"undici", "dodici", "tredici",
	"quattordici", "quindici", "sedici",
	"diciassette", "diciotto", "diciannove",
}

var tens = [...]string{
	"venti", "trenta", "quaranta",
	"cinquanta", "sessanta",
	"settanta", "ottanta", "novanta",
}

// NumberMatch is a numeric substring found by FindNumbers.
type NumberMatch struct {
	Start, End int
	Text       string
}

// FindNumbers returns the numeric substrings of text in order. Digits that
// belong to an inline directive such as |f400 are not numbers.
func FindNumbers(text string) []NumberMatch {
	idx := numberPattern.FindAllStringIndex(text, -1)
	spans := directiveSpans(text)
	out := make([]NumberMatch, 0, len(idx))
	for _, loc := range idx {
		if insideSpan(spans, loc[0], loc[1]) {
			continue
		}
		out = append(out, NumberMatch{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return out
}

// ExpandNumbers inserts the Italian words of every number right after it.
// Numbers too large to spell are left alone.
func ExpandNumbers(text string) string {
	matches := FindNumbers(text)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m.End])
		if words, ok := NumberToWords(m.Text); ok {
			b.WriteByte(' ')
			b.WriteString(words)
		}
		last = m.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// NumberToWords spells a number written with '.' thousands separators and a
// ',' decimal separator. The decimal digits are read as one integer, so
// "4,01" is "quattro,uno".
func NumberToWords(s string) (string, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "")
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, fracPart, _ := strings.Cut(s, ",")
	if strings.Contains(fracPart, ",") || !allDigits(intPart) || !allDigits(fracPart) || intPart+fracPart == "" {
		return "", false
	}
	intPart = strings.TrimLeft(intPart, "0")
	if len(intPart) > maxIntegerDigits {
		return "", false
	}
	if len(fracPart) > maxDecimalDigits {
		fracPart = fracPart[:maxDecimalDigits]
	}
	fracPart = strings.TrimRight(fracPart, "0")

	var n, frac uint64
	if intPart != "" {
		n, _ = strconv.ParseUint(intPart, 10, 64)
	}
	if fracPart != "" {
		frac, _ = strconv.ParseUint(fracPart, 10, 64)
	}

	var b strings.Builder
	if negative && (n != 0 || frac != 0) {
		b.WriteString(numberWordsMinus)
	}
	if n == 0 {
		b.WriteString(numberWordsZero)
	} else {
		b.WriteString(integerWords(n))
	}
	if frac != 0 {
		b.WriteString(numberWordsPoint)
		b.WriteString(integerWords(frac))
	}
	return b.String(), true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// integerWords returns "" for 0, so that compounds like "cento" have no tail.
func integerWords(n uint64) string {
	switch {
	case n == 0:
		return ""
	case n <= 19:
		return units[n-1]
	case n <= 99:
		word := tens[n/10-2]
		if t := n % 10; t == 1 || t == 8 {
			word = word[:len(word)-1]
		}
		return word + integerWords(n%10)
	case n <= 199:
		return "cento" + integerWords(n%100)
	case n <= 999:
		hundred := "cent"
		if (n%100)/10 != 8 {
			hundred += "o"
		}
		return integerWords(n/100) + hundred + integerWords(n%100)
	case n <= 1999:
		return "mille" + integerWords(n%1000)
	case n <= 999_999:
		return integerWords(n/1000) + "mila" + integerWords(n%1000)
	case n <= 1_999_999:
		return "unmilione" + integerWords(n%1_000_000)
	case n <= 999_999_999:
		return integerWords(n/1_000_000) + "milioni" + integerWords(n%1_000_000)
	case n <= 1_999_999_999:
		return "unmiliardo" + integerWords(n%1_000_000_000)
	default:
		return integerWords(n/1_000_000_000) + "miliardi" + integerWords(n%1_000_000_000)
	}
}
