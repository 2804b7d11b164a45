package settings

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/quailyquaily/text2cw/internal/cwerr"
)

const notANumber = "Hey ... this is not a number!!"

// IsNone reports whether raw is the literal none token, case-insensitively.
func IsNone(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), None)
}

// Optional accepts the none token in addition to whatever inner accepts.
func Optional(inner func(string) (string, error)) func(string) (string, error) {
	return func(raw string) (string, error) {
		if IsNone(raw) {
			return None, nil
		}
		return inner(raw)
	}
}

// IntRange accepts an integer in [min, max], bounds inclusive.
func IntRange(key, label string, min, max int) func(string) (string, error) {
	return func(raw string) (string, error) {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return "", &cwerr.ValidationError{Key: key, Reason: notANumber}
		}
		if n < min || n > max {
			return "", cwerr.Invalid(key, "Sorry - Valid %s is between %d and %d\nTry again", label, min, max)
		}
		return strconv.Itoa(n), nil
	}
}

// FloatRange accepts a decimal number in [min, max]. Both . and , are taken
// as decimal separator.
func FloatRange(key, label string, min, max float64) func(string) (string, error) {
	return func(raw string) (string, error) {
		s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", &cwerr.ValidationError{Key: key, Reason: notANumber}
		}
		if f < min || f > max {
			return "", cwerr.Invalid(key, "Sorry - Valid %s is between %s and %s\nTry again", label, formatFloat(min), formatFloat(max))
		}
		return formatFloat(f), nil
	}
}

// IntList accepts one to maxItems integers separated by commas or blanks,
// each in [min, max]. Order and duplicates are kept.
func IntList(key, label string, min, max, maxItems int) func(string) (string, error) {
	return func(raw string) (string, error) {
		fields := strings.FieldsFunc(raw, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
		})
		if len(fields) == 0 {
			return "", &cwerr.ValidationError{Key: key, Reason: notANumber}
		}
		if len(fields) > maxItems {
			return "", cwerr.Invalid(key, "Sorry - I can accept %d values at most\nTry again", maxItems)
		}
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return "", &cwerr.ValidationError{Key: key, Reason: notANumber}
			}
			if n < min || n > max {
				return "", cwerr.Invalid(key, "Sorry - Valid %s is between %d and %d\nTry again", label, min, max)
			}
			out = append(out, strconv.Itoa(n))
		}
		return strings.Join(out, ","), nil
	}
}

// IntPair accepts "min-max" with lo <= min <= max <= hi.
func IntPair(key, label string, lo, hi int) func(string) (string, error) {
	return func(raw string) (string, error) {
		a, b, ok := strings.Cut(strings.TrimSpace(raw), "-")
		if !ok {
			return "", cwerr.Invalid(key, "Hey ... please use the form min-max (e.g. 2-8)")
		}
		minN, err1 := strconv.Atoi(strings.TrimSpace(a))
		maxN, err2 := strconv.Atoi(strings.TrimSpace(b))
		if err1 != nil || err2 != nil {
			return "", &cwerr.ValidationError{Key: key, Reason: notANumber}
		}
		if minN < lo || maxN > hi || minN > maxN {
			return "", cwerr.Invalid(key, "Sorry - Valid %s is between %d and %d with min not above max\nTry again", label, lo, hi)
		}
		return fmt.Sprintf("%d-%d", minN, maxN), nil
	}
}

// Enum accepts one of choices, case-insensitively.
func Enum(key string, choices ...string) func(string) (string, error) {
	return func(raw string) (string, error) {
		v := strings.ToLower(strings.TrimSpace(raw))
		for _, c := range choices {
			if v == c {
				return c, nil
			}
		}
		return "", cwerr.Invalid(key, "Sorry - valid values are %s\nTry again", strings.Join(choices, ", "))
	}
}

// Bool accepts on/off and the usual spellings of yes and no.
func Bool(key string) func(string) (string, error) {
	return func(raw string) (string, error) {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "on", "yes", "y", "true", "1", "si", "sì":
			return "on", nil
		case "off", "no", "n", "false", "0":
			return "off", nil
		}
		return "", cwerr.Invalid(key, "Sorry - please answer on or off\nTry again")
	}
}

// Pattern accepts text matching re with a rune length in [1, maxLen].
func Pattern(key string, re *regexp.Regexp, hint string, maxLen int) func(string) (string, error) {
	return func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		if v == "" || !re.MatchString(v) {
			return "", cwerr.Invalid(key, "Hey ... this is not a valid %s!!\n%s", key, hint)
		}
		if utf8.RuneCountInString(v) > maxLen {
			return "", cwerr.Invalid(key, "Sorry - I can accept a %s of %d chars at most\nTry again", key, maxLen)
		}
		return v, nil
	}
}

// FreeText accepts any non-empty text of at most maxLen runes.
func FreeText(key string, maxLen int) func(string) (string, error) {
	return func(raw string) (string, error) {
		v := strings.Join(strings.Fields(raw), " ")
		if v == "" {
			return "", cwerr.Invalid(key, "Hey ... this is empty!!")
		}
		if utf8.RuneCountInString(v) > maxLen {
			return "", cwerr.Invalid(key, "Sorry - I can accept %d chars at most\nTry again", maxLen)
		}
		return v, nil
	}
}

// Charset accepts the symbols used by random content: letters, digits and
// the punctuation encodable in Morse. The canonical form is lowercase with
// duplicates and blanks removed, first occurrence order kept.
func Charset(key string, maxLen int) func(string) (string, error) {
	return func(raw string) (string, error) {
		seen := make(map[rune]bool)
		var b strings.Builder
		for _, r := range strings.ToLower(raw) {
			switch {
			case r == ' ' || r == '\t' || r == '\n':
				continue
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', strings.ContainsRune(morsePunctuation, r):
			default:
				return "", cwerr.Invalid(key, "Sorry - %q can't be sent in Morse\nUse letters, digits and %s", r, morsePunctuation)
			}
			if seen[r] {
				continue
			}
			seen[r] = true
			b.WriteRune(r)
		}
		out := b.String()
		if out == "" {
			return "", cwerr.Invalid(key, "Hey ... this is empty!!")
		}
		if len(seen) > maxLen {
			return "", cwerr.Invalid(key, "Sorry - I can accept %d symbols at most\nTry again", maxLen)
		}
		return out, nil
	}
}

const morsePunctuation = `.,:;?'!/()&=+-_"$@`

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
