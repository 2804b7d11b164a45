package textproc

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
)

func TestNumberToWords(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"0":            "zero",
		"-0":           "zero",
		"1":            "uno",
		"-1":           "menouno",
		"19":           "diciannove",
		"21":           "ventuno",
		"28":           "ventotto",
		"22":           "ventidue",
		"100":          "cento",
		"101":          "centouno",
		"127":          "centoventisette",
		"200":          "duecento",
		"280":          "duecentottanta",
		"599":          "cinquecentonovantanove",
		"1000":         "mille",
		"2000":         "duemila",
		"127428":       "centoventisettemilaquattrocentoventotto",
		"127,428":      "centoventisette,quattrocentoventotto",
		"127.428":      "centoventisettemilaquattrocentoventotto",
		"127.428,7891": "centoventisettemilaquattrocentoventotto,settemilaottocentonovantuno",
		"127428,7891":  "centoventisettemilaquattrocentoventotto,settemilaottocentonovantuno",
		"1,1":          "uno,uno",
		"127.428,69":   "centoventisettemilaquattrocentoventotto,sessantanove",
		"-4,01":        "menoquattro,uno",
		"1,50":         "uno,cinque",
		"1000000":      "unmilione",
		"3000000":      "tremilioni",
		"1000000000":   "unmiliardo",
		"5000000001":   "cinquemiliardiuno",
	}
	for in, want := range cases {
		got, ok := NumberToWords(in)
		if !ok {
			t.Fatalf("NumberToWords(%q) ok = false", in)
		}
		if got != want {
			t.Fatalf("NumberToWords(%q) = %q, want %q", in, got, want)
		}
	}
	if _, ok := NumberToWords(strings.Repeat("9", 19)); ok {
		t.Fatalf("NumberToWords(19 digits) ok = true, want false")
	}
}

func TestFindNumbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{in: "no numbers here"},
		{in: "this is the n. 1 simple test", want: []string{"1"}},
		{in: "this is the n. +1 simple test", want: []string{"1"}},
		{in: "another -1 simple test", want: []string{"-1"}},
		{in: "more complex -4,01 test", want: []string{"-4,01"}},
		{in: "more complex +4,01 test 123,21", want: []string{"4,01", "123,21"}},
		{in: "more complex 123.124,01 test 123.456.789,211.0", want: []string{"123.124,01", "123.456.789,211", "0"}},
		{in: "1+22+333+22.333+22,333+4.444+55.555,5", want: []string{"1", "22", "333", "22.333", "22,333", "4.444", "55.555,5"}},
		{in: "22.333,22", want: []string{"22.333,22"}},
	}
	for _, tc := range cases {
		var got []string
		for _, m := range FindNumbers(tc.in) {
			if tc.in[m.Start:m.End] != m.Text {
				t.Fatalf("FindNumbers(%q) bounds mismatch for %q", tc.in, m.Text)
			}
			got = append(got, m.Text)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("FindNumbers(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExpandNumbers(t *testing.T) {
	t.Parallel()

	got := ExpandNumbers("127.428,7891")
	want := "127.428,7891 centoventisettemilaquattrocentoventotto,settemilaottocentonovantuno"
	if got != want {
		t.Fatalf("ExpandNumbers() = %q, want %q", got, want)
	}
	got = ExpandNumbers("qso at 21 on 7,030")
	want = "qso at 21 ventuno on 7,030 sette,tre"
	if got != want {
		t.Fatalf("ExpandNumbers() = %q, want %q", got, want)
	}
	if got := ExpandNumbers("nothing"); got != "nothing" {
		t.Fatalf("ExpandNumbers() = %q, want unchanged", got)
	}
}

func TestSimplify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Hello,   world!":       "Hello, world!",
		"caffè e perché":        "caffè e perché",
		"cafe\u0301":           "caf\u00e9",
		"a#b*c\n\td":            "a b c d",
		"<AR> |f400 ok":         "<AR> |f400 ok",
		"  emoji \U0001F642 here": "emoji here",
		"price: 10€ [approx]":   "price: 10 approx",
		"ß and ñ become blanks": "and become blanks",
	}
	for in, want := range cases {
		if got := Simplify(in); got != want {
			t.Fatalf("Simplify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldAccents(t *testing.T) {
	t.Parallel()

	if got := FoldAccents("Perché è già così, Ç"); got != "Perche e gia cosi, C" {
		t.Fatalf("FoldAccents() = %q", got)
	}
}

func sortedRunes(s string) string {
	r := []rune(strings.Join(strings.Fields(s), ""))
	slices.Sort(r)
	return string(r)
}

func TestShufflePreservesSymbols(t *testing.T) {
	t.Parallel()

	in := "the quick brown fox <AR> jumps over <SK>lazy dogs"
	for _, mode := range []string{ShuffleWords, ShuffleLetters, ShuffleBoth} {
		for seed := uint64(0); seed < 20; seed++ {
			rng := rand.New(rand.NewPCG(seed, seed))
			got := Shuffle(rng, in, mode)
			if sortedRunes(got) != sortedRunes(in) {
				t.Fatalf("Shuffle(%s) = %q changed the symbols", mode, got)
			}
			if len(strings.Fields(got)) != len(strings.Fields(in)) {
				t.Fatalf("Shuffle(%s) = %q changed the word count", mode, got)
			}
			if !strings.Contains(got, "<AR>") {
				t.Fatalf("Shuffle(%s) = %q split a prosign", mode, got)
			}
		}
	}
}

func TestShuffleWordsKeepsWords(t *testing.T) {
	t.Parallel()

	in := "alpha bravo charlie delta echo"
	rng := rand.New(rand.NewPCG(1, 2))
	got := strings.Fields(Shuffle(rng, in, ShuffleWords))
	want := strings.Fields(in)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("Shuffle(words) = %v, want a permutation of %v", got, want)
	}
}

func TestShuffleIsNotReversal(t *testing.T) {
	t.Parallel()

	in := "a b c d e f g h"
	seen := map[string]bool{}
	for seed := uint64(0); seed < 50; seed++ {
		seen[Shuffle(rand.New(rand.NewPCG(seed, 7)), in, ShuffleWords)] = true
	}
	if len(seen) < 10 {
		t.Fatalf("Shuffle(words) produced %d distinct orders over 50 seeds", len(seen))
	}
}

func TestApplyOrder(t *testing.T) {
	t.Parallel()

	got := Apply("  Però   21#  ", Options{Simplify: true, Fold: true, Numbers: true})
	if got != "Pero 21 ventuno" {
		t.Fatalf("Apply() = %q, want %q", got, "Pero 21 ventuno")
	}
	if got := Apply("a#b", Options{}); got != "a#b" {
		t.Fatalf("Apply() with no stages = %q, want unchanged", got)
	}
}

func TestExpandNumbersSkipsDirectives(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ciao |f400 mondo |w20 fine": "ciao |f400 mondo |w20 fine",
		"|N-3 cq 73":                 "|N-3 cq 73 settantatre",
		"5|f400":                     "5 cinque|f400",
		"a | 12":                     "a | 12 dodici",
	}
	for in, want := range cases {
		if got := ExpandNumbers(in); got != want {
			t.Fatalf("ExpandNumbers(%q) = %q, want %q", in, got, want)
		}
	}
	got := Apply("ciao |f400 mondo |w20 fine", Options{Simplify: true, Numbers: true})
	if got != "ciao |f400 mondo |w20 fine" {
		t.Fatalf("Apply() = %q, want directives untouched", got)
	}
}

func TestShuffleLettersKeepsDirectives(t *testing.T) {
	t.Parallel()

	in := "ciao |f400 mondo x|w20y"
	for seed := uint64(0); seed < 30; seed++ {
		got := Shuffle(rand.New(rand.NewPCG(seed, 3)), in, ShuffleLetters)
		fields := strings.Fields(got)
		if fields[1] != "|f400" {
			t.Fatalf("Shuffle(letters) = %q split the |f400 directive", got)
		}
		if !strings.Contains(fields[3], "|w20") {
			t.Fatalf("Shuffle(letters) = %q split the |w20 directive", got)
		}
		if sortedRunes(got) != sortedRunes(in) {
			t.Fatalf("Shuffle(letters) = %q changed the symbols", got)
		}
	}
}
