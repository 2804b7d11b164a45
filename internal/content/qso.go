package content

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed qso.yaml
var defaultQSOYAML []byte

// QSOData is the vocabulary of random QSOs.
type QSOData struct {
	Prefixes []string `yaml:"prefixes"`
	Names    []string `yaml:"names"`
	QTHs     []string `yaml:"qths"`
	Rigs     []string `yaml:"rigs"`
	Antennas []string `yaml:"antennas"`
	Powers   []string `yaml:"powers"`
	Weather  []string `yaml:"weather"`
}

// LoadQSOData parses a YAML corpus and checks that no list is empty.
func LoadQSOData(data []byte) (*QSOData, error) {
	var q QSOData
	if err := yaml.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parse qso corpus: %w", err)
	}
	lists := map[string][]string{
		"prefixes": q.Prefixes, "names": q.Names, "qths": q.QTHs, "rigs": q.Rigs,
		"antennas": q.Antennas, "powers": q.Powers, "weather": q.Weather,
	}
	for name, l := range lists {
		if len(l) == 0 {
			return nil, fmt.Errorf("qso corpus: %s is empty", name)
		}
	}
	return &q, nil
}

// DefaultQSOData returns the embedded corpus.
func DefaultQSOData() *QSOData {
	q, err := LoadQSOData(defaultQSOYAML)
	if err != nil {
		panic(err)
	}
	return q
}

func pick(rng *rand.Rand, l []string) string {
	return l[rng.IntN(len(l))]
}

// Callsign returns a random plausible callsign.
func (q *QSOData) Callsign(rng *rand.Rand) string {
	var b strings.Builder
	prefix := pick(rng, q.Prefixes)
	b.WriteString(prefix)
	last := prefix[len(prefix)-1]
	if last < '0' || last > '9' {
		b.WriteByte(byte('0' + rng.IntN(10)))
	}
	for n := 1 + rng.IntN(3); n > 0; n-- {
		b.WriteByte(byte('A' + rng.IntN(26)))
	}
	return b.String()
}

func rst(rng *rand.Rand) string {
	return fmt.Sprintf("5%d9", 5+rng.IntN(5))
}

// Random returns a two-over QSO between two random stations.
func (q *QSOData) Random(rng *rand.Rand) string {
	me, you := q.Callsign(rng), q.Callsign(rng)
	for you == me {
		you = q.Callsign(rng)
	}
	name, otherName := pick(rng, q.Names), pick(rng, q.Names)
	qth, otherQTH := pick(rng, q.QTHs), pick(rng, q.QTHs)
	temp := rng.IntN(36) - 5

	lines := []string{
		fmt.Sprintf("CQ CQ CQ DE %s %s K", me, me),
		fmt.Sprintf("%s DE %s %s K", me, you, you),
		fmt.Sprintf("%s DE %s = GM ES TNX FER CALL = UR RST %s %s = NAME %s %s = QTH %s %s = HW? %s DE %s <KN>",
			you, me, rst(rng), rst(rng), name, name, qth, qth, you, me),
		fmt.Sprintf("%s DE %s = R R TNX FB RPRT = UR RST %s = NAME %s = QTH %s = RIG %s PWR %s ANT %s = WX %s TEMP %dC = %s DE %s <KN>",
			me, you, rst(rng), otherName, otherQTH, pick(rng, q.Rigs), pick(rng, q.Powers), pick(rng, q.Antennas), pick(rng, q.Weather), temp, me, you),
		fmt.Sprintf("%s DE %s = TNX QSO DR %s = 73 ES GL = %s DE %s <SK>", you, me, otherName, you, me),
	}
	return strings.Join(lines, "\n")
}
