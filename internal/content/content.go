// Package content generates exercise text: random groups of five, words
// picked from a dictionary and random QSOs.
//
// Every generator takes its own *rand.Rand so that concurrent calls never
// share random state and a seed reproduces the same output.
package content

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// NewRand returns a generator reproducible from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomSeed returns a seed for a one-shot generator.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(b[:])
}
