// Package dice provides the seeded roller used for initiative roll-offs.
//
// A Roller built from the same seed produces the same sequence, which keeps
// tie rolls reproducible in tests and when a seed is pinned in configuration.
package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Roller rolls dice from a seeded source.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a roller seeded with seed.
func New(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRandom returns a roller seeded from crypto/rand.
func NewRandom() (*Roller, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// Roll returns a value in [1, sides]. Non-positive sides return 0.
func (r *Roller) Roll(sides int) int {
	if sides <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return 1 + r.rng.Intn(sides)
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
