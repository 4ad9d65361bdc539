package dropper

import (
	"math/rand"
)

// Flipper injects bit errors into a block in place and reports how many
// bits it flipped.
type Flipper interface {
	Flip(bits []uint8) int
}

// Bernoulli implements a simple u<p flip decision per bit.
type Bernoulli struct {
	p   float64
	rng *rand.Rand
}

func New(p float64, rng *rand.Rand) *Bernoulli { return &Bernoulli{p: p, rng: rng} }

// Drop draws one decision.
func (b *Bernoulli) Drop() bool {
	if b.p <= 0 {
		return false
	}
	if b.p >= 1 {
		return true
	}
	return b.rng.Float64() < b.p
}

func (b *Bernoulli) Flip(bits []uint8) int {
	n := 0
	for i := range bits {
		if b.Drop() {
			bits[i] ^= 1
			n++
		}
	}
	return n
}

// Periodic flips every Every-th bit starting at Offset.
type Periodic struct {
	Every  int
	Offset int
}

func (p Periodic) Flip(bits []uint8) int {
	if p.Every <= 0 || p.Offset < 0 {
		return 0
	}
	n := 0
	for i := p.Offset; i < len(bits); i += p.Every {
		bits[i] ^= 1
		n++
	}
	return n
}
