package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// AWGN is a BPSK channel with additive white Gaussian noise. Bit b is sent
// as 2b-1, so positive received values favour 1.
type AWGN struct {
	ebn0  float64
	sigma float64
	rng   *rand.Rand
}

// NewAWGN returns a channel for the given Eb/N0 in dB and code rate (data
// bits per transmitted bit).
func NewAWGN(ebn0dB, rate float64, rng *rand.Rand) (*AWGN, error) {
	if rate <= 0 || rate > 1 {
		return nil, fmt.Errorf("sim: code rate %g outside (0, 1]", rate)
	}
	if rng == nil {
		return nil, fmt.Errorf("sim: nil random source")
	}
	ebn0 := math.Pow(10, ebn0dB/10)
	return &AWGN{
		ebn0:  ebn0,
		sigma: math.Sqrt(1 / (2 * rate * ebn0)),
		rng:   rng,
	}, nil
}

// Sigma returns the noise standard deviation.
func (c *AWGN) Sigma() float64 { return c.sigma }

// Transmit modulates bits and adds noise.
func (c *AWGN) Transmit(bits []uint8) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = 2*float64(b) - 1 + c.sigma*c.rng.NormFloat64()
	}
	return out
}

// LLR converts received values to log-likelihood ratios, 2y/sigma^2.
func (c *AWGN) LLR(y []float64) []float64 {
	s := 2 / (c.sigma * c.sigma)
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = s * v
	}
	return out
}

// HardLLR maps bits to ±1, the noise-free channel output.
func HardLLR(bits []uint8) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = 2*float64(b) - 1
	}
	return out
}

// HardDecision slices LLRs at zero.
func HardDecision(llr []float64) []uint8 {
	out := make([]uint8, len(llr))
	for i, v := range llr {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}

// BitErrors counts positions where a and b differ, over the shorter length.
func BitErrors(a, b []uint8) int {
	n := min(len(a), len(b))
	e := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			e++
		}
	}
	return e
}
