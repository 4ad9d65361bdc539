package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAWGNSigma(t *testing.T) {
	c, err := NewAWGN(0, 0.5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Sigma(), 1e-12)

	c, err = NewAWGN(10*math.Log10(2), 1.0/3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.75), c.Sigma(), 1e-12)

	_, err = NewAWGN(1, 0, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	_, err = NewAWGN(1, 0.5, nil)
	assert.Error(t, err)
}

func TestAWGNNoiseStatistics(t *testing.T) {
	c, err := NewAWGN(3, 0.5, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	const n = 200000
	y := c.Transmit(make([]uint8, n))
	var sum, sq float64
	for _, v := range y {
		sum += v
	}
	mean := sum / n
	for _, v := range y {
		sq += (v - mean) * (v - mean)
	}
	assert.InDelta(t, -1.0, mean, 0.01)
	assert.InDelta(t, c.Sigma(), math.Sqrt(sq/n), 0.01)
}

func TestAWGNDeterministic(t *testing.T) {
	bits := []uint8{1, 0, 1, 1, 0}
	a, _ := NewAWGN(2, 0.5, rand.New(rand.NewSource(9)))
	b, _ := NewAWGN(2, 0.5, rand.New(rand.NewSource(9)))
	assert.Equal(t, a.Transmit(bits), b.Transmit(bits))
}

func TestLLRAndHardDecision(t *testing.T) {
	c, err := NewAWGN(0, 0.5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -1, 0}, c.LLR([]float64{1, -0.5, 0}))

	bits := []uint8{1, 0, 0, 1}
	llr := HardLLR(bits)
	assert.Equal(t, []float64{1, -1, -1, 1}, llr)
	assert.Equal(t, bits, HardDecision(llr))
	assert.Equal(t, []uint8{0}, HardDecision([]float64{0}))

	assert.Equal(t, 2, BitErrors([]uint8{1, 0, 1}, []uint8{0, 0, 0, 1}))
}
