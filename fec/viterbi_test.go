package fec_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observe-l/convfec/fec"
)

// flipped encodes data with t, flips the given positions and returns the
// result as 0/1 valued soft inputs.
func flipped(t *testing.T, tr *fec.Trellis, data []uint8, terminate bool, pos ...int) []float64 {
	t.Helper()
	e, err := fec.NewConvEncoder(tr).Encode(data, terminate)
	require.NoError(t, err)
	for _, p := range pos {
		if p < 0 {
			p += len(e)
		}
		e[p] ^= 1
	}
	rx := make([]float64, len(e))
	for i, b := range e {
		rx[i] = float64(b)
	}
	return rx
}

func bipolar(bits []uint8) []float64 {
	out := make([]float64, len(bits))
	for i, b := range bits {
		out[i] = 2*float64(b) - 1
	}
	return out
}

func TestViterbiCorrectsErrors(t *testing.T) {
	data := []uint8{1, 0, 1, 0, 0, 1}
	want := []uint8{1, 0, 1, 0, 0, 1, 0, 0}
	cases := []struct {
		name  string
		gen   [][]int
		flips []int
	}{
		{"rate 1/2", genK3R2, []int{1, 15}},
		{"rate 1/3", [][]int{{1, 0, 0}, {1, 1, 1}, {1, 0, 1}}, []int{1, 2, 15}},
	}
	for _, tc := range cases {
		rx := flipped(t, mustTrellis(t, tc.gen, nil, 1), data, true, tc.flips...)
		for _, m := range []int{1, 2, 4} {
			dec := fec.NewViterbiDecoder(mustTrellis(t, tc.gen, nil, m))
			got, err := dec.Decode(rx, len(want))
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s radix %d", tc.name, 1<<m)

			info, err := dec.DecodeTerminated(rx, len(data))
			require.NoError(t, err)
			assert.Equal(t, data, info)
		}
	}
}

func TestViterbiRecursiveUnterminated(t *testing.T) {
	data := []uint8{1, 0, 1, 0, 0, 1}
	tr := mustTrellis(t, genK3R2, fbK3, 1)
	rx := flipped(t, tr, data, false, 1, -1)
	dec := fec.NewViterbiDecoder(tr)
	dec.Terminated = false
	got, err := dec.Decode(rx, len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestViterbiNoiseFreeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cases := []struct {
		name      string
		gen       [][]int
		fb        []int
		terminate bool
	}{
		{"K=4 feed-forward", [][]int{{1, 0, 1, 1}, {1, 1, 0, 1}}, nil, true},
		{"K=4 recursive", [][]int{{1, 0, 1, 1}, {1, 1, 0, 1}}, []int{0, 0, 1, 1}, false},
		{"K=7 feed-forward", [][]int{{1, 1, 1, 1, 0, 0, 1}, {1, 0, 1, 1, 0, 1, 1}}, nil, true},
		{"K=1 repetition", [][]int{{1}, {1}}, nil, true},
	}
	for _, tc := range cases {
		for _, m := range []int{1, 2, 4} {
			base := mustTrellis(t, tc.gen, tc.fb, 1)
			tr := mustTrellis(t, tc.gen, tc.fb, m)
			n := 64 - base.TailLen()
			if !tc.terminate {
				n = 64
			}
			data := make([]uint8, n)
			for i := range data {
				data[i] = uint8(rng.Intn(2))
			}
			e, err := fec.NewConvEncoder(base).Encode(data, tc.terminate)
			require.NoError(t, err)

			dec := fec.NewViterbiDecoder(tr)
			dec.Terminated = tc.terminate
			var got []uint8
			if tc.terminate {
				got, err = dec.DecodeTerminated(bipolar(e), n)
			} else {
				got, err = dec.Decode(bipolar(e), n)
			}
			require.NoError(t, err)
			assert.Equal(t, data, got, "%s radix %d", tc.name, 1<<m)
		}
	}
}

func TestViterbiUsageErrors(t *testing.T) {
	dec := fec.NewViterbiDecoder(mustTrellis(t, genK3R2, nil, 2))
	_, err := dec.Decode(make([]float64, 6), 3)
	assert.ErrorIs(t, err, fec.ErrUsage)
	_, err = dec.Decode(make([]float64, 6), 4)
	assert.ErrorIs(t, err, fec.ErrUsage)
	_, err = dec.Decode(make([]float64, 8), 4)
	assert.NoError(t, err)
}
