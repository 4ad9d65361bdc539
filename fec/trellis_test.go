package fec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/observe-l/convfec/fec"
)

var (
	genK3R2 = [][]int{{1, 0, 0}, {1, 1, 1}}
	fbK3    = []int{0, 0, 1}
)

func TestDefinitionFeedForward(t *testing.T) {
	d, err := fec.NewDefinition(genK3R2, nil)
	require.NoError(t, err)
	assert.Equal(t, fec.FeedForward, d.Kind())
	assert.Equal(t, 3, d.K())
	assert.Equal(t, 4, d.NumStates())
	assert.Equal(t, 8, d.NumBranches())
	assert.Equal(t, 2, d.Rate())

	assert.Equal(t, [2]int{0, 1}, d.NextBranches(0))
	assert.Equal(t, [2]int{2, 3}, d.NextBranches(1))
	assert.Equal(t, [2]int{1, 5}, d.PrevBranches(1))
	assert.Equal(t, 0, d.NextState(4))
	assert.Equal(t, 2, d.NextState(2))
	assert.Equal(t, 3, d.PrevState(6))
	assert.Equal(t, []uint8{1, 0}, d.EncodedBits(3))
	assert.Equal(t, []uint8{0, 1}, d.EncodedBits(4))
	assert.Equal(t, uint8(1), d.DataBit(1))
	assert.Equal(t, uint8(0), d.DataBit(6))
}

func TestDefinitionRecursive(t *testing.T) {
	d, err := fec.NewDefinition(genK3R2, fbK3)
	require.NoError(t, err)
	assert.Equal(t, fec.Recursive, d.Kind())
	assert.Equal(t, "recursive", d.Kind().String())

	assert.Equal(t, uint8(1), d.DataBit(6))
	assert.Equal(t, uint8(1), d.DataBit(4))
	assert.Equal(t, uint8(0), d.DataBit(2))
	assert.Equal(t, uint8(0), d.DataBit(7))

	// DataBit inverts NextBranch for every state and input
	for s := 0; s < d.NumStates(); s++ {
		for dat := 0; dat < 2; dat++ {
			b := d.NextBranch(s, dat)
			assert.Equal(t, s, d.PrevState(b))
			assert.Equal(t, uint8(dat), d.DataBit(b), "state %d data %d", s, dat)
		}
	}

	tr := fec.NewTrellis(d)
	assert.Equal(t, 4, tr.NextBranches(2)[1])
}

func TestDefinitionErrors(t *testing.T) {
	long := make([]int, 25)
	for i := range long {
		long[i] = 1
	}
	cases := []struct {
		name string
		gen  [][]int
		fb   []int
	}{
		{"no rows", nil, nil},
		{"empty row", [][]int{{}}, nil},
		{"ragged rows", [][]int{{1, 0}, {1}}, nil},
		{"non-binary tap", [][]int{{1, 2}}, nil},
		{"too long", [][]int{long}, nil},
		{"feedback length", genK3R2, []int{0, 1}},
		{"non-binary feedback", genK3R2, []int{0, 3, 1}},
		{"feedback taps bit 0", genK3R2, []int{1, 0, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fec.NewDefinition(tc.gen, tc.fb)
			require.ErrorIs(t, err, fec.ErrConfiguration)
		})
	}
}

func TestTrellisMatchesDefinition(t *testing.T) {
	for _, fb := range [][]int{nil, fbK3} {
		d, err := fec.NewDefinition([][]int{{1, 0, 1, 1}, {1, 1, 0, 1}}, extendFeedback(fb, 4))
		require.NoError(t, err)
		tr := fec.NewTrellis(d)
		again := fec.NewTrellis(d)
		require.Equal(t, d.NumBranches(), tr.NumBranches())
		for b := 0; b < tr.NumBranches(); b++ {
			assert.Equal(t, d.NextState(b), tr.NextState(b))
			assert.Equal(t, d.PrevState(b), tr.PrevState(b))
			assert.Equal(t, d.EncodedBits(b), tr.EncodedBits(b))
			assert.Equal(t, []uint8{d.DataBit(b)}, tr.DataBits(b))
			assert.Equal(t, tr.EncodedBits(b), again.EncodedBits(b))
		}
		for s := 0; s < tr.NumStates(); s++ {
			nb := d.NextBranches(s)
			pb := d.PrevBranches(s)
			assert.Equal(t, pb[:], tr.PrevBranches(s))
			for dat := 0; dat < 2; dat++ {
				assert.Equal(t, d.NextBranch(s, dat), tr.BranchFor(s, dat))
				assert.Contains(t, nb[:], tr.BranchFor(s, dat))
			}
		}
	}
}

// extendFeedback widens a K=3 feedback vector to k taps, nil stays nil.
func extendFeedback(fb []int, k int) []int {
	if fb == nil {
		return nil
	}
	out := make([]int, k)
	copy(out, fb)
	return out
}

func TestReducedTrellisConsistency(t *testing.T) {
	for _, fb := range [][]int{nil, fbK3} {
		d, err := fec.NewDefinition(genK3R2, fb)
		require.NoError(t, err)
		for _, m := range []int{1, 2, 3, 4} {
			tr, err := fec.NewReducedTrellis(d, m)
			require.NoError(t, err)
			assert.Equal(t, m, tr.Reduction())
			assert.Equal(t, 1<<m, tr.Fan())
			assert.Equal(t, m, tr.DataWidth())
			assert.Equal(t, 2*m, tr.CodeWidth())
			assert.Equal(t, d.NumStates()<<m, tr.NumBranches())
			for s := 0; s < tr.NumStates(); s++ {
				seen := map[int]bool{}
				for u := 0; u < tr.Fan(); u++ {
					b := tr.BranchFor(s, u)
					assert.Equal(t, s, tr.PrevState(b))
					seen[b] = true
					// the data bits of the branch spell out u, MSB first
					sym := 0
					for _, bit := range tr.DataBits(b) {
						sym = sym<<1 | int(bit)
					}
					assert.Equal(t, u, sym, "m=%d state %d", m, s)
				}
				assert.Len(t, seen, tr.Fan())
				for _, b := range tr.PrevBranches(s) {
					assert.Equal(t, s, tr.NextState(b))
				}
			}
		}
	}
}

func TestReducedTrellisErrors(t *testing.T) {
	d, err := fec.NewDefinition(genK3R2, nil)
	require.NoError(t, err)
	for _, m := range []int{0, -1, 9} {
		_, err := fec.NewReducedTrellis(d, m)
		assert.ErrorIs(t, err, fec.ErrConfiguration, "m=%d", m)
	}
	_, err = fec.NewReducedTrellis(nil, 1)
	assert.ErrorIs(t, err, fec.ErrConfiguration)
}
