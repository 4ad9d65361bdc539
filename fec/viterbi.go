package fec

import "fmt"

// ViterbiDecoder is a maximum-likelihood decoder for a Trellis. Received
// values are LLRs (positive means 1); hard bits mapped to ±1 work as well.
//
// Exact ties in compare-select keep the first branch listed by
// PrevBranches, i.e. the lower branch index.
type ViterbiDecoder struct {
	trellis *Trellis

	// Terminated starts traceback in state 0. Otherwise it starts in the
	// state with the best final metric.
	Terminated bool
	// MinusInf is the initial metric of every state but 0.
	MinusInf float64
}

// NewViterbiDecoder returns a decoder for a zero-terminated trellis.
func NewViterbiDecoder(t *Trellis) *ViterbiDecoder {
	return &ViterbiDecoder{trellis: t, Terminated: true, MinusInf: DefaultMinusInf}
}

// Decode returns the nData most likely data bits for rx, which must hold
// nData/DataWidth stages of CodeWidth LLRs each. Termination bits are part
// of nData and of the result; see DecodeTerminated.
func (v *ViterbiDecoder) Decode(rx []float64, nData int) ([]uint8, error) {
	t := v.trellis
	wu, wc, ns, fan := t.DataWidth(), t.CodeWidth(), t.NumStates(), t.Fan()
	if nData < 0 || nData%wu != 0 {
		return nil, fmt.Errorf("%w: %d data bits is not a multiple of the stage width %d", ErrUsage, nData, wu)
	}
	stages := nData / wu
	if len(rx) != stages*wc {
		return nil, fmt.Errorf("%w: got %d LLRs, want %d for %d stages", ErrUsage, len(rx), stages*wc, stages)
	}

	metrics := make([]float64, ns)
	next := make([]float64, ns)
	for j := 1; j < ns; j++ {
		metrics[j] = v.MinusInf
	}
	// decisions[i*ns+j] is the index into PrevBranches(j) of the survivor
	decisions := make([]uint8, stages*ns)
	bm := make([]float64, t.NumBranches())

	for i := 0; i < stages; i++ {
		branchMetrics(t, rx[i*wc:(i+1)*wc], bm)
		for j := 0; j < ns; j++ {
			branches := t.PrevBranches(j)
			best := metrics[t.PrevState(branches[0])] + bm[branches[0]]
			winner := 0
			for k := 1; k < fan; k++ {
				b := branches[k]
				if m := metrics[t.PrevState(b)] + bm[b]; m > best {
					best, winner = m, k
				}
			}
			next[j] = best
			decisions[i*ns+j] = uint8(winner)
		}
		metrics, next = next, metrics
	}

	state := 0
	if !v.Terminated {
		for j := 1; j < ns; j++ {
			if metrics[j] > metrics[state] {
				state = j
			}
		}
	}
	out := make([]uint8, nData)
	for i := stages - 1; i >= 0; i-- {
		b := t.PrevBranches(state)[decisions[i*ns+state]]
		copy(out[i*wu:], t.DataBits(b))
		state = t.PrevState(b)
	}
	return out, nil
}

// DecodeTerminated decodes a zero-terminated block of nInfo information
// bits and returns them without the termination bits.
func (v *ViterbiDecoder) DecodeTerminated(rx []float64, nInfo int) ([]uint8, error) {
	tail := v.trellis.TailLen()
	out, err := v.Decode(rx, nInfo+tail)
	if err != nil {
		return nil, err
	}
	return StripTail(out, tail), nil
}

// branchMetrics fills bm[b] with the sum of the stage LLRs at the positions
// where branch b emits a 1.
func branchMetrics(t *Trellis, llr []float64, bm []float64) {
	for b := range bm {
		var m float64
		for l, bit := range t.EncodedBits(b) {
			if bit == 1 {
				m += llr[l]
			}
		}
		bm[b] = m
	}
}
