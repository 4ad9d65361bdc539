package fec

import "fmt"

// SISODecoder is a soft-input soft-output max-log-MAP (BCJR) decoder. It
// returns LLRs for both the data bits and the encoded bits of a block.
type SISODecoder struct {
	trellis *Trellis

	// ForwardInit assumes the block starts in state 0.
	ForwardInit bool
	// BackwardInit assumes the block ends in state 0, which holds for
	// zero-terminated feed-forward codes.
	BackwardInit bool
	// RemoveTail drops the K-1 termination bits from the data LLRs.
	RemoveTail bool
	// MinusInf is the metric of excluded states and the starting value of
	// every soft-output maximum.
	MinusInf float64
}

// NewSISODecoder returns a decoder for a trellis that starts and ends in
// state 0.
func NewSISODecoder(t *Trellis) *SISODecoder {
	return &SISODecoder{
		trellis:      t,
		ForwardInit:  true,
		BackwardInit: true,
		MinusInf:     DefaultMinusInf,
	}
}

// Trellis returns the trellis the decoder runs on.
func (d *SISODecoder) Trellis() *Trellis { return d.trellis }

// Decode runs the forward and backward recursions. inU holds one LLR per
// data bit (a-priori plus systematic channel information), inC one LLR per
// encoded bit; nData must equal len(inU) and be a whole number of stages.
// outU has nData entries (nData-(K-1) with RemoveTail), outC matches inC.
func (d *SISODecoder) Decode(inU, inC []float64, nData int) (outU, outC []float64, err error) {
	t := d.trellis
	wu, wc, ns := t.DataWidth(), t.CodeWidth(), t.NumStates()
	if nData < 0 || nData%wu != 0 {
		return nil, nil, fmt.Errorf("%w: %d data bits is not a multiple of the stage width %d", ErrUsage, nData, wu)
	}
	if len(inU) != nData {
		return nil, nil, fmt.Errorf("%w: got %d data LLRs, want %d", ErrUsage, len(inU), nData)
	}
	stages := nData / wu
	if len(inC) != stages*wc {
		return nil, nil, fmt.Errorf("%w: got %d encoded LLRs, want %d for %d stages", ErrUsage, len(inC), stages*wc, stages)
	}

	init := d.initMetrics(d.ForwardInit)
	gamma := make([]float64, t.NumBranches())

	// alpha[i*ns+j] is the forward metric of state j after stage i
	alpha := make([]float64, stages*ns)
	prev := init
	for i := 0; i < stages; i++ {
		stageGamma(t, inU[i*wu:(i+1)*wu], inC[i*wc:(i+1)*wc], gamma)
		cur := alpha[i*ns : (i+1)*ns]
		for j := 0; j < ns; j++ {
			branches := t.PrevBranches(j)
			best := prev[t.PrevState(branches[0])] + gamma[branches[0]]
			for _, b := range branches[1:] {
				if m := prev[t.PrevState(b)] + gamma[b]; m > best {
					best = m
				}
			}
			cur[j] = best
		}
		prev = cur
	}

	outU = make([]float64, nData)
	outC = make([]float64, stages*wc)
	beta := d.initMetrics(d.BackwardInit)
	nextBeta := make([]float64, ns)
	// max over branches with bit == 0 at [2n], bit == 1 at [2n+1]
	maxU := make([]float64, 2*wu)
	maxC := make([]float64, 2*wc)
	for i := stages - 1; i >= 0; i-- {
		stageGamma(t, inU[i*wu:(i+1)*wu], inC[i*wc:(i+1)*wc], gamma)
		a := init
		if i > 0 {
			a = alpha[(i-1)*ns : i*ns]
		}
		fill(maxU, d.MinusInf)
		fill(maxC, d.MinusInf)
		for j := 0; j < ns; j++ {
			branches := t.NextBranches(j)
			var best float64
			for k, b := range branches {
				sum := beta[t.NextState(b)] + gamma[b]
				if k == 0 || sum > best {
					best = sum
				}
				total := sum + a[j]
				for n, bit := range t.EncodedBits(b) {
					if idx := 2*n + int(bit); total > maxC[idx] {
						maxC[idx] = total
					}
				}
				for n, bit := range t.DataBits(b) {
					if idx := 2*n + int(bit); total > maxU[idx] {
						maxU[idx] = total
					}
				}
			}
			nextBeta[j] = best
		}
		beta, nextBeta = nextBeta, beta
		for n := 0; n < wu; n++ {
			outU[i*wu+n] = maxU[2*n+1] - maxU[2*n]
		}
		for n := 0; n < wc; n++ {
			outC[i*wc+n] = maxC[2*n+1] - maxC[2*n]
		}
	}
	if d.RemoveTail {
		outU = StripTail(outU, t.TailLen())
	}
	return outU, outC, nil
}

// DecodeWithPrior adds the systematic channel LLRs ys and the a-priori LLRs
// la before decoding.
func (d *SISODecoder) DecodeWithPrior(ys, la, inC []float64, nData int) ([]float64, []float64, error) {
	if len(ys) != len(la) {
		return nil, nil, fmt.Errorf("%w: %d systematic LLRs but %d a-priori LLRs", ErrUsage, len(ys), len(la))
	}
	inU := make([]float64, len(ys))
	for i := range ys {
		inU[i] = ys[i] + la[i]
	}
	return d.Decode(inU, inC, nData)
}

func (d *SISODecoder) initMetrics(known bool) []float64 {
	v := make([]float64, d.trellis.NumStates())
	if known {
		for j := 1; j < len(v); j++ {
			v[j] = d.MinusInf
		}
	}
	return v
}

// stageGamma fills gamma[b] with the branch metric of b: the coded LLRs at
// its 1-valued output positions plus the data LLRs at its 1-valued inputs.
func stageGamma(t *Trellis, u, c []float64, gamma []float64) {
	for b := range gamma {
		var m float64
		for l, bit := range t.EncodedBits(b) {
			if bit == 1 {
				m += c[l]
			}
		}
		for l, bit := range t.DataBits(b) {
			if bit == 1 {
				m += u[l]
			}
		}
		gamma[b] = m
	}
}

func fill(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}
