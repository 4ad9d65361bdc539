package fec

import (
	"fmt"
	"time"
)

// SoftDecoder is a soft-input soft-output constituent decoder of a turbo
// code. *SISODecoder implements it.
type SoftDecoder interface {
	Decode(inU, inC []float64, nData int) (outU, outC []float64, err error)
}

// TurboObserver is notified once per TurboDecoder.Decode call. It may be
// called from several goroutines at once.
type TurboObserver interface {
	ObserveTurboDecode(iterations int, converged bool, elapsed time.Duration)
}

// Defaults applied to zero-valued TurboOptions fields.
const (
	DefaultTurboIterations = 6
	DefaultExtrinsicScale  = 11.0 / 16.0
	DefaultTurboPadding    = 3
)

// TurboOptions configures a TurboDecoder. Zero values select the defaults.
type TurboOptions struct {
	// Iterations is the maximum number of full (upper + lower) iterations.
	Iterations int
	// ExtrinsicScale multiplies the extrinsic LLRs passed between halves.
	ExtrinsicScale float64
	// ZeroPadding is the number of padding bits per stream, as set on the
	// TurboEncoder.
	ZeroPadding int
	// KnownZero is the a-priori LLR of the padded positions.
	KnownZero float64
	// Observer, if set, receives the outcome of every decode.
	Observer TurboObserver
}

func (o TurboOptions) withDefaults() TurboOptions {
	if o.Iterations <= 0 {
		o.Iterations = DefaultTurboIterations
	}
	if o.ExtrinsicScale == 0 {
		o.ExtrinsicScale = DefaultExtrinsicScale
	}
	if o.ZeroPadding <= 0 {
		o.ZeroPadding = DefaultTurboPadding
	}
	if o.KnownZero == 0 {
		o.KnownZero = DefaultMinusInf
	}
	return o
}

// TurboDecoder iteratively decodes a rate 1/3 parallel concatenated code:
// a systematic stream and two parity streams, the second one computed on
// interleaved data. It holds no per-call state.
type TurboDecoder struct {
	il    *Interleaver
	upper SoftDecoder
	lower SoftDecoder
	opts  TurboOptions
}

// NewTurboDecoder returns a decoder whose upper half works on the parity
// stream of the data in order and whose lower half works on the parity of
// the interleaved data.
func NewTurboDecoder(il *Interleaver, upper, lower SoftDecoder, opts TurboOptions) (*TurboDecoder, error) {
	if il == nil || upper == nil || lower == nil {
		return nil, fmt.Errorf("%w: turbo decoder needs an interleaver and two constituent decoders", ErrConfiguration)
	}
	return &TurboDecoder{il: il, upper: upper, lower: lower, opts: opts.withDefaults()}, nil
}

// NewConstituentDecoder returns a SISO decoder set up for one half of a
// turbo code: zero-padded streams start in state 0 but may end anywhere.
func NewConstituentDecoder(t *Trellis) *SISODecoder {
	d := NewSISODecoder(t)
	d.BackwardInit = false
	return d
}

// Options returns the options in effect, defaults applied.
func (td *TurboDecoder) Options() TurboOptions { return td.opts }

// Decode runs up to Iterations iterations over the systematic LLRs ys and
// the parity LLRs yp1 and yp2, all including the padded positions. With a
// non-nil ref, errs[i] is the number of bit errors after iteration i and
// the loop stops at the first error-free iteration; remaining entries are
// zero. Without ref, errs is all zeros.
func (td *TurboDecoder) Decode(ys, yp1, yp2 []float64, ref []uint8) (bits []uint8, errs []int, err error) {
	start := time.Now()
	nzp := td.opts.ZeroPadding
	n := len(ys) - nzp
	if n != td.il.Len() {
		return nil, nil, fmt.Errorf("%w: %d systematic LLRs minus %d padding does not match interleaver length %d",
			ErrUsage, len(ys), nzp, td.il.Len())
	}
	if ref != nil && len(ref) != n {
		return nil, nil, fmt.Errorf("%w: reference has %d bits, want %d", ErrUsage, len(ref), n)
	}

	scale := td.opts.ExtrinsicScale
	nData := len(ys)
	sys2 := make([]float64, nData)
	if _, err := td.interleaveInto(sys2, ys[:n]); err != nil {
		return nil, nil, err
	}
	fill(sys2[n:], td.opts.KnownZero)

	lext := make([]float64, n)
	la := make([]float64, nData)
	inU := make([]float64, nData)
	hard := make([]uint8, n)
	errs = make([]int, td.opts.Iterations)
	iterations, converged := 0, false

	for it := 0; it < td.opts.Iterations; it++ {
		iterations++

		// upper half, natural order
		dei, err := td.il.Deinterleave(lext)
		if err != nil {
			return nil, nil, err
		}
		copy(la, dei)
		fill(la[n:], td.opts.KnownZero)
		for i := range inU {
			inU[i] = ys[i] + la[i]
		}
		o1, _, err := td.upper.Decode(inU, yp1, nData)
		if err != nil {
			return nil, nil, fmt.Errorf("upper decoder: %w", err)
		}
		if len(o1) < n {
			return nil, nil, fmt.Errorf("%w: upper decoder returned %d data LLRs, want at least %d", ErrUsage, len(o1), n)
		}
		for i := 0; i < n; i++ {
			lext[i] = scale * (o1[i] - la[i] - ys[i])
		}

		// lower half, interleaved order
		if _, err := td.interleaveInto(la, lext); err != nil {
			return nil, nil, err
		}
		fill(la[n:], td.opts.KnownZero)
		for i := range inU {
			inU[i] = sys2[i] + la[i]
		}
		o2, _, err := td.lower.Decode(inU, yp2, nData)
		if err != nil {
			return nil, nil, fmt.Errorf("lower decoder: %w", err)
		}
		if len(o2) < n {
			return nil, nil, fmt.Errorf("%w: lower decoder returned %d data LLRs, want at least %d", ErrUsage, len(o2), n)
		}
		for i := 0; i < n; i++ {
			lext[i] = scale * (o2[i] - la[i] - sys2[i])
			hard[i] = 0
			if o2[i] > 0 {
				hard[i] = 1
			}
		}

		if bits, err = td.il.DeinterleaveBits(hard); err != nil {
			return nil, nil, err
		}
		if ref != nil {
			errs[it] = hamming(bits, ref)
			if errs[it] == 0 {
				converged = true
				break
			}
		}
	}
	if td.opts.Observer != nil {
		td.opts.Observer.ObserveTurboDecode(iterations, converged, time.Since(start))
	}
	return bits, errs, nil
}

// interleaveInto writes Interleave(src) into dst[:len(src)].
func (td *TurboDecoder) interleaveInto(dst, src []float64) ([]float64, error) {
	v, err := td.il.Interleave(src)
	if err != nil {
		return nil, err
	}
	copy(dst, v)
	return dst, nil
}

func hamming(a, b []uint8) int {
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}
