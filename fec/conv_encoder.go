package fec

import "fmt"

// ConvEncoder steps a single register state through a Trellis.
type ConvEncoder struct {
	trellis *Trellis
	state   int
}

// NewConvEncoder returns an encoder in state 0.
func NewConvEncoder(t *Trellis) *ConvEncoder {
	return &ConvEncoder{trellis: t}
}

// Reset returns the encoder to state 0.
func (e *ConvEncoder) Reset() { e.state = 0 }

// State returns the current register state.
func (e *ConvEncoder) State() int { return e.state }

// Step consumes one data symbol of DataWidth bits (first bit in time is the
// most significant) and returns the stage's encoded bits.
func (e *ConvEncoder) Step(symbol int) ([]uint8, error) {
	if symbol < 0 || symbol >= e.trellis.Fan() {
		return nil, fmt.Errorf("%w: symbol %d outside [0, %d)", ErrUsage, symbol, e.trellis.Fan())
	}
	b := e.trellis.BranchFor(e.state, symbol)
	e.state = e.trellis.NextState(b)
	return e.trellis.EncodedBits(b), nil
}

// Encode resets the encoder and encodes data. With zeroTerminate, K-1 zero
// bits are appended first so that the final state is 0 for feed-forward
// codes. The (padded) length must be a multiple of DataWidth.
func (e *ConvEncoder) Encode(data []uint8, zeroTerminate bool) ([]uint8, error) {
	e.Reset()
	if zeroTerminate {
		data = e.ZeroPad(data, -1)
	}
	wu := e.trellis.DataWidth()
	if len(data)%wu != 0 {
		return nil, fmt.Errorf("%w: %d data bits is not a multiple of the stage width %d", ErrUsage, len(data), wu)
	}
	out := make([]uint8, 0, len(data)/wu*e.trellis.CodeWidth())
	for i := 0; i < len(data); i += wu {
		sym := 0
		for _, bit := range data[i : i+wu] {
			if bit > 1 {
				return nil, fmt.Errorf("%w: data bit %d is %d", ErrUsage, i, bit)
			}
			sym = sym<<1 | int(bit)
		}
		enc, err := e.Step(sym)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// ZeroPad returns a copy of data with n zero bits appended; n < 0 appends
// the K-1 termination bits.
func (e *ConvEncoder) ZeroPad(data []uint8, n int) []uint8 {
	if n < 0 {
		n = e.trellis.TailLen()
	}
	out := make([]uint8, len(data), len(data)+n)
	copy(out, data)
	return append(out, make([]uint8, n)...)
}

// RemoveZeroTermination drops the K-1 termination entries from a decoded
// sequence of bits.
func (e *ConvEncoder) RemoveZeroTermination(data []uint8) []uint8 {
	return StripTail(data, e.trellis.TailLen())
}

// StripTail returns seq without its last n entries.
func StripTail[T any](seq []T, n int) []T {
	if n <= 0 {
		return seq
	}
	if n >= len(seq) {
		return seq[:0]
	}
	return seq[:len(seq)-n]
}
