package fec

import (
	"fmt"
	"math/bits"
)

// maxConstraintLength bounds K so that a branch fits comfortably in an int
// and the per-branch tables stay small.
const maxConstraintLength = 24

// Kind tells feed-forward codes from recursive systematic ones.
type Kind int

const (
	// FeedForward codes feed the data bit straight into the register.
	FeedForward Kind = iota
	// Recursive codes feed data XOR feedback parity into the register.
	Recursive
)

func (k Kind) String() string {
	switch k {
	case FeedForward:
		return "feed-forward"
	case Recursive:
		return "recursive"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Definition describes a binary convolutional code by its generator matrix
// and optional feedback taps. A branch is a K-bit window of register input
// bits: bit 0 is the newest bit, bit K-1 the oldest. Column j of the
// generator matrix and entry j of the feedback vector tap bit j.
//
// A Definition is immutable; all methods are pure functions of their
// arguments.
type Definition struct {
	k        int
	ns       int
	nb       int
	rate     int
	kind     Kind
	genMasks []uint32
	fbMask   uint32
}

// NewDefinition validates gen (rows = output polynomials, columns = taps)
// and feedback (empty for a feed-forward code, K taps otherwise).
func NewDefinition(gen [][]int, feedback []int) (*Definition, error) {
	if len(gen) == 0 {
		return nil, fmt.Errorf("%w: generator matrix has no rows", ErrConfiguration)
	}
	k := len(gen[0])
	if k < 1 {
		return nil, fmt.Errorf("%w: constraint length must be >= 1", ErrConfiguration)
	}
	if k > maxConstraintLength {
		return nil, fmt.Errorf("%w: constraint length %d exceeds %d", ErrConfiguration, k, maxConstraintLength)
	}
	masks := make([]uint32, len(gen))
	for i, row := range gen {
		if len(row) != k {
			return nil, fmt.Errorf("%w: generator row %d has %d taps, want %d", ErrConfiguration, i, len(row), k)
		}
		m, err := tapMask(row)
		if err != nil {
			return nil, fmt.Errorf("%w: generator row %d: %v", ErrConfiguration, i, err)
		}
		masks[i] = m
	}
	d := &Definition{
		k:        k,
		ns:       1 << (k - 1),
		nb:       1 << k,
		rate:     len(gen),
		kind:     FeedForward,
		genMasks: masks,
	}
	if len(feedback) > 0 {
		if len(feedback) != k {
			return nil, fmt.Errorf("%w: feedback has %d taps, want %d", ErrConfiguration, len(feedback), k)
		}
		fb, err := tapMask(feedback)
		if err != nil {
			return nil, fmt.Errorf("%w: feedback: %v", ErrConfiguration, err)
		}
		// The newest register bit is the one being computed from the
		// feedback, so it cannot also be one of its inputs.
		if fb&1 != 0 {
			return nil, fmt.Errorf("%w: feedback must not tap register bit 0", ErrConfiguration)
		}
		d.kind = Recursive
		d.fbMask = fb
	}
	return d, nil
}

func tapMask(row []int) (uint32, error) {
	var m uint32
	for j, v := range row {
		switch v {
		case 0:
		case 1:
			m |= 1 << uint(j)
		default:
			return 0, fmt.Errorf("tap %d is %d, not binary", j, v)
		}
	}
	return m, nil
}

// K returns the constraint length.
func (d *Definition) K() int { return d.k }

// NumStates returns Ns = 2^(K-1).
func (d *Definition) NumStates() int { return d.ns }

// NumBranches returns Nb = 2^K.
func (d *Definition) NumBranches() int { return d.nb }

// Rate returns the number of encoded bits per data bit.
func (d *Definition) Rate() int { return d.rate }

// Kind reports whether the code has feedback.
func (d *Definition) Kind() Kind { return d.kind }

// NextState returns the state reached by branch b.
func (d *Definition) NextState(b int) int { return b & (d.ns - 1) }

// PrevState returns the state branch b leaves from.
func (d *Definition) PrevState(b int) int { return b >> 1 }

// PrevBranches returns the two branches entering state s.
func (d *Definition) PrevBranches(s int) [2]int { return [2]int{s, d.ns + s} }

// NextBranches returns the two branches leaving state s, ordered by the
// register input bit.
func (d *Definition) NextBranches(s int) [2]int { return [2]int{s << 1, s<<1 + 1} }

// NextBranch returns the branch taken from state s on data bit dat.
func (d *Definition) NextBranch(s, dat int) int {
	b := s << 1
	if d.kind == Recursive {
		return b + (dat^parity(d.fbMask&uint32(b)))&1
	}
	return b + dat&1
}

// EncodedBits returns the rate output bits of branch b.
func (d *Definition) EncodedBits(b int) []uint8 {
	out := make([]uint8, d.rate)
	for i, m := range d.genMasks {
		out[i] = uint8(parity(m & uint32(b)))
	}
	return out
}

// DataBit returns the data bit carried by branch b. For recursive codes it
// undoes the feedback applied by NextBranch.
func (d *Definition) DataBit(b int) uint8 {
	if d.kind == Recursive {
		return uint8((parity(d.fbMask&uint32(b)) ^ b) & 1)
	}
	return uint8(b & 1)
}

func parity(x uint32) int { return bits.OnesCount32(x) & 1 }
