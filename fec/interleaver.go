package fec

import (
	"fmt"
	"math/bits"
	"math/rand"
)

// InterleaverMode names a permutation family.
type InterleaverMode string

const (
	ModeIdentity InterleaverMode = "identity"
	ModeReverse  InterleaverMode = "reverse"
	ModeRandom   InterleaverMode = "random"
	ModeQPP      InterleaverMode = "qpp"
	// ModeCustom marks a permutation supplied by the caller or loaded from
	// a file.
	ModeCustom InterleaverMode = "custom"
)

// InterleaverParams carries the mode-specific parameters of
// GenerateInterleaver. Seed is used by ModeRandom; K1 and K2 by ModeQPP,
// where K1 == K2 == 0 selects the power-of-two default polynomial.
type InterleaverParams struct {
	Seed int64
	K1   int
	K2   int
}

// Interleaver is a fixed permutation of n positions together with its
// inverse. Interleave maps out[i] = in[perm[i]], Deinterleave undoes it.
// An Interleaver is never modified after construction.
type Interleaver struct {
	mode    InterleaverMode
	params  InterleaverParams
	perm    []int
	permInv []int
}

// GenerateInterleaver builds a permutation of length n of the given mode.
func GenerateInterleaver(mode InterleaverMode, n int, p InterleaverParams) (*Interleaver, error) {
	switch mode {
	case ModeIdentity:
		return NewIdentityInterleaver(n)
	case ModeReverse:
		return NewReverseInterleaver(n)
	case ModeRandom:
		return NewRandomInterleaver(n, p.Seed)
	case ModeQPP:
		if p.K1 == 0 && p.K2 == 0 {
			return NewQPPInterleaverPow2(n)
		}
		return NewQPPInterleaver(n, p.K1, p.K2)
	default:
		return nil, fmt.Errorf("%w: unknown interleaver mode %q", ErrConfiguration, mode)
	}
}

// NewIdentityInterleaver returns the identity permutation.
func NewIdentityInterleaver(n int) (*Interleaver, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return newInterleaver(ModeIdentity, InterleaverParams{}, perm), nil
}

// NewReverseInterleaver returns the permutation n-1, n-2, ..., 0.
func NewReverseInterleaver(n int) (*Interleaver, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = n - 1 - i
	}
	return newInterleaver(ModeReverse, InterleaverParams{}, perm), nil
}

// NewRandomInterleaver returns a uniformly random permutation drawn from a
// generator seeded with seed, so equal seeds give equal permutations.
func NewRandomInterleaver(n int, seed int64) (*Interleaver, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	r := rand.New(rand.NewSource(seed))
	return newInterleaver(ModeRandom, InterleaverParams{Seed: seed}, r.Perm(n)), nil
}

// NewQPPInterleaver returns the quadratic permutation polynomial
// f(x) = (k1*x + k2*x^2) mod n. Coefficients that do not yield a bijection
// are rejected.
func NewQPPInterleaver(n, k1, k2 int) (*Interleaver, error) {
	if err := checkLength(n); err != nil {
		return nil, err
	}
	if k1 < 0 || k2 < 0 {
		return nil, fmt.Errorf("%w: negative QPP coefficients (%d, %d)", ErrConfiguration, k1, k2)
	}
	a, b := uint64(k1%n), uint64(k2%n)
	un := uint64(n)
	perm := make([]int, n)
	for x := 0; x < n; x++ {
		ux := uint64(x)
		sq := ux * ux % un
		perm[x] = int((a*ux%un + b*sq%un) % un)
	}
	if err := checkPerm(perm); err != nil {
		return nil, fmt.Errorf("%w: QPP f(x)=(%d x + %d x^2) mod %d is not a permutation", ErrConfiguration, k1, k2, n)
	}
	return newInterleaver(ModeQPP, InterleaverParams{K1: k1, K2: k2}, perm), nil
}

// NewQPPInterleaverPow2 returns the default QPP for a power-of-two length:
// k = floor((log2(n)+1)/2), k1 = 2^k - 1, k2 = 2^(k+1).
func NewQPPInterleaverPow2(n int) (*Interleaver, error) {
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: default QPP needs a power-of-two length, got %d", ErrConfiguration, n)
	}
	log2 := bits.TrailingZeros(uint(n))
	k := (log2 + 1) / 2
	return NewQPPInterleaver(n, 1<<k-1, 1<<(k+1))
}

// NewInterleaverFromPerm wraps an explicit permutation. The slice is copied.
func NewInterleaverFromPerm(perm []int) (*Interleaver, error) {
	if err := checkLength(len(perm)); err != nil {
		return nil, err
	}
	if err := checkPerm(perm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	p := make([]int, len(perm))
	copy(p, perm)
	return newInterleaver(ModeCustom, InterleaverParams{}, p), nil
}

func newInterleaver(mode InterleaverMode, params InterleaverParams, perm []int) *Interleaver {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return &Interleaver{mode: mode, params: params, perm: perm, permInv: inv}
}

func checkLength(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: interleaver length %d", ErrConfiguration, n)
	}
	return nil
}

func checkPerm(perm []int) error {
	seen := make([]bool, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) {
			return fmt.Errorf("entry %d = %d out of range", i, p)
		}
		if seen[p] {
			return fmt.Errorf("entry %d = %d repeated", i, p)
		}
		seen[p] = true
	}
	return nil
}

// Len returns the permutation length.
func (il *Interleaver) Len() int { return len(il.perm) }

// Mode returns the family the permutation was generated from.
func (il *Interleaver) Mode() InterleaverMode { return il.mode }

// Params returns the parameters the permutation was generated with.
func (il *Interleaver) Params() InterleaverParams { return il.params }

// Perm returns a copy of the permutation.
func (il *Interleaver) Perm() []int { return append([]int(nil), il.perm...) }

// PermInv returns a copy of the inverse permutation.
func (il *Interleaver) PermInv() []int { return append([]int(nil), il.permInv...) }

// Interleave returns out with out[i] = in[perm[i]].
func (il *Interleaver) Interleave(in []float64) ([]float64, error) {
	if err := il.checkInput(len(in)); err != nil {
		return nil, err
	}
	return permute(in, il.perm), nil
}

// Deinterleave is the inverse of Interleave.
func (il *Interleaver) Deinterleave(in []float64) ([]float64, error) {
	if err := il.checkInput(len(in)); err != nil {
		return nil, err
	}
	return permute(in, il.permInv), nil
}

// InterleaveBits is Interleave for bit sequences.
func (il *Interleaver) InterleaveBits(in []uint8) ([]uint8, error) {
	if err := il.checkInput(len(in)); err != nil {
		return nil, err
	}
	return permute(in, il.perm), nil
}

// DeinterleaveBits is Deinterleave for bit sequences.
func (il *Interleaver) DeinterleaveBits(in []uint8) ([]uint8, error) {
	if err := il.checkInput(len(in)); err != nil {
		return nil, err
	}
	return permute(in, il.permInv), nil
}

func (il *Interleaver) checkInput(n int) error {
	if n != len(il.perm) {
		return fmt.Errorf("%w: sequence length %d != interleaver length %d", ErrUsage, n, len(il.perm))
	}
	return nil
}

func permute[T any](in []T, perm []int) []T {
	out := make([]T, len(perm))
	for i, p := range perm {
		out[i] = in[p]
	}
	return out
}
