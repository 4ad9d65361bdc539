package fec

import "fmt"

// maxReduction bounds the number of merged stages of a reduced trellis.
const maxReduction = 8

// Trellis holds the per-branch and per-state lookup tables of a code,
// computed once from its Definition. Every encoder and decoder works from
// these tables only. A Trellis is read-only after construction and may be
// shared between goroutines.
//
// A reduced trellis merges m consecutive stages into one (radix 2^m): each
// stage then consumes wu = m data bits, emits wc = m*r encoded bits and
// every state has 2^m incoming and outgoing branches. A branch is the
// register window prevState<<m | a, a being the m register input bits of
// the stage, so NextState keeps the low K-1 bits and PrevState drops the
// low m bits.
type Trellis struct {
	def *Definition

	m   int // stages merged per trellis stage
	fan int // branches per state, 2^m
	wu  int // data bits per stage
	wc  int // encoded bits per stage
	ns  int
	nb  int

	next []int
	prev []int
	enc  []uint8 // nb rows of wc bits
	dat  []uint8 // nb rows of wu bits

	prevBranches []int // ns rows of fan branches entering the state
	nextBranches []int // ns rows of fan branches, indexed by data symbol
}

// NewTrellis builds the radix-2 trellis of def.
func NewTrellis(def *Definition) *Trellis {
	t, _ := NewReducedTrellis(def, 1)
	return t
}

// NewReducedTrellis builds the trellis of def with m stages merged into one.
func NewReducedTrellis(def *Definition, m int) (*Trellis, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil trellis definition", ErrConfiguration)
	}
	if m < 1 || m > maxReduction {
		return nil, fmt.Errorf("%w: reduction %d outside [1, %d]", ErrConfiguration, m, maxReduction)
	}
	if def.K()-1+m > 30 {
		return nil, fmt.Errorf("%w: reduction %d too large for K=%d", ErrConfiguration, m, def.K())
	}
	ns := def.NumStates()
	fan := 1 << m
	t := &Trellis{
		def: def,
		m:   m,
		fan: fan,
		wu:  m,
		wc:  m * def.Rate(),
		ns:  ns,
		nb:  ns * fan,
	}
	t.next = make([]int, t.nb)
	t.prev = make([]int, t.nb)
	t.enc = make([]uint8, t.nb*t.wc)
	t.dat = make([]uint8, t.nb*t.wu)
	baseMask := def.NumBranches() - 1
	for w := 0; w < t.nb; w++ {
		t.next[w] = w & (ns - 1)
		t.prev[w] = w >> m
		for s := 0; s < m; s++ {
			// sub-stage s in time order; its K-bit window ends m-1-s bits
			// above the newest bit of w
			b := (w >> uint(m-1-s)) & baseMask
			copy(t.enc[w*t.wc+s*def.Rate():], def.EncodedBits(b))
			t.dat[w*t.wu+s] = def.DataBit(b)
		}
	}

	t.prevBranches = make([]int, ns*fan)
	t.nextBranches = make([]int, ns*fan)
	for s := 0; s < ns; s++ {
		for h := 0; h < fan; h++ {
			t.prevBranches[s*fan+h] = s + h*ns
		}
		for u := 0; u < fan; u++ {
			cur := s
			w := s
			for i := 0; i < m; i++ {
				bit := (u >> uint(m-1-i)) & 1
				b := def.NextBranch(cur, bit)
				cur = def.NextState(b)
				w = w<<1 | b&1
			}
			t.nextBranches[s*fan+u] = w
		}
	}
	return t, nil
}

// Definition returns the code definition the tables were built from.
func (t *Trellis) Definition() *Definition { return t.def }

// K returns the constraint length of the underlying code.
func (t *Trellis) K() int { return t.def.K() }

// TailLen returns the number of zero bits that terminate the trellis.
func (t *Trellis) TailLen() int { return t.def.K() - 1 }

// Reduction returns the number of code stages merged per trellis stage.
func (t *Trellis) Reduction() int { return t.m }

// NumStates returns Ns.
func (t *Trellis) NumStates() int { return t.ns }

// NumBranches returns the number of branches per stage.
func (t *Trellis) NumBranches() int { return t.nb }

// Fan returns the number of branches entering or leaving each state.
func (t *Trellis) Fan() int { return t.fan }

// Rate returns the encoded bits per data bit.
func (t *Trellis) Rate() int { return t.def.Rate() }

// DataWidth returns wu, the data bits per stage.
func (t *Trellis) DataWidth() int { return t.wu }

// CodeWidth returns wc, the encoded bits per stage.
func (t *Trellis) CodeWidth() int { return t.wc }

// NextState returns the state reached by branch b.
func (t *Trellis) NextState(b int) int { return t.next[b] }

// PrevState returns the state branch b leaves from.
func (t *Trellis) PrevState(b int) int { return t.prev[b] }

// EncodedBits returns the wc encoded bits of branch b. The slice aliases the
// table and must not be modified.
func (t *Trellis) EncodedBits(b int) []uint8 { return t.enc[b*t.wc : (b+1)*t.wc] }

// DataBits returns the wu data bits of branch b in time order. The slice
// aliases the table and must not be modified.
func (t *Trellis) DataBits(b int) []uint8 { return t.dat[b*t.wu : (b+1)*t.wu] }

// PrevBranches returns the branches entering state s.
func (t *Trellis) PrevBranches(s int) []int { return t.prevBranches[s*t.fan : (s+1)*t.fan] }

// NextBranches returns the branches leaving state s; entry u is the branch
// taken on data symbol u.
func (t *Trellis) NextBranches(s int) []int { return t.nextBranches[s*t.fan : (s+1)*t.fan] }

// BranchFor returns the branch taken from state s on data symbol u, whose
// first bit in time is the most significant one.
func (t *Trellis) BranchFor(s, u int) int { return t.nextBranches[s*t.fan+u] }
