package fec

import (
	"fmt"
	"os"
	"strings"

	"github.com/francoispqt/gojay"

	"github.com/observe-l/convfec/internal/fecwire"
)

// permFile is the JSON form of an interleaver.
type permFile struct {
	Mode string
	N    int
	Seed int64
	K1   int
	K2   int
	Perm permEntries
}

type permEntries []int

func (p *permFile) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("mode", p.Mode)
	enc.IntKey("N", p.N)
	enc.Int64KeyOmitEmpty("seed", p.Seed)
	enc.IntKeyOmitEmpty("k1", p.K1)
	enc.IntKeyOmitEmpty("k2", p.K2)
	enc.ArrayKey("perm", p.Perm)
}

func (p *permFile) IsNil() bool { return p == nil }

func (p *permFile) UnmarshalJSONObject(dec *gojay.Decoder, key string) error {
	switch key {
	case "mode":
		return dec.String(&p.Mode)
	case "N":
		return dec.Int(&p.N)
	case "seed":
		return dec.Int64(&p.Seed)
	case "k1":
		return dec.Int(&p.K1)
	case "k2":
		return dec.Int(&p.K2)
	case "perm":
		return dec.Array(&p.Perm)
	}
	return nil
}

func (p *permFile) NKeys() int { return 6 }

func (e permEntries) MarshalJSONArray(enc *gojay.Encoder) {
	for _, v := range e {
		enc.Int(v)
	}
}

func (e permEntries) IsNil() bool { return e == nil }

func (e *permEntries) UnmarshalJSONArray(dec *gojay.Decoder) error {
	var v int
	if err := dec.Int(&v); err != nil {
		return err
	}
	*e = append(*e, v)
	return nil
}

var modeCodes = map[InterleaverMode]uint8{
	ModeIdentity: fecwire.ModeIdentity,
	ModeReverse:  fecwire.ModeReverse,
	ModeRandom:   fecwire.ModeRandom,
	ModeQPP:      fecwire.ModeQPP,
	ModeCustom:   fecwire.ModeCustom,
}

func modeFromCode(c uint8) InterleaverMode {
	for m, v := range modeCodes {
		if v == c {
			return m
		}
	}
	return ModeCustom
}

// Save writes the permutation as JSON if path ends in .json, otherwise as a
// fecwire.PermHeader followed by little-endian uint32 entries. The binary
// header keeps only the low 32 bits of a random seed.
func (il *Interleaver) Save(path string) error {
	if strings.HasSuffix(path, ".json") {
		b, err := gojay.MarshalJSONObject(&permFile{
			Mode: string(il.mode),
			N:    il.Len(),
			Seed: il.params.Seed,
			K1:   il.params.K1,
			K2:   il.params.K2,
			Perm: il.perm,
		})
		if err != nil {
			return err
		}
		return os.WriteFile(path, b, 0o644)
	}
	h := fecwire.PermHeader{
		Magic:   fecwire.Magic,
		Version: fecwire.Version,
		Mode:    modeCodes[il.mode],
		Length:  uint32(il.Len()),
	}
	switch il.mode {
	case ModeRandom:
		h.Seed = uint32(il.params.Seed)
	case ModeQPP:
		h.Seed = uint32(il.params.K1&0xffff)<<16 | uint32(il.params.K2&0xffff)
	}
	buf := make([]byte, 0, fecwire.HeaderLen+4*il.Len())
	buf = append(buf, h.MarshalBinary(nil)...)
	buf = fecwire.PutEntries(buf, il.perm)
	return os.WriteFile(path, buf, 0o644)
}

// LoadInterleaver reads a permutation written by Save. A headerless file of
// raw little-endian uint32 entries is accepted too when n > 0. With n > 0 the
// loaded length must equal n.
func LoadInterleaver(path string, n int) (*Interleaver, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var (
		mode   = ModeCustom
		params InterleaverParams
		perm   []int
	)
	var pf permFile
	var h fecwire.PermHeader
	switch {
	case len(b) > 0 && b[0] == '{' && gojay.UnmarshalJSONObject(b, &pf) == nil:
		if pf.N != len(pf.Perm) {
			return nil, fmt.Errorf("%w: %s: N=%d but %d entries", ErrConfiguration, path, pf.N, len(pf.Perm))
		}
		mode = InterleaverMode(pf.Mode)
		params = InterleaverParams{Seed: pf.Seed, K1: pf.K1, K2: pf.K2}
		perm = pf.Perm
	case h.UnmarshalBinary(b):
		if h.Version != fecwire.Version {
			return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrConfiguration, path, h.Version)
		}
		var ok bool
		if perm, ok = fecwire.Entries(b[fecwire.HeaderLen:], int(h.Length)); !ok {
			return nil, fmt.Errorf("%w: %s: truncated, want %d entries", ErrConfiguration, path, h.Length)
		}
		mode = modeFromCode(h.Mode)
		switch mode {
		case ModeRandom:
			params.Seed = int64(h.Seed)
		case ModeQPP:
			params.K1, params.K2 = int(h.Seed>>16), int(h.Seed&0xffff)
		}
	case n > 0 && len(b) == 4*n:
		perm, _ = fecwire.Entries(b, n)
	default:
		return nil, fmt.Errorf("%w: %s: unrecognised permutation file", ErrConfiguration, path)
	}
	if n > 0 && len(perm) != n {
		return nil, fmt.Errorf("%w: %s: length %d, want %d", ErrConfiguration, path, len(perm), n)
	}
	il, err := NewInterleaverFromPerm(perm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, known := modeCodes[mode]; known {
		il.mode = mode
	}
	il.params = params
	return il, nil
}
