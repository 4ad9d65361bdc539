package fecwire

import (
	"encoding/binary"
)

// Magic opens every binary permutation file.
var Magic = [4]byte{'C', 'F', 'P', 'M'}

// Version of the permutation file layout.
const Version uint8 = 1

// Permutation mode identifiers stored in the header.
const (
	ModeIdentity uint8 = 0
	ModeReverse  uint8 = 1
	ModeRandom   uint8 = 2
	ModeQPP      uint8 = 3
	ModeCustom   uint8 = 4
)

// PermHeader precedes Length little-endian uint32 permutation entries.
type PermHeader struct {
	Magic   [4]byte
	Version uint8
	Mode    uint8
	Flags   uint16 // reserved
	Length  uint32 // number of entries
	Seed    uint32 // random seed, or k1<<16|k2 for QPP
}

const HeaderLen = 4 + 1 + 1 + 2 + 4 + 4

func (h *PermHeader) MarshalBinary(b []byte) []byte {
	if len(b) < HeaderLen {
		b = make([]byte, HeaderLen)
	}
	copy(b[0:4], h.Magic[:])
	b[4] = h.Version
	b[5] = h.Mode
	binary.LittleEndian.PutUint16(b[6:8], h.Flags)
	binary.LittleEndian.PutUint32(b[8:12], h.Length)
	binary.LittleEndian.PutUint32(b[12:16], h.Seed)
	return b[:HeaderLen]
}

// UnmarshalBinary decodes the header and reports whether b was long enough
// and carried the expected magic.
func (h *PermHeader) UnmarshalBinary(b []byte) bool {
	if len(b) < HeaderLen {
		return false
	}
	copy(h.Magic[:], b[0:4])
	if h.Magic != Magic {
		return false
	}
	h.Version = b[4]
	h.Mode = b[5]
	h.Flags = binary.LittleEndian.Uint16(b[6:8])
	h.Length = binary.LittleEndian.Uint32(b[8:12])
	h.Seed = binary.LittleEndian.Uint32(b[12:16])
	return true
}

// PutEntries appends perm as little-endian uint32 values to b.
func PutEntries(b []byte, perm []int) []byte {
	var tmp [4]byte
	for _, v := range perm {
		binary.LittleEndian.PutUint32(tmp[:], uint32(v))
		b = append(b, tmp[:]...)
	}
	return b
}

// Entries decodes n little-endian uint32 values from b. It returns false if
// b is too short.
func Entries(b []byte, n int) ([]int, bool) {
	if len(b) < 4*n {
		return nil, false
	}
	out := make([]int, n)
	for i := range out {
		out[i] = int(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, true
}
