package fec

import "fmt"

// TurboEncoder runs parallel concatenated convolutional encoders over one
// data block. Trellis 0 produces the systematic stream, trellis 1 encodes
// the data as is and every further trellis encodes the interleaved data.
type TurboEncoder struct {
	trellises []*Trellis
	il        *Interleaver

	// ZeroPadding zero bits are appended to every stream input. The streams
	// are not terminated otherwise.
	ZeroPadding int
}

// NewTurboEncoder returns an encoder whose ZeroPadding is the largest K-1
// among the trellises.
func NewTurboEncoder(trellises []*Trellis, il *Interleaver) (*TurboEncoder, error) {
	if len(trellises) < 2 {
		return nil, fmt.Errorf("%w: turbo encoder needs at least 2 trellises, got %d", ErrConfiguration, len(trellises))
	}
	if il == nil {
		return nil, fmt.Errorf("%w: nil interleaver", ErrConfiguration)
	}
	pad := 0
	for i, t := range trellises {
		if t == nil {
			return nil, fmt.Errorf("%w: trellis %d is nil", ErrConfiguration, i)
		}
		if t.DataWidth() != trellises[0].DataWidth() {
			return nil, fmt.Errorf("%w: trellis %d has stage width %d, trellis 0 has %d",
				ErrConfiguration, i, t.DataWidth(), trellises[0].DataWidth())
		}
		pad = max(pad, t.TailLen())
	}
	return &TurboEncoder{trellises: trellises, il: il, ZeroPadding: pad}, nil
}

// Trellises returns the constituent trellises.
func (e *TurboEncoder) Trellises() []*Trellis { return e.trellises }

// Encode returns one encoded stream per trellis.
func (e *TurboEncoder) Encode(data []uint8) ([][]uint8, error) {
	if len(data) != e.il.Len() {
		return nil, fmt.Errorf("%w: block of %d bits, interleaver length %d", ErrUsage, len(data), e.il.Len())
	}
	inter, err := e.il.InterleaveBits(data)
	if err != nil {
		return nil, err
	}
	streams := make([][]uint8, len(e.trellises))
	for i, t := range e.trellises {
		in := data
		if i > 1 {
			in = inter
		}
		enc := NewConvEncoder(t)
		if streams[i], err = enc.Encode(enc.ZeroPad(in, e.ZeroPadding), false); err != nil {
			return nil, fmt.Errorf("stream %d: %w", i, err)
		}
	}
	return streams, nil
}

// Flatten multiplexes the streams stage by stage: for every stage, the
// CodeWidth bits of stream 0, then those of stream 1, and so on.
func (e *TurboEncoder) Flatten(streams [][]uint8) ([]uint8, error) {
	stages, err := e.streamStages(streams)
	if err != nil {
		return nil, err
	}
	out := make([]uint8, 0, stages*e.stageWidth())
	for i := 0; i < stages; i++ {
		for j, t := range e.trellises {
			wc := t.CodeWidth()
			out = append(out, streams[j][i*wc:(i+1)*wc]...)
		}
	}
	return out, nil
}

// Extract splits a multiplexed sequence of LLRs back into streams. It is
// the inverse of Flatten.
func (e *TurboEncoder) Extract(stream []float64) ([][]float64, error) {
	w := e.stageWidth()
	if len(stream)%w != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of the stage width %d", ErrUsage, len(stream), w)
	}
	stages := len(stream) / w
	out := make([][]float64, len(e.trellises))
	for j, t := range e.trellises {
		out[j] = make([]float64, 0, stages*t.CodeWidth())
	}
	pos := 0
	for i := 0; i < stages; i++ {
		for j, t := range e.trellises {
			wc := t.CodeWidth()
			out[j] = append(out[j], stream[pos:pos+wc]...)
			pos += wc
		}
	}
	return out, nil
}

func (e *TurboEncoder) stageWidth() int {
	w := 0
	for _, t := range e.trellises {
		w += t.CodeWidth()
	}
	return w
}

func (e *TurboEncoder) streamStages(streams [][]uint8) (int, error) {
	if len(streams) != len(e.trellises) {
		return 0, fmt.Errorf("%w: got %d streams, want %d", ErrUsage, len(streams), len(e.trellises))
	}
	stages := -1
	for j, t := range e.trellises {
		wc := t.CodeWidth()
		if len(streams[j])%wc != 0 {
			return 0, fmt.Errorf("%w: stream %d length %d is not a multiple of %d", ErrUsage, j, len(streams[j]), wc)
		}
		s := len(streams[j]) / wc
		if stages >= 0 && s != stages {
			return 0, fmt.Errorf("%w: stream %d has %d stages, stream 0 has %d", ErrUsage, j, s, stages)
		}
		stages = s
	}
	return stages, nil
}
