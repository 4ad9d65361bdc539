// Package report writes BER sweep results as JSON and as a Markdown table,
// side by side, with a timestamp in the file names.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/francoispqt/gojay"
)

// Record is one point of a sweep.
type Record struct {
	Code        string
	Decoder     string
	EbN0        float64
	Blocks      int
	Bits        int
	BitErrors   int
	BlockErrors int
	// IterErrors[i] sums the bit errors after turbo iteration i.
	IterErrors []int
	Decode     time.Duration
}

// BER is the residual bit error rate.
func (r *Record) BER() float64 {
	if r.Bits == 0 {
		return 0
	}
	return float64(r.BitErrors) / float64(r.Bits)
}

// BLER is the block error rate.
func (r *Record) BLER() float64 {
	if r.Blocks == 0 {
		return 0
	}
	return float64(r.BlockErrors) / float64(r.Blocks)
}

func (r *Record) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("code", r.Code)
	enc.StringKey("decoder", r.Decoder)
	enc.Float64Key("ebn0_db", r.EbN0)
	enc.IntKey("blocks", r.Blocks)
	enc.IntKey("bits", r.Bits)
	enc.IntKey("bit_errors", r.BitErrors)
	enc.IntKey("block_errors", r.BlockErrors)
	enc.Float64Key("ber", r.BER())
	enc.Float64Key("bler", r.BLER())
	if len(r.IterErrors) > 0 {
		enc.ArrayKey("iter_errors", ints(r.IterErrors))
	}
	enc.Int64Key("dec_ms_total", r.Decode.Milliseconds())
}

func (r *Record) IsNil() bool { return r == nil }

type ints []int

func (s ints) MarshalJSONArray(enc *gojay.Encoder) {
	for _, v := range s {
		enc.Int(v)
	}
}

func (s ints) IsNil() bool { return s == nil }

type records []Record

func (s records) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range s {
		enc.Object(&s[i])
	}
}

func (s records) IsNil() bool { return s == nil }

// Report is a titled list of records.
type Report struct {
	Title     string
	Generated time.Time
	Params    map[string]string
	Records   []Record
	Notes     []string
}

func (r *Report) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("title", r.Title)
	enc.StringKey("generated", r.Generated.Format(time.RFC3339))
	if len(r.Params) > 0 {
		enc.ObjectKey("params", params(r.Params))
	}
	enc.ArrayKey("records", records(r.Records))
}

func (r *Report) IsNil() bool { return r == nil }

type params map[string]string

func (p params) MarshalJSONObject(enc *gojay.Encoder) {
	for _, k := range sortedKeys(p) {
		enc.StringKey(k, p[k])
	}
}

func (p params) IsNil() bool { return p == nil }

// WriteJSON encodes r to w.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := gojay.NewEncoder(w)
	defer enc.Release()
	return enc.EncodeObject(r)
}

// WriteMarkdown renders r as one table per code.
func (r *Report) WriteMarkdown(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n\n", r.Title)
	fmt.Fprintf(bw, "Generated: %s\n\n", r.Generated.Format(time.RFC3339))
	if len(r.Params) > 0 {
		for _, k := range sortedKeys(r.Params) {
			fmt.Fprintf(bw, "- %s: %s\n", k, r.Params[k])
		}
		fmt.Fprintf(bw, "\n")
	}
	var codes []string
	byCode := map[string][]Record{}
	for _, rec := range r.Records {
		if _, ok := byCode[rec.Code]; !ok {
			codes = append(codes, rec.Code)
		}
		byCode[rec.Code] = append(byCode[rec.Code], rec)
	}
	for _, code := range codes {
		fmt.Fprintf(bw, "## %s\n\n", code)
		fmt.Fprintf(bw, "| Decoder | Eb/N0 (dB) | Blocks | Bit errors | BER | BLER | Dec ms |\n")
		fmt.Fprintf(bw, "|---|---:|---:|---:|---:|---:|---:|\n")
		for _, rec := range byCode[code] {
			fmt.Fprintf(bw, "| %s | %.2f | %d | %d | %.3e | %.3e | %d |\n",
				rec.Decoder, rec.EbN0, rec.Blocks, rec.BitErrors, rec.BER(), rec.BLER(), rec.Decode.Milliseconds())
		}
		fmt.Fprintf(bw, "\n")
	}
	if len(r.Notes) > 0 {
		fmt.Fprintf(bw, "---\n\nNotes:\n\n")
		for _, n := range r.Notes {
			fmt.Fprintf(bw, "- %s\n", n)
		}
	}
	return bw.Flush()
}

// Write stores r next to base (a .md path) as base_<ts>.json and
// base_<ts>.md and returns both paths.
func Write(base string, r *Report) (jsonPath, mdPath string, err error) {
	if err := EnsureDir(base); err != nil {
		return "", "", err
	}
	ts := r.Generated.Format("20060102_150405")
	stem := strings.TrimSuffix(base, ".md") + "_" + ts
	jsonPath, mdPath = stem+".json", stem+".md"
	if err := writeFile(jsonPath, r.WriteJSON); err != nil {
		return "", "", fmt.Errorf("write json: %w", err)
	}
	if err := writeFile(mdPath, r.WriteMarkdown); err != nil {
		return "", "", fmt.Errorf("write md: %w", err)
	}
	return jsonPath, mdPath, nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
