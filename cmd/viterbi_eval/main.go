package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/observe-l/convfec/fec"
	"github.com/observe-l/convfec/internal/config"
	"github.com/observe-l/convfec/internal/dropper"
	"github.com/observe-l/convfec/internal/logging"
	"github.com/observe-l/convfec/internal/metrics"
	"github.com/observe-l/convfec/internal/report"
	"github.com/observe-l/convfec/internal/sim"
)

// blockDecoder returns the hard decisions for one zero-terminated block of
// k information bits.
type blockDecoder func(rx []float64, k int) ([]uint8, error)

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		var f float64
		if _, err := fmt.Sscanf(p, "%f", &f); err != nil {
			return nil, fmt.Errorf("bad Eb/N0 %q: %w", p, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func main() {
	var (
		cfgPath   = flag.String("config", "", "YAML run description (default: ./convfec.yaml if present)")
		ebn0Str   = flag.String("ebn0", "", "comma-separated Eb/N0 points in dB")
		blocks    = flag.Int("blocks", 0, "blocks per Eb/N0 point")
		n         = flag.Int("n", 0, "information bits per block")
		reduction = flag.Int("reduction", 0, "code stages merged per trellis stage")
		which     = flag.String("decoder", "", "viterbi|siso|all")
		seed      = flag.Int64("seed", 0, "random seed for data and noise")
		bsc       = flag.Float64("bsc", 0, "replace AWGN by a binary symmetric channel with this flip probability")
		outDir    = flag.String("out", "", "report directory")
		metOut    = flag.String("metrics", "", "write Prometheus text metrics to this file")
		level     = flag.String("log-level", "", "DEBUG|INFO|WARN|ERROR")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["ebn0"] {
		if cfg.Sweep.EbN0, err = parseFloats(*ebn0Str); err != nil {
			fatalf("%v", err)
		}
	}
	if set["blocks"] {
		cfg.Sweep.Blocks = *blocks
	}
	if set["n"] {
		cfg.Sweep.BlockSize = *n
	}
	if set["reduction"] {
		cfg.Code.Reduction = *reduction
	}
	if set["seed"] {
		cfg.Sweep.Seed = *seed
	}
	if set["out"] {
		cfg.Output.Dir = *outDir
	}
	if set["metrics"] {
		cfg.Output.Metrics = *metOut
	}
	if set["log-level"] {
		cfg.Log.Level = *level
	}
	if _, err := logging.Setup(cfg.Log.Level, os.Stderr); err != nil {
		fatalf("%v", err)
	}
	decoders := []string{strings.ToLower(cfg.Code.Decoder)}
	if set["decoder"] {
		decoders = []string{*which}
		if *which == "all" {
			decoders = []string{"viterbi", "siso"}
		}
	}

	def, err := fec.NewDefinition(cfg.Code.Generator, cfg.Code.Feedback)
	if err != nil {
		fatalf("code: %v", err)
	}
	tr, err := fec.NewReducedTrellis(def, cfg.Code.Reduction)
	if err != nil {
		fatalf("trellis: %v", err)
	}
	k := cfg.Sweep.BlockSize
	if (k+tr.TailLen())%tr.DataWidth() != 0 {
		fatalf("block size %d plus %d tail bits is not a multiple of the stage width %d", k, tr.TailLen(), tr.DataWidth())
	}
	codeName := fmt.Sprintf("K=%d rate 1/%d %s radix %d", def.K(), def.Rate(), def.Kind(), tr.Fan())
	log.Printf("[INFO] %s, N=%d, %d blocks per point", codeName, k, cfg.Sweep.Blocks)

	coll := metrics.New("convfec")
	rep := &report.Report{
		Title:     "Convolutional Code Evaluation Report",
		Generated: time.Now(),
		Params: map[string]string{
			"generator":  fmt.Sprint(cfg.Code.Generator),
			"feedback":   fmt.Sprint(cfg.Code.Feedback),
			"reduction":  strconv.Itoa(tr.Reduction()),
			"block_size": strconv.Itoa(k),
			"seed":       strconv.FormatInt(cfg.Sweep.Seed, 10),
			"bsc":        strconv.FormatFloat(*bsc, 'g', -1, 64),
		},
		Notes: []string{
			"BPSK over AWGN, zero-terminated blocks.",
			"Recursive codes are not driven back to state 0 by zero tail bits; their decoders start traceback from the best state.",
		},
	}

	for _, name := range decoders {
		dec, err := newDecoder(name, tr)
		if err != nil {
			fatalf("%v", err)
		}
		for pi, ebn0 := range cfg.Sweep.EbN0 {
			rng := rand.New(rand.NewSource(cfg.Sweep.Seed + int64(pi)))
			var flip dropper.Flipper
			if *bsc > 0 {
				flip = dropper.New(*bsc, rng)
			}
			rec, err := runPoint(tr, dec, coll, rng, flip, k, ebn0, cfg.Sweep.Blocks)
			if err != nil {
				fatalf("%s Eb/N0 %.2f: %v", name, ebn0, err)
			}
			rec.Code = codeName
			rec.Decoder = name
			coll.AddErrors(rec.BitErrors, rec.Bits)
			log.Printf("[INFO] %s Eb/N0 %.2f dB: BER %.3e BLER %.3e", name, ebn0, rec.BER(), rec.BLER())
			rep.Records = append(rep.Records, rec)
		}
	}

	jsonPath, mdPath, err := report.Write(filepath.Join(cfg.Output.Dir, "viterbi_eval_report.md"), rep)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Report written: %s\nJSON: %s\n", mdPath, jsonPath)
	if cfg.Output.Metrics != "" {
		if err := report.EnsureDir(cfg.Output.Metrics); err != nil {
			fatalf("%v", err)
		}
		if err := coll.WriteFile(cfg.Output.Metrics); err != nil {
			fatalf("write metrics: %v", err)
		}
		fmt.Printf("Metrics: %s\n", cfg.Output.Metrics)
	}
}

func newDecoder(name string, tr *fec.Trellis) (blockDecoder, error) {
	terminated := tr.Definition().Kind() == fec.FeedForward
	switch name {
	case "viterbi":
		v := fec.NewViterbiDecoder(tr)
		v.Terminated = terminated
		return v.DecodeTerminated, nil
	case "siso":
		s := fec.NewSISODecoder(tr)
		s.BackwardInit = terminated
		s.RemoveTail = true
		return func(rx []float64, k int) ([]uint8, error) {
			nData := k + tr.TailLen()
			outU, _, err := s.Decode(make([]float64, nData), rx, nData)
			if err != nil {
				return nil, err
			}
			return sim.HardDecision(outU), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q", name)
	}
}

// runPoint decodes nblocks random blocks of k bits. A non-nil flip replaces
// the AWGN channel by hard bit errors.
func runPoint(tr *fec.Trellis, dec blockDecoder, coll *metrics.Collector, rng *rand.Rand, flip dropper.Flipper, k int, ebn0 float64, nblocks int) (report.Record, error) {
	rec := report.Record{EbN0: ebn0, Blocks: nblocks}
	enc := fec.NewConvEncoder(tr)
	ch, err := sim.NewAWGN(ebn0, float64(k)/float64((k+tr.TailLen())*tr.Rate()), rng)
	if err != nil {
		return rec, err
	}
	data := make([]uint8, k)
	for b := 0; b < nblocks; b++ {
		for i := range data {
			data[i] = uint8(rng.Intn(2))
		}
		coded, err := enc.Encode(data, true)
		if err != nil {
			return rec, err
		}
		var rx []float64
		if flip != nil {
			flip.Flip(coded)
			rx = sim.HardLLR(coded)
		} else {
			rx = ch.LLR(ch.Transmit(coded))
		}
		start := time.Now()
		got, err := dec(rx, k)
		if err != nil {
			return rec, err
		}
		elapsed := time.Since(start)
		rec.Decode += elapsed
		coll.ObserveBlock(elapsed)

		e := sim.BitErrors(got, data)
		rec.Bits += k
		rec.BitErrors += e
		if e > 0 {
			rec.BlockErrors++
		}
	}
	return rec, nil
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
