package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/observe-l/convfec/fec"
	"github.com/observe-l/convfec/internal/config"
	"github.com/observe-l/convfec/internal/logging"
	"github.com/observe-l/convfec/internal/metrics"
	"github.com/observe-l/convfec/internal/report"
	"github.com/observe-l/convfec/internal/sim"
)

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
		cfgPath  = flag.String("config", "", "YAML run description (default: ./convfec.yaml if present)")
		ebn0Str  = flag.String("ebn0", "", "comma-separated Eb/N0 points in dB")
		blocks   = flag.Int("blocks", 0, "blocks per Eb/N0 point")
		n        = flag.Int("n", 0, "information bits per block")
		iters    = flag.Int("iters", 0, "maximum turbo iterations")
		scale    = flag.Float64("scale", 0, "extrinsic scale")
		mode     = flag.String("interleaver", "", "identity|reverse|random|qpp")
		permFile = flag.String("perm", "", "load the interleaver from this file")
		workers  = flag.Int("workers", -1, "parallel decoders (0 = one per block)")
		seed     = flag.Int64("seed", 0, "random seed for data and noise")
		outDir   = flag.String("out", "", "report directory")
		metOut   = flag.String("metrics", "", "write Prometheus text metrics to this file")
		level    = flag.String("log-level", "", "DEBUG|INFO|WARN|ERROR")
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
	if set["iters"] {
		cfg.Turbo.Iterations = *iters
	}
	if set["scale"] {
		cfg.Turbo.ExtrinsicScale = *scale
	}
	if set["interleaver"] {
		cfg.Turbo.Interleaver = *mode
	}
	if set["perm"] {
		cfg.Turbo.PermFile = *permFile
	}
	if set["workers"] {
		cfg.Sweep.Workers = *workers
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bs := cfg.Sweep.BlockSize
	id, err := newTrellis([][]int{{1}}, nil)
	if err != nil {
		fatalf("identity code: %v", err)
	}
	rsc, err := newTrellis(cfg.Turbo.Generator, cfg.Turbo.Feedback)
	if err != nil {
		fatalf("constituent code: %v", err)
	}
	var il *fec.Interleaver
	if cfg.Turbo.PermFile != "" {
		il, err = fec.LoadInterleaver(cfg.Turbo.PermFile, bs)
	} else {
		il, err = fec.GenerateInterleaver(fec.InterleaverMode(strings.ToLower(cfg.Turbo.Interleaver)), bs,
			fec.InterleaverParams{Seed: cfg.Turbo.Seed})
	}
	if err != nil {
		fatalf("interleaver: %v", err)
	}
	enc, err := fec.NewTurboEncoder([]*fec.Trellis{id, rsc, rsc}, il)
	if err != nil {
		fatalf("%v", err)
	}
	coll := metrics.New("convfec")
	td, err := fec.NewTurboDecoder(il, fec.NewConstituentDecoder(rsc), fec.NewConstituentDecoder(rsc), fec.TurboOptions{
		Iterations:     cfg.Turbo.Iterations,
		ExtrinsicScale: cfg.Turbo.ExtrinsicScale,
		ZeroPadding:    enc.ZeroPadding,
		Observer:       coll,
	})
	if err != nil {
		fatalf("%v", err)
	}
	codeName := fmt.Sprintf("turbo K=%d %s N=%d", rsc.K(), il.Mode(), bs)
	log.Printf("[INFO] %s, %d iterations, scale %.4f, %d blocks per point",
		codeName, td.Options().Iterations, td.Options().ExtrinsicScale, cfg.Sweep.Blocks)

	rep := &report.Report{
		Title:     "Turbo Code Evaluation Report",
		Generated: time.Now(),
		Params: map[string]string{
			"generator":   fmt.Sprint(cfg.Turbo.Generator),
			"feedback":    fmt.Sprint(cfg.Turbo.Feedback),
			"interleaver": string(il.Mode()),
			"block_size":  strconv.Itoa(bs),
			"iterations":  strconv.Itoa(td.Options().Iterations),
			"scale":       strconv.FormatFloat(td.Options().ExtrinsicScale, 'f', -1, 64),
			"seed":        strconv.FormatInt(cfg.Sweep.Seed, 10),
		},
		Notes: []string{
			"BPSK over AWGN, max-log-MAP constituent decoders.",
			"Eb/N0 accounts for the padding bits in the code rate.",
		},
	}

	for pi, ebn0 := range cfg.Sweep.EbN0 {
		rng := rand.New(rand.NewSource(cfg.Sweep.Seed + int64(pi)))
		rec, err := runPoint(ctx, enc, td, rng, bs, ebn0, cfg.Sweep.Blocks, cfg.Sweep.Workers)
		if err != nil {
			fatalf("Eb/N0 %.2f: %v", ebn0, err)
		}
		rec.Code = codeName
		coll.AddErrors(rec.BitErrors, rec.Bits)
		log.Printf("[INFO] Eb/N0 %.2f dB: BER %.3e BLER %.3e (%d/%d bits)",
			ebn0, rec.BER(), rec.BLER(), rec.BitErrors, rec.Bits)
		log.Printf("[DEBUG] Eb/N0 %.2f dB: errors per iteration %v", ebn0, rec.IterErrors)
		rep.Records = append(rep.Records, rec)
	}

	jsonPath, mdPath, err := report.Write(filepath.Join(cfg.Output.Dir, "turbo_eval_report.md"), rep)
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

func newTrellis(gen [][]int, fb []int) (*fec.Trellis, error) {
	d, err := fec.NewDefinition(gen, fb)
	if err != nil {
		return nil, err
	}
	return fec.NewTrellis(d), nil
}

// runPoint sends nblocks random blocks of k bits through the channel and
// decodes them as one batch.
func runPoint(ctx context.Context, enc *fec.TurboEncoder, td *fec.TurboDecoder, rng *rand.Rand, k int, ebn0 float64, nblocks, workers int) (report.Record, error) {
	rec := report.Record{Decoder: "max-log-MAP", EbN0: ebn0, Blocks: nblocks}
	batch := make([]fec.TurboBlock, 0, nblocks)
	var ch *sim.AWGN
	for b := 0; b < nblocks; b++ {
		data := make([]uint8, k)
		for i := range data {
			data[i] = uint8(rng.Intn(2))
		}
		streams, err := enc.Encode(data)
		if err != nil {
			return rec, err
		}
		flat, err := enc.Flatten(streams)
		if err != nil {
			return rec, err
		}
		if ch == nil {
			rate := float64(k) / float64(len(flat))
			if ch, err = sim.NewAWGN(ebn0, rate, rng); err != nil {
				return rec, err
			}
			log.Printf("[DEBUG] rate %.4f, sigma %.4f, padding %d", rate, ch.Sigma(), enc.ZeroPadding)
		}
		parts, err := enc.Extract(ch.LLR(ch.Transmit(flat)))
		if err != nil {
			return rec, err
		}
		batch = append(batch, fec.TurboBlock{Ys: parts[0], Yp1: parts[1], Yp2: parts[2], Ref: data})
	}

	start := time.Now()
	res, err := fec.DecodeBatch(ctx, td, batch, workers)
	if err != nil {
		return rec, err
	}
	rec.Decode = time.Since(start)
	rec.IterErrors = make([]int, td.Options().Iterations)
	for i, r := range res {
		e := sim.BitErrors(r.Bits, batch[i].Ref)
		rec.Bits += k
		rec.BitErrors += e
		if e > 0 {
			rec.BlockErrors++
		}
		for it, v := range r.Errors {
			rec.IterErrors[it] += v
		}
	}
	return rec, nil
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}
