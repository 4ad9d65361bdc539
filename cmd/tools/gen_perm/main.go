package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/observe-l/convfec/fec"
)

func main() {
	var (
		n    int
		mode string
		seed int64
		k1   int
		k2   int
		out  string
	)
	flag.IntVar(&n, "n", 1024, "interleaver length (must be >0)")
	flag.StringVar(&mode, "mode", "random", "identity|reverse|random|qpp")
	flag.Int64Var(&seed, "seed", 1, "seed of the random permutation")
	flag.IntVar(&k1, "k1", 0, "QPP linear coefficient (0 with -k2 0: power-of-two default)")
	flag.IntVar(&k2, "k2", 0, "QPP quadratic coefficient")
	flag.StringVar(&out, "o", "", "output file, .json for JSON (default: perm/<mode>_<n>.bin)")
	flag.Parse()
	if n <= 0 {
		fmt.Fprintln(os.Stderr, "n must be > 0")
		os.Exit(1)
	}
	if out == "" {
		out = filepath.Join("perm", fmt.Sprintf("%s_%d.bin", mode, n))
	}
	il, err := fec.GenerateInterleaver(fec.InterleaverMode(mode), n, fec.InterleaverParams{Seed: seed, K1: k1, K2: k2})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if err := il.Save(out); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%s, %d entries)\n", out, il.Mode(), il.Len())
}
