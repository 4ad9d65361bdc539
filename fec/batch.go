package fec

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// TurboBlock is one received turbo code block. Ref is optional.
type TurboBlock struct {
	Ys, Yp1, Yp2 []float64
	Ref          []uint8
}

// TurboResult is the outcome of decoding a TurboBlock.
type TurboResult struct {
	Bits   []uint8
	Errors []int
}

// DecodeBatch decodes independent blocks on up to workers goroutines
// (workers <= 0 means one per block). Results are in input order. The
// first decode error, or the cancellation of ctx, stops the batch.
func DecodeBatch(ctx context.Context, td *TurboDecoder, blocks []TurboBlock, workers int) ([]TurboResult, error) {
	results := make([]TurboResult, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range blocks {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b := blocks[i]
			bits, errs, err := td.Decode(b.Ys, b.Yp1, b.Yp2, b.Ref)
			if err != nil {
				return err
			}
			results[i] = TurboResult{Bits: bits, Errors: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
