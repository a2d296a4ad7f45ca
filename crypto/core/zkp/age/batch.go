package age

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one proof bundle to verify.
type BatchItem struct {
	Proof  *Proof
	Public PublicInput
}

// BatchResult holds the outcome for the item at the same index.
type BatchResult struct {
	Valid bool
	Err   error
}

// VerifyBatch verifies items concurrently with at most workers goroutines.
// A workers value <= 0 means GOMAXPROCS. The returned error is only set when
// ctx is done before all items were verified.
func (v *Verifier) VerifyBatch(ctx context.Context, items []BatchItem, workers int) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := v.Verify(items[i].Proof, items[i].Public)
			results[i] = BatchResult{Valid: ok, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
