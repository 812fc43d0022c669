package pay

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result pairs a record's breakdown with the strict-mode error, if any.
type Result struct {
	Breakdown PayBreakdown
	Err       error
}

// ComputeBatch computes every record on up to workers goroutines and returns
// results in input order. With strict set, records with unparseable times get
// a zero breakdown and their TimeParseError; otherwise they are computed
// fail-soft. The only error returned is ctx's.
func ComputeBatch(ctx context.Context, calc *Calculator, records []AttendanceRecord, workers int, strict bool) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if strict {
				b, err := calc.ComputeStrict(records[i])
				results[i] = Result{Breakdown: b, Err: err}
			} else {
				results[i] = Result{Breakdown: calc.Compute(records[i])}
			}
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
