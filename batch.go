package kdnn

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchKNearest runs KNearest for every query concurrently. Results are in
// input order. The first error or a canceled ctx aborts the batch.
func (idx *Index) BatchKNearest(ctx context.Context, qs []Coord, k int, opts ...QueryOption) ([][]Neighbor, error) {
	filter := idx.filter(opts)
	return idx.batch(ctx, qs, func(q Coord) ([]Neighbor, error) {
		return idx.kNearest(q, k, filter)
	})
}

// BatchRadius runs Radius for every query concurrently. Results are in
// input order. The first error or a canceled ctx aborts the batch.
func (idx *Index) BatchRadius(ctx context.Context, qs []Coord, r float64, opts ...QueryOption) ([][]Neighbor, error) {
	filter := idx.filter(opts)
	return idx.batch(ctx, qs, func(q Coord) ([]Neighbor, error) {
		return idx.radius(q, r, filter)
	})
}

func (idx *Index) batch(ctx context.Context, qs []Coord, query func(Coord) ([]Neighbor, error)) ([][]Neighbor, error) {
	start := time.Now()
	out := make([][]Neighbor, len(qs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.batchWorkers)

	for i, q := range qs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := idx.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer idx.controller.ReleaseWorker()

			res, err := query(q)
			if err != nil {
				return &BatchError{Query: i, cause: err}
			}
			out[i] = res
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	idx.metrics.RecordBatch(len(qs), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
