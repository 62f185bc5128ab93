package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const defaultChunkSize = 256

// Selector applies a filter to a slice of items. Inputs longer than
// ChunkSize are split into chunks matched on up to Workers goroutines; the
// result keeps input order either way. The zero value is ready to use.
type Selector struct {
	Workers   int // defaults to GOMAXPROCS
	ChunkSize int
}

// Select returns the items f matches.
func (s Selector) Select(ctx context.Context, f Filter, items []Item) ([]Item, error) {
	chunk := s.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}
	if len(items) <= chunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return keep(f, items), nil
	}

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	parts := make([][]Item, (len(items)+chunk-1)/chunk)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range parts {
		lo := i * chunk
		hi := min(lo+chunk, len(items))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts[i] = keep(f, items[lo:hi])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]Item, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

func keep(f Filter, items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}
