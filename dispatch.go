package cohash

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

const (
	// minParallelBatch is the smallest number of items handed to one worker.
	minParallelBatch = 256
	// sinkBufferSize is the number of results a worker buffers before it
	// reserves space in the shared output.
	sinkBufferSize = 128
)

// dispatcher runs a kernel over [0, n) on a bounded set of goroutines and
// returns once every chunk has finished.
type dispatcher struct {
	workers int
}

func (d dispatcher) run(ctx context.Context, n int, kernel func(worker, start, end int)) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if n <= 0 {
		return nil
	}
	chunkSize, chunks := calcParallelism(n, minParallelBatch, max(d.workers, 1))
	if chunks == 1 {
		kernel(0, 0, n)
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	for c := range chunks {
		start := c * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			kernel(c, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	return nil
}

// outputSink collects results from many workers into one caller slice.
// Each worker flushes its local buffer into a range reserved with one
// atomic add.
type outputSink[T any] struct {
	out      []T
	off      atomic.Int64
	overflow atomic.Bool
}

func (s *outputSink[T]) flush(buf []T) []T {
	if len(buf) == 0 {
		return buf
	}
	end := int(s.off.Add(int64(len(buf))))
	start := end - len(buf)
	if end > len(s.out) {
		s.overflow.Store(true)
	}
	if start < len(s.out) {
		copy(s.out[start:], buf)
	}
	return buf[:0]
}

// push appends v to buf, flushing when the buffer is full.
func (s *outputSink[T]) push(buf []T, v T) []T {
	buf = append(buf, v)
	if len(buf) == cap(buf) {
		buf = s.flush(buf)
	}
	return buf
}

// result returns the number of elements written.
func (s *outputSink[T]) result() (int, error) {
	n := min(int(s.off.Load()), len(s.out))
	if s.overflow.Load() {
		return n, fmt.Errorf("%d results for %d slots: %w", s.off.Load(), len(s.out), ErrOutputTooSmall)
	}
	return n, nil
}

// countWhere runs a per-item predicate in parallel and returns the number
// of items for which it held.
func countWhere(ctx context.Context, d dispatcher, n int, op func(i int) bool) (int, error) {
	var total atomic.Int64
	err := d.run(ctx, n, func(_, start, end int) {
		local := 0
		for i := start; i < end; i++ {
			if op(i) {
				local++
			}
		}
		total.Add(int64(local))
	})
	return int(total.Load()), err
}
