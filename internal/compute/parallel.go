package compute

import (
	"runtime"
	"sync"
)

// ParallelBackend shards the outer particle (or sample point) index across
// worker goroutines. Every output element is produced by exactly one worker
// running the same sequential inner loop as the serial backend, so results
// are bit-identical regardless of worker count.
type ParallelBackend struct {
	workers int
}

func NewParallelBackend() *ParallelBackend {
	return &ParallelBackend{workers: runtime.NumCPU()}
}

func (c *ParallelBackend) Name() string    { return "parallel" }
func (c *ParallelBackend) Available() bool { return c.workers > 1 }

// Below this count the goroutine fan-out costs more than it saves.
const parallelMinN = 16

func (c *ParallelBackend) Accelerations(p Particles, prm Params) []float64 {
	n := p.N()
	acc := make([]float64, n*2)
	if n < parallelMinN {
		for i := 0; i < n; i++ {
			accumulateAcceleration(i, p, prm, acc)
		}
		return acc
	}
	c.shard(n, func(start, end int) {
		for i := start; i < end; i++ {
			accumulateAcceleration(i, p, prm, acc)
		}
	})
	return acc
}

func (c *ParallelBackend) FieldGrid(points []float64, p Particles, prm Params) []float64 {
	out := make([]float64, len(points))
	m := len(points) / 2
	if m < parallelMinN {
		for k := 0; k < m; k++ {
			accumulateField(k, points, p, prm, out)
		}
		return out
	}
	c.shard(m, func(start, end int) {
		for k := start; k < end; k++ {
			accumulateField(k, points, p, prm, out)
		}
	})
	return out
}

func (c *ParallelBackend) shard(n int, fn func(start, end int)) {
	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers
	for w := 0; w < c.workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
