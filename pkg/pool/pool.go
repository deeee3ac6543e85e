// Package pool runs the per-party work of a protocol round on a fixed set of goroutines.
package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of workers reading tasks from a shared channel.
//
// Functions taking a *Pool accept nil, and then run on the calling goroutine.
// Tasks must not wait on other tasks of the same pool.
type Pool struct {
	tasks   chan func()
	workers int
}

// NewPool starts count workers, or one per CPU if count <= 0.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tasks:   make(chan func()),
		workers: count,
	}
	for i := 0; i < count; i++ {
		go func() {
			for task := range p.tasks {
				task()
			}
		}()
	}
	return p
}

// Workers returns the number of goroutines of the pool, 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// TearDown stops the workers once their current task is done.
func (p *Pool) TearDown() {
	close(p.tasks)
}

// Map calls f(0), ..., f(count-1) on the pool and returns the results in index order.
func Map[T any](p *Pool, count int, f func(int) T) []T {
	out := make([]T, count)
	if p == nil {
		for i := range out {
			out[i] = f(i)
		}
		return out
	}
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.tasks <- func() {
			defer wg.Done()
			out[i] = f(i)
		}
	}
	wg.Wait()
	return out
}

// Search calls try on every worker until count candidates are accepted.
//
// The order of the results depends on scheduling.
func Search[T any](p *Pool, count int, try func() (T, bool)) []T {
	out := make([]T, 0, count)
	if p == nil {
		for len(out) < count {
			if v, ok := try(); ok {
				out = append(out, v)
			}
		}
		return out
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		remaining atomic.Int64
	)
	remaining.Store(int64(count))
	wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		p.tasks <- func() {
			defer wg.Done()
			for remaining.Load() > 0 {
				v, ok := try()
				if !ok {
					continue
				}
				if remaining.Add(-1) < 0 {
					return
				}
				mu.Lock()
				out = append(out, v)
				mu.Unlock()
			}
		}
	}
	wg.Wait()
	return out
}

// LockedReader serialises reads from an io.Reader shared by several workers.
type LockedReader struct {
	mu     sync.Mutex
	reader io.Reader
}

func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

func (r *LockedReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reader.Read(p)
}
