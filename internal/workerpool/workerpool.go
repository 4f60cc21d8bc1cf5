// Package workerpool provides a bounded worker pool: P
// long-lived workers created once, to which array kernels dispatch
// contiguous index ranges. Operations block until every range completes;
// there is no cancellation. Output ranges are disjoint, so determinism is
// the caller's for free — workers never touch shared option state (callers
// snapshot it first and close over the snapshot).
package workerpool

import (
	"runtime"
	"sync"
)

// Pool is a fixed-size set of workers consuming closures from one queue.
type Pool struct {
	procs int
	tasks chan func()
	close sync.Once
}

// New starts a pool of procs workers (procs < 1 is clamped to 1; a
// single-worker pool runs everything inline on the submitting goroutine).
func New(procs int) *Pool {
	if procs < 1 {
		procs = 1
	}
	p := &Pool{procs: procs}
	if procs > 1 {
		p.tasks = make(chan func())
		for i := 0; i < procs; i++ {
			go func() {
				for task := range p.tasks {
					task()
				}
			}()
		}
	}
	return p
}

var (
	defaultPool *Pool
	defaultOnce sync.Once
)

// Default returns the process-wide pool, created on first use and sized to
// the hardware parallelism.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(runtime.GOMAXPROCS(0))
	})
	return defaultPool
}

// Procs reports the worker count.
func (p *Pool) Procs() int { return p.procs }

// Close stops the workers. Do(n, fn) calls after Close run inline.
func (p *Pool) Close() {
	p.close.Do(func() {
		if p.tasks != nil {
			close(p.tasks)
			p.tasks = nil
		}
	})
}

// minParallel is the smallest range worth fanning out; below it the
// dispatch overhead dominates and Do runs inline.
const minParallel = 1024

// Do partitions [0, n) into at most Procs contiguous ranges and runs
// fn(lo, hi) on each, blocking until all complete. fn must only write
// state owned by its own range.
func (p *Pool) Do(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p.tasks == nil || n < minParallel {
		fn(0, n)
		return
	}
	chunks := p.procs
	if chunks > n {
		chunks = n
	}
	size := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		lo, hi := lo, hi
		wg.Add(1)
		p.tasks <- func() {
			defer wg.Done()
			fn(lo, hi)
		}
	}
	wg.Wait()
}
