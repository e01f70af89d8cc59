// Package worker runs independent tasks on a bounded set of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/okian/mlerank/pkg/logger"
	"github.com/okian/mlerank/pkg/metrics"
)

// Task is one unit of work. Tasks must not depend on each other.
type Task func(ctx context.Context) error

// Pool fans tasks out to a fixed number of workers.
type Pool struct {
	size   int
	name   string
	logger logger.Logger
}

// NewPool creates a pool with one worker per CPU unless WithSize is given.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		size: runtime.NumCPU(),
		name: "worker-pool",
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Run executes tasks and waits for every started task to return.
//
// The first failing task cancels the context handed to the others, and tasks
// not yet started are skipped. Run returns that first error, or ctx's error
// if ctx ended before every task was started.
func (p *Pool) Run(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once    sync.Once
		first   error
		wg      sync.WaitGroup
		skipped atomic.Int64
	)
	fail := func(err error) {
		once.Do(func() {
			first = err
			cancel()
		})
	}

	queue := make(chan int)
	workers := min(p.size, len(tasks))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			p.work(runCtx, name, queue, tasks, fail, &skipped)
		}("worker-" + strconv.Itoa(w))
	}

	started := 0
feed:
	for i := range tasks {
		if runCtx.Err() != nil {
			break
		}
		select {
		case <-runCtx.Done():
			break feed
		case queue <- i:
			started++
		}
	}
	close(queue)
	wg.Wait()

	for i := started; i < len(tasks); i++ {
		metrics.RecordWorkerTask("skipped")
	}
	if first != nil {
		return first
	}
	if n := int64(len(tasks)-started) + skipped.Load(); n > 0 {
		return fmt.Errorf("%s: %d of %d tasks skipped: %w", p.name, n, len(tasks), ctx.Err())
	}
	return nil
}

func (p *Pool) work(ctx context.Context, name string, queue <-chan int, tasks []Task, fail func(error), skipped *atomic.Int64) {
	log := p.logger.Named(name)
	for i := range queue {
		if ctx.Err() != nil {
			skipped.Add(1)
			metrics.RecordWorkerTask("skipped")
			continue
		}
		metrics.AddWorkersBusy(1)
		err := tasks[i](ctx)
		metrics.AddWorkersBusy(-1)
		if err != nil {
			metrics.RecordWorkerTask("error")
			log.Debug(ctx, "task failed", logger.Int("task", i), logger.Error(err))
			fail(err)
			continue
		}
		metrics.RecordWorkerTask("ok")
	}
}
