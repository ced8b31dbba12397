package pipeline

import (
	"context"
	"sync"
)

type resizeJob struct {
	run  func()
	done chan struct{}
}

// Pool runs CPU-bound derive work on a fixed set of workers so request
// handlers are not starved when many uploads land at once. Each request
// still processes its buckets sequentially.
type Pool struct {
	jobs chan resizeJob
	wg   sync.WaitGroup

	closeOnce sync.Once
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	p := &Pool{
		jobs: make(chan resizeJob),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job.run()
		close(job.done)
	}
}

// Do blocks until a worker has executed fn or the context is cancelled
// while the job is still queued.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	job := resizeJob{run: fn, done: make(chan struct{})}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	}

	<-job.done
	return nil
}

func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
