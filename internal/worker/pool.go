package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Job is one network push. Its return value travels back in Result.Value.
type Job func(ctx context.Context) (any, error)

// Handle identifies a submitted job.
type Handle struct {
	ID   uint64
	Desc string
}

type Result struct {
	Handle Handle
	Value  any
	Err    error
}

// Pool runs every submitted job on its own goroutine. Only the most recent
// handle is remembered; older jobs are not cancelled and their results are
// still delivered, in completion order, on Results.
type Pool struct {
	logger  *zap.Logger
	results chan Result
	wg      sync.WaitGroup
	stop    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc

	seq     atomic.Uint64
	mu      sync.Mutex
	current *Handle
	stopped bool
}

func NewPool(logger *zap.Logger, buffer int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		logger:  logger,
		results: make(chan Result, buffer),
		stop:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Pool) Results() <-chan Result {
	return p.results
}

// Current returns the handle of the last submitted job, or nil once it has
// been cleared.
func (p *Pool) Current() *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	h := *p.current
	return &h
}

// Clear forgets the current handle without touching the job itself.
func (p *Pool) Clear() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
}

// ClearIf forgets the current handle only if it is still id.
func (p *Pool) ClearIf(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil || p.current.ID != id {
		return false
	}
	p.current = nil
	return true
}

// Submit starts job on its own goroutine. After Stop the job is dropped
// and the zero Handle is returned.
func (p *Pool) Submit(desc string, job Job) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		p.logger.Warn("job submitted after stop", zap.String("desc", desc))
		return Handle{}
	}

	h := Handle{ID: p.seq.Add(1), Desc: desc}
	p.current = &h
	p.wg.Add(1)
	go p.run(h, job)
	return h
}

func (p *Pool) run(h Handle, job Job) {
	defer p.wg.Done()

	v, err := job(p.ctx)
	if err != nil {
		p.logger.Debug("job failed", zap.Uint64("job", h.ID), zap.String("desc", h.Desc), zap.Error(err))
	}

	select {
	case p.results <- Result{Handle: h, Value: v, Err: err}:
	case <-p.stop:
	}
}

// Stop cancels the jobs' context, waits for every goroutine and closes
// Results. Undelivered results are dropped. Calling it twice is a no-op.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.logger.Debug("Stopping dispatcher...")
	close(p.stop)
	p.cancel()
	p.wg.Wait()
	close(p.results)
	p.logger.Debug("Dispatcher stopped")
}
