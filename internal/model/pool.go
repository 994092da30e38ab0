package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
)

var ErrPoolClosed = errors.New("inference pool closed")

// Engine produces logits for one encoded input.
type Engine interface {
	Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error)
	Close() error
}

// Pool queues inference requests onto a fixed set of runners. With one
// runner every forward pass is serialized.
type Pool struct {
	wp      *workerpool.WorkerPool
	runners chan Runner
	size    int

	// mu guards closed and keeps Submit from racing StopWait.
	mu     sync.RWMutex
	closed bool
}

func NewPool(runners []Runner) (*Pool, error) {
	if len(runners) == 0 {
		return nil, errors.New("inference pool needs at least one runner")
	}

	free := make(chan Runner, len(runners))
	for _, r := range runners {
		free <- r
	}

	return &Pool{
		wp:      workerpool.New(len(runners)),
		runners: free,
		size:    len(runners),
	}, nil
}

type inferResult struct {
	logits []float32
	err    error
}

// Infer waits for a free runner. If ctx ends first it returns ctx.Err(); a
// task that is already queued still runs but its result is dropped.
func (p *Pool) Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, ErrPoolClosed
	}

	done := make(chan inferResult, 1)
	p.wp.Submit(func() {
		if err := ctx.Err(); err != nil {
			done <- inferResult{err: err}
			return
		}

		r := <-p.runners
		defer func() { p.runners <- r }()

		logits, err := r.Run(inputIDs, attentionMask)
		done <- inferResult{logits: logits, err: err}
	})
	p.mu.RUnlock()

	select {
	case res := <-done:
		return res.logits, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size is the number of runners.
func (p *Pool) Size() int { return p.size }

// Close drains queued tasks and then closes every runner. Later calls to
// Infer return ErrPoolClosed; closing twice is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wp.StopWait()

	var errs []error
	for i := 0; i < p.size; i++ {
		r := <-p.runners
		if err := r.Close(); err != nil {
			errs = append(errs, fmt.Errorf("runner %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
