package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

type fakeTokenizer struct {
	maxLength int
	err       error
	calls     []string
	mu        sync.Mutex
}

func (f *fakeTokenizer) Encode(text string) ([]int64, []int64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.err != nil {
		return nil, nil, f.err
	}

	ids := make([]int64, f.maxLength)
	mask := make([]int64, f.maxLength)
	for i, r := range []rune(text) {
		if i >= f.maxLength {
			break
		}
		ids[i] = int64(r)
		mask[i] = 1
	}
	return ids, mask, nil
}

// fakeRunner scores text by its first token: even → NON_JUDI, odd → JUDI.
type fakeRunner struct {
	err     error
	active  atomic.Int32
	maxSeen atomic.Int32
	closed  atomic.Bool
	block   chan struct{}
}

func (f *fakeRunner) Run(inputIDs, attentionMask []int64) ([]float32, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	if len(inputIDs) > 0 && inputIDs[0]%2 == 1 {
		return []float32{-1, 2}, nil
	}
	return []float32{2, -1}, nil
}

func (f *fakeRunner) Close() error {
	f.closed.Store(true)
	return nil
}

type fakeEngine struct {
	logits []float32
	err    error
	closed bool
}

func (f *fakeEngine) Infer(ctx context.Context, inputIDs, attentionMask []int64) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.logits, f.err
}

func (f *fakeEngine) Close() error {
	f.closed = true
	return nil
}

var errBoom = errors.New("boom")
