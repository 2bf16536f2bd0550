package backend

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by DetailLoader.Load when a newer Load or Close
// made the result irrelevant. The result is not applied to the loader state.
var ErrSuperseded = errors.New("fetch superseded")

// Fetcher loads the detail record for a slug.
type Fetcher[T any] func(ctx context.Context, slug string) (T, error)

// DetailState is the loader's view of the entity currently shown.
type DetailState[T any] struct {
	Slug    string
	Data    T
	Err     error
	Loading bool
}

// DetailLoader fetches slug-keyed detail records for a single view. Starting a
// fetch for a new slug cancels the previous one, and closing the loader
// cancels whatever is in flight, so a slow response for an old slug can never
// overwrite the state of the current one.
type DetailLoader[T any] struct {
	fetch Fetcher[T]

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	closed bool
	state  DetailState[T]
}

// NewDetailLoader creates a loader around fetch.
func NewDetailLoader[T any](fetch Fetcher[T]) *DetailLoader[T] {
	return &DetailLoader[T]{fetch: fetch}
}

// Load fetches slug, blocking until the fetch finishes or is superseded.
func (l *DetailLoader[T]) Load(ctx context.Context, slug string) (T, error) {
	var zero T

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return zero, ErrSuperseded
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.state = DetailState[T]{Slug: slug, Loading: true}
	l.mu.Unlock()

	data, err := l.fetch(fetchCtx, slug)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()

	if l.closed || seq != l.seq {
		return zero, ErrSuperseded
	}
	l.cancel = nil
	l.state = DetailState[T]{Slug: slug, Data: data, Err: err}

	return data, err
}

// State returns the current state.
func (l *DetailLoader[T]) State() DetailState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close cancels any in-flight fetch. Later loads return ErrSuperseded.
func (l *DetailLoader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}
