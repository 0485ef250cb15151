package store

import (
	"context"
	"sync"

	"github.com/opd-ai/leveler/settings"
	"github.com/sirupsen/logrus"
)

// Async performs saves on a background goroutine. Only the newest pending
// record is written; older ones queued behind a slow write are dropped.
type Async struct {
	inner settings.Store

	mu      sync.Mutex
	pending *settings.Settings
	closed  bool

	wake chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
}

// NewAsync starts the writer goroutine for inner.
func NewAsync(inner settings.Store) *Async {
	a := &Async{
		inner: inner,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// Load reads through to the wrapped store.
func (a *Async) Load(ctx context.Context) (settings.Partial, error) {
	return a.inner.Load(ctx)
}

// Save queues s and returns immediately.
func (a *Async) Save(_ context.Context, s settings.Settings) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.pending = &s
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

func (a *Async) run() {
	defer a.wg.Done()
	for {
		select {
		case <-a.wake:
			a.flush()
		case <-a.done:
			a.flush()
			return
		}
	}
}

func (a *Async) flush() {
	a.mu.Lock()
	next := a.pending
	a.pending = nil
	a.mu.Unlock()

	if next == nil {
		return
	}
	if err := a.inner.Save(context.Background(), *next); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Async.flush",
			"error":    err.Error(),
		}).Warn("Background settings save failed")
	}
}

// Close writes any pending record and stops the writer. It is safe to call
// more than once.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.done)
	a.wg.Wait()
	return nil
}
