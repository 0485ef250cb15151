package source

import (
	"sync"

	"github.com/opd-ai/leveler/interfaces"
)

// Notifier publishes source changes to a single consumer.
type Notifier struct {
	ch   chan interfaces.Source
	once sync.Once
}

// NewNotifier creates a notifier buffering up to buffer changes.
func NewNotifier(buffer int) *Notifier {
	return &Notifier{ch: make(chan interfaces.Source, buffer)}
}

// Sources implements interfaces.SourceNotifier.
func (n *Notifier) Sources() <-chan interfaces.Source { return n.ch }

// Publish announces a new source. It blocks while the buffer is full.
func (n *Notifier) Publish(src interfaces.Source) { n.ch <- src }

// Lost announces that the current source went away.
func (n *Notifier) Lost() { n.ch <- nil }

// Close ends the notification stream.
func (n *Notifier) Close() {
	n.once.Do(func() { close(n.ch) })
}
