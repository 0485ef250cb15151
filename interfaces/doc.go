// Package interfaces defines the external capabilities the leveler core
// depends on. The core never discovers media, watches navigation or owns a
// timer itself; it is handed these collaborators instead.
//
// # Core Interfaces
//
// [Source] is a live, continuously decoded audio signal. Its Tap is exclusive:
// a source can feed exactly one graph, and a second Tap fails with
// [ErrSourceClaimed]:
//
//	stream, err := src.Tap()
//	if errors.Is(err, interfaces.ErrSourceClaimed) {
//	    // pick another source reference and retry
//	}
//
// [SourceNotifier] announces when a new source becomes available. A nil value
// on the channel means the current source went away:
//
//	for src := range notifier.Sources() {
//	    if src == nil {
//	        session.Unbind()
//	        continue
//	    }
//	    session.Bind(src)
//	}
//
// [Scheduler] invokes a callback every fixed period until stopped. Production
// code uses a ticker; tests advance a manual clock.
//
// # Thread Safety
//
// Implementations must tolerate Tap and Format being called from a different
// goroutine than the one that later streams audio. A Scheduler may run its
// callbacks on any goroutine, one at a time.
package interfaces
