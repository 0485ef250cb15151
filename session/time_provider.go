package session

import "time"

// TimeProvider supplies the current time and tickers. Tests substitute a
// deterministic implementation.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time
	// NewTicker creates a ticker firing at the given interval.
	NewTicker(d time.Duration) *time.Ticker
}

// RealTimeProvider implements TimeProvider using the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// NewTicker creates a ticker using the standard library.
func (RealTimeProvider) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// getTimeProvider returns tp, or the real clock when tp is nil.
func getTimeProvider(tp TimeProvider) TimeProvider {
	if tp != nil {
		return tp
	}
	return RealTimeProvider{}
}
