package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var order []string

	stopA := s.Every(100, func() { order = append(order, "a") })
	s.Every(250, func() { order = append(order, "b") })

	assert.Equal(t, 3, s.Advance(250))
	assert.Equal(t, []string{"a", "a", "b"}, order)

	stopA()
	stopA()
	assert.Equal(t, 1, s.Active())
	assert.Equal(t, 1, s.Advance(250))
	assert.Equal(t, []string{"a", "a", "b", "b"}, order)
	assert.EqualValues(t, 500, s.Now())

	noop := s.Every(0, func() { t.Fatal("zero period must not run") })
	noop()
	s.Advance(1000)
}

func TestTickerScheduler(t *testing.T) {
	ticks := make(chan struct{}, 8)
	stop := TickerScheduler{}.Every(time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("ticker scheduler never fired")
	}
	stop()
	stop()
}
