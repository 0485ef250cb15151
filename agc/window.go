package agc

// Window is a fixed-capacity FIFO of loudness readings in dB. Pushing beyond
// capacity evicts the oldest reading.
type Window struct {
	buf   []float64
	start int
	count int
}

// NewWindow creates an empty window holding at most capacity readings.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends v, evicting the oldest reading when full.
func (w *Window) Push(v float64) {
	if w.count == len(w.buf) {
		w.buf[w.start] = v
		w.start = (w.start + 1) % len(w.buf)
	} else {
		w.buf[(w.start+w.count)%len(w.buf)] = v
		w.count++
	}
}

// Mean returns the arithmetic mean of the held readings, or 0 when empty.
func (w *Window) Mean() float64 {
	if w.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < w.count; i++ {
		sum += w.buf[(w.start+i)%len(w.buf)]
	}
	return sum / float64(w.count)
}

// Len returns the number of readings held.
func (w *Window) Len() int { return w.count }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Values returns the held readings, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Reset empties the window.
func (w *Window) Reset() {
	w.start = 0
	w.count = 0
}
