package audio

// Tap is a pass-through stage that copies a mono mix of every frame into a
// ring buffer. Meters read the most recent block from it.
type Tap struct {
	name string
	buf  []float64
	pos  int
	size int
}

// NewTap creates a tap holding the last size mono samples.
func NewTap(name string, size int) *Tap {
	if size < 1 {
		size = AnalysisWindow
	}
	return &Tap{
		name: name,
		buf:  make([]float64, size),
		size: size,
	}
}

// Name returns the stage name.
func (t *Tap) Name() string { return t.name }

// Process records the frames without changing them.
func (t *Tap) Process(samples [][2]float64) {
	for i := range samples {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
}

// Samples returns the last n samples in chronological order.
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	out := make([]float64, n)
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(start+i)%t.size]
	}
	return out
}

// Reset zeroes the buffer.
func (t *Tap) Reset() {
	clear(t.buf)
	t.pos = 0
}
