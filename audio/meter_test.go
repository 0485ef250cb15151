package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelDB_Silence(t *testing.T) {
	block := make([]float64, AnalysisWindow)

	level := LevelDB(block)

	assert.False(t, math.IsNaN(level))
	assert.False(t, math.IsInf(level, 0))
	assert.InDelta(t, -200.0, level, 1e-9)
}

func TestLevelDB(t *testing.T) {
	tests := []struct {
		name  string
		block []float64
		want  float64
	}{
		{
			name:  "constant half scale",
			block: constantBlock(0.5, 512),
			want:  -6.0206,
		},
		{
			name:  "full scale square",
			block: []float64{1, -1, 1, -1},
			want:  0,
		},
		{
			name:  "full scale sine",
			block: sineBlock(1.0, 48, 4800),
			want:  -3.0103,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LevelDB(tt.block), 1e-3)
		})
	}
}

func TestRMS_Empty(t *testing.T) {
	assert.Equal(t, 0.0, RMS(nil))
}

func TestDBConversionsRoundTrip(t *testing.T) {
	for _, dB := range []float64{-24, -6, 0, 6, 12} {
		assert.InDelta(t, dB, ToDB(DBToLinear(dB)), 1e-9)
	}
}

func constantBlock(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// sineBlock returns n samples of a sine with the given amplitude and a
// period of `period` samples.
func sineBlock(amplitude float64, period, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return out
}
