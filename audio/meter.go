package audio

import "math"

const (
	// Epsilon is the linear floor applied before converting to decibels.
	Epsilon = 1e-10

	// AnalysisWindow is the number of mono samples a meter reads per tick.
	AnalysisWindow = 2048
)

// RMS returns the root-mean-square of samples. An empty block yields 0.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// ToDB converts a linear amplitude to decibels with the Epsilon floor.
func ToDB(linear float64) float64 {
	return 20 * math.Log10(math.Max(linear, Epsilon))
}

// DBToLinear converts decibels to a linear amplitude factor.
func DBToLinear(dB float64) float64 {
	return math.Pow(10, dB/20)
}

// LevelDB is the level meter: the RMS loudness of samples in dB.
func LevelDB(samples []float64) float64 {
	return ToDB(RMS(samples))
}
