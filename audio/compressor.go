package audio

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Fixed limiter configuration. Only the threshold is exposed to users.
const (
	LimiterRatio   = 20.0
	LimiterKnee    = 0.0
	LimiterAttack  = 0.001 // seconds
	LimiterRelease = 0.010 // seconds
)

// Compressor implements a feed-forward, stereo-linked compressor with a
// quadratic soft knee. Gain reduction is computed in the dB domain from the
// louder channel of each frame and smoothed with separate attack and release
// time constants before it is applied.
type Compressor struct {
	name       string
	sampleRate float64

	threshold float64 // dB
	ratio     float64
	knee      float64 // dB
	attack    float64 // seconds
	release   float64 // seconds

	attackCoef  float64
	releaseCoef float64

	// reduction is the smoothed gain reduction in dB, always <= 0.
	reduction float64
}

// NewCompressor creates a compressor with a neutral 1:1 ratio.
//
// The compressor applies no reduction until SetParameters configures a
// ratio above 1.
//
// Parameters:
//   - name: Stage name reported by Name and used in routing topology
//   - sampleRate: Rate in Hz the attack and release coefficients are derived for
//
// Returns:
//   - *Compressor: New compressor with 0 dB threshold, 1:1 ratio and hard knee
func NewCompressor(name string, sampleRate float64) *Compressor {
	logrus.WithFields(logrus.Fields{
		"function":    "NewCompressor",
		"name":        name,
		"sample_rate": sampleRate,
	}).Debug("Creating compressor")

	c := &Compressor{
		name:       name,
		sampleRate: sampleRate,
	}
	c.SetParameters(0, 1, 0, 0, 0)
	return c
}

// NewLimiter creates a compressor locked to the aggressive limiter
// configuration: 20:1, hard knee, 1 ms attack, 10 ms release.
func NewLimiter(sampleRate float64) *Compressor {
	l := NewCompressor("limiter", sampleRate)
	l.SetParameters(-1, LimiterRatio, LimiterKnee, LimiterAttack, LimiterRelease)
	return l
}

// SetParameters updates all shaping parameters at once. The ratio is floored
// at 1 and negative knee or time values are treated as 0.
func (c *Compressor) SetParameters(thresholdDB, ratio, kneeDB, attackSec, releaseSec float64) {
	c.threshold = thresholdDB
	c.ratio = math.Max(1, ratio)
	c.knee = math.Max(0, kneeDB)
	c.attack = math.Max(0, attackSec)
	c.release = math.Max(0, releaseSec)
	c.attackCoef = timeCoefficient(c.attack, c.sampleRate)
	c.releaseCoef = timeCoefficient(c.release, c.sampleRate)
}

// SetThreshold moves the threshold and keeps every other parameter.
func (c *Compressor) SetThreshold(thresholdDB float64) {
	c.threshold = thresholdDB
}

// timeCoefficient returns the one-pole smoothing coefficient for a time
// constant. Zero means the detector follows instantly.
func timeCoefficient(seconds, sampleRate float64) float64 {
	if seconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return math.Exp(-1 / (seconds * sampleRate))
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.threshold }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Knee returns the knee width in dB.
func (c *Compressor) Knee() float64 { return c.knee }

// Attack returns the attack time in seconds.
func (c *Compressor) Attack() float64 { return c.attack }

// Release returns the release time in seconds.
func (c *Compressor) Release() float64 { return c.release }

// Reduction returns the current gain reduction in dB (<= 0).
func (c *Compressor) Reduction() float64 { return c.reduction }

// Name returns the stage name.
func (c *Compressor) Name() string { return c.name }

// String formats the stage for logs.
func (c *Compressor) String() string {
	return fmt.Sprintf("%s(%.1fdB %.1f:1 knee %.1fdB)", c.name, c.threshold, c.ratio, c.knee)
}

// StaticReduction returns the steady-state gain reduction in dB for a
// constant input level, ignoring attack and release.
func (c *Compressor) StaticReduction(levelDB float64) float64 {
	over := levelDB - c.threshold
	slope := 1/c.ratio - 1

	if c.knee > 0 && 2*math.Abs(over) <= c.knee {
		x := over + c.knee/2
		return slope * x * x / (2 * c.knee)
	}
	if over > 0 {
		return slope * over
	}
	return 0
}

// Process compresses the frames in place.
func (c *Compressor) Process(samples [][2]float64) {
	for i := range samples {
		peak := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))
		target := c.StaticReduction(ToDB(peak))

		coef := c.releaseCoef
		if target < c.reduction {
			coef = c.attackCoef
		}
		c.reduction = target + (c.reduction-target)*coef

		gain := DBToLinear(c.reduction)
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
}

// Reset clears the detector state.
func (c *Compressor) Reset() {
	c.reduction = 0
}
