package audio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// GainStage applies a linear gain that follows a Ramp, so every change
// reaches the signal as a smooth glide rather than a step.
type GainStage struct {
	name       string
	sampleRate float64
	ramp       *Ramp
}

// NewGainStage creates a unity-gain stage.
//
// Parameters:
//   - name: Stage name reported by Name and used in routing topology
//   - sampleRate: Rate in Hz the ramp time constants are evaluated at
//
// Returns:
//   - *GainStage: Stage passing audio through at unity gain
func NewGainStage(name string, sampleRate float64) *GainStage {
	logrus.WithFields(logrus.Fields{
		"function":    "NewGainStage",
		"name":        name,
		"sample_rate": sampleRate,
	}).Debug("Creating gain stage")

	return &GainStage{
		name:       name,
		sampleRate: sampleRate,
		ramp:       NewRamp(1),
	}
}

// SetGainDB steers the stage toward the gain given in dB.
func (g *GainStage) SetGainDB(dB, timeConstant float64) {
	g.SetLinear(DBToLinear(dB), timeConstant)
}

// SetLinear steers the stage toward a linear gain factor. Negative factors
// are treated as silence.
func (g *GainStage) SetLinear(gain, timeConstant float64) {
	if gain < 0 {
		gain = 0
	}
	g.ramp.SetTarget(gain, timeConstant, g.sampleRate)
}

// Gain returns the linear gain currently being applied.
func (g *GainStage) Gain() float64 { return g.ramp.Value() }

// Target returns the linear gain the stage is heading to.
func (g *GainStage) Target() float64 { return g.ramp.Target() }

// Name returns the stage name.
func (g *GainStage) Name() string { return g.name }

// String formats the stage for logs.
func (g *GainStage) String() string {
	return fmt.Sprintf("%s(%.3f)", g.name, g.ramp.Value())
}

// Process multiplies each frame by the ramped gain.
func (g *GainStage) Process(samples [][2]float64) {
	if g.ramp.Settled() {
		gain := g.ramp.Value()
		if gain == 1 {
			return
		}
		for i := range samples {
			samples[i][0] *= gain
			samples[i][1] *= gain
		}
		return
	}
	for i := range samples {
		gain := g.ramp.Next()
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
}
