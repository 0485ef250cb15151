// Package agc implements the slow auto-gain control loop that levels
// long-term loudness toward a target.
//
// Each tick the controller pushes the measured input loudness onto a rolling
// window, derives the correction needed to bring the window mean to the
// target and moves its running gain value a fixed fraction of the way toward
// that correction. Ticks whose input is below the silence floor leave the
// controller untouched so gaps in the programme are not boosted.
package agc

import (
	"math"

	"github.com/opd-ai/leveler/audio"
	"github.com/sirupsen/logrus"
)

// Controller defaults.
const (
	WindowSize   = 20     // readings, ~2 s at a 100 ms tick
	Smoothing    = 0.08   // fraction of the remaining correction per tick
	MaxGainDB    = 24.0   // clamp for the running value, both directions
	SilenceFloor = 0.0005 // linear RMS at or below which ticks are ignored
)

// Controller holds the rolling window and the running auto-gain value.
// It is not safe for concurrent use.
type Controller struct {
	window *Window
	value  float64 // dB
}

// New creates a controller with an empty window and 0 dB of gain.
func New() *Controller {
	return &Controller{window: NewWindow(WindowSize)}
}

// Observe feeds one tick's input RMS (linear) and the target loudness (dB).
//
// The level is pushed into the rolling window and the running gain moves
// a Smoothing fraction of the way toward targetDB minus the window mean,
// clamped to ±MaxGainDB. Input at or below SilenceFloor, or NaN input,
// leaves both the window and the gain untouched.
//
// Parameters:
//   - inputRMS: Linear RMS of the most recent analysis window
//   - targetDB: Desired loudness in dBFS
//
// Returns:
//   - float64: Running auto-gain in dB after this observation
//   - bool: False when the tick was frozen and nothing changed
func (c *Controller) Observe(inputRMS, targetDB float64) (float64, bool) {
	if math.IsNaN(inputRMS) || math.IsNaN(targetDB) || inputRMS <= SilenceFloor {
		return c.value, false
	}

	level := audio.ToDB(inputRMS)
	c.window.Push(level)

	avg := c.window.Mean()
	desired := targetDB - avg
	c.value += (desired - c.value) * Smoothing
	c.value = math.Max(-MaxGainDB, math.Min(MaxGainDB, c.value))

	logrus.WithFields(logrus.Fields{
		"function":  "Controller.Observe",
		"level_db":  level,
		"window_db": avg,
		"target_db": targetDB,
		"gain_db":   c.value,
	}).Debug("Auto-gain updated")

	return c.value, true
}

// Value returns the running gain in dB.
func (c *Controller) Value() float64 { return c.value }

// Window exposes the rolling loudness window.
func (c *Controller) Window() *Window { return c.window }

// Reset clears the window and returns the running value to 0 dB.
func (c *Controller) Reset() {
	c.window.Reset()
	c.value = 0
}
