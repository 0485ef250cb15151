package audio

import "math"

// snapDistance is how close a ramp must get before it lands on its target.
const snapDistance = 1e-9

// Ramp moves a value toward a target by exponential approach, one step per
// sample. After one time constant the remaining distance is 1/e of the
// original.
type Ramp struct {
	value  float64
	target float64
	coef   float64
}

// NewRamp creates a ramp resting at initial.
func NewRamp(initial float64) *Ramp {
	return &Ramp{value: initial, target: initial}
}

// SetTarget starts a new approach toward target. A non-positive time constant
// or sample rate jumps straight to the target.
func (r *Ramp) SetTarget(target, timeConstant, sampleRate float64) {
	r.target = target
	if timeConstant <= 0 || sampleRate <= 0 {
		r.value = target
		r.coef = 0
		return
	}
	r.coef = math.Exp(-1 / (timeConstant * sampleRate))
}

// Next advances the ramp by one sample and returns the new value.
func (r *Ramp) Next() float64 {
	if r.value == r.target {
		return r.value
	}
	r.value = r.target + (r.value-r.target)*r.coef
	if math.Abs(r.value-r.target) < snapDistance {
		r.value = r.target
	}
	return r.value
}

// Value returns the current value without advancing.
func (r *Ramp) Value() float64 { return r.value }

// Target returns the value the ramp is heading to.
func (r *Ramp) Target() float64 { return r.target }

// Settled reports whether the ramp has reached its target.
func (r *Ramp) Settled() bool { return r.value == r.target }
