package limits

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfRange indicates a value lies outside its field's range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrNotFinite indicates a NaN or infinite value.
	ErrNotFinite = errors.New("value is not finite")
)

// Range is the closed interval of valid values for one settings field.
type Range struct {
	Name string
	Min  float64
	Max  float64
	Unit string
}

// Field ranges, in the units the settings record stores them in.
var (
	TargetLevel      = Range{Name: "targetLevel", Min: -24, Max: -6, Unit: "dB"}
	Threshold        = Range{Name: "threshold", Min: -60, Max: 0, Unit: "dB"}
	Ratio            = Range{Name: "ratio", Min: 1, Max: 20, Unit: ":1"}
	Knee             = Range{Name: "knee", Min: 0, Max: 40, Unit: "dB"}
	Attack           = Range{Name: "attack", Min: 0, Max: 200, Unit: "ms"}
	Release          = Range{Name: "release", Min: 10, Max: 1500, Unit: "ms"}
	MakeupGain       = Range{Name: "makeupGain", Min: 0, Max: 30, Unit: "dB"}
	PreGain          = Range{Name: "preGain", Min: -20, Max: 20, Unit: "dB"}
	LimiterThreshold = Range{Name: "limiterThreshold", Min: -20, Max: 0, Unit: "dB"}
)

// Contains reports whether v lies inside r.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Validate checks v against r without modifying it.
// Returns an error with the field name and bounds as context.
func Validate(r Range, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s = %v", ErrNotFinite, r.Name, v)
	}
	if !r.Contains(v) {
		return fmt.Errorf("%w: %s = %g %s, want %g..%g", ErrOutOfRange, r.Name, v, r.Unit, r.Min, r.Max)
	}
	return nil
}

// Clamp folds v into r. Non-finite values cannot be folded and return ErrNotFinite.
func Clamp(r Range, v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s = %v", ErrNotFinite, r.Name, v)
	}
	return math.Max(r.Min, math.Min(r.Max, v)), nil
}
