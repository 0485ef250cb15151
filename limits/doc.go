// Package limits provides the centralized value ranges for every tunable
// field of the leveler settings record, plus validation and clamping helpers.
//
// # Ranges
//
// The ranges mirror what the control surface enforces on its sliders:
//
//   - TargetLevel: -24 .. -6 dB
//   - Threshold: -60 .. 0 dB
//   - Ratio: 1 .. 20
//   - Knee: 0 .. 40 dB
//   - Attack: 0 .. 200 ms
//   - Release: 10 .. 1500 ms
//   - MakeupGain: 0 .. 30 dB
//   - PreGain: -20 .. 20 dB
//   - LimiterThreshold: -20 .. 0 dB
//
// The core assumes values arrive pre-validated, but it never trusts that.
// Clamp folds an out-of-range value back into its range; non-finite values are
// rejected outright because there is no sensible place to fold NaN into:
//
//	v, err := limits.Clamp(limits.Ratio, 0.5) // v == 1, err == nil
//	_, err = limits.Clamp(limits.Ratio, math.NaN()) // errors.Is(err, limits.ErrNotFinite)
//
// Validate reports ErrOutOfRange instead of folding, for callers that want to
// reject bad input rather than repair it.
package limits
