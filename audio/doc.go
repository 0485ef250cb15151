// Package audio provides the signal-level building blocks of the leveler
// processing chain.
//
// # Level Meter
//
// RMS, ToDB and LevelDB estimate loudness of a block of time-domain samples:
//
//	level := audio.LevelDB(block) // 20*log10(max(rms, 1e-10))
//
// The epsilon floor keeps silence finite (-200 dB) so no NaN or -Inf reaches
// the control loop.
//
// # Stages
//
// Every processing stage implements Stage and transforms stereo frames in
// place. The package provides:
//
//   - GainStage: static or smoothly steered gain backed by a Ramp
//   - Compressor: soft-knee, stereo-linked feed-forward compressor
//   - NewLimiter: a Compressor preset approximating a brick wall
//   - Tap: a pass-through ring buffer the meters read from
//
// Stages hold no locks. The owner of a chain (see package graph) serializes
// Process calls against parameter changes.
//
// # Ramps
//
// Ramp is the exponential-approach primitive used for every gain change the
// listener could hear. A change is never applied as a step; the value moves
// toward its target with a stated time constant, per sample.
package audio
