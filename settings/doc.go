// Package settings implements the parameter bank: the single settings record
// that configures the processing chain, the fixed preset table, and the rules
// that keep the preset name honest.
//
// # Preset invariant
//
// When Preset is not PresetCustom, the preset tuple fields (threshold, ratio,
// knee, attack, release, makeup gain, auto-gain flag and target level) equal
// the named preset's values exactly. Only an explicit preset selection sets a
// non-custom name; a manual edit that happens to land on a preset's values
// stays custom.
//
// # Side effects
//
// Every mutation that changes the record is written to the Store (fire and
// forget) and reported to the change listeners, which is how the signal graph
// learns about new parameters:
//
//	bank := settings.NewBank(store)
//	bank.OnChange(func(prev, next settings.Settings) {
//	    g.ApplyParameters(next)
//	})
//	bank.ApplyPreset(settings.PresetHeavy)
//
// A Bank is not safe for concurrent use; the session serializes access.
package settings
