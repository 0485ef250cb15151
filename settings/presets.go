package settings

// Tuple holds the values a preset fixes.
type Tuple struct {
	Threshold   float64
	Ratio       float64
	Knee        float64
	Attack      float64
	Release     float64
	MakeupGain  float64
	AutoGain    bool
	TargetLevel float64
}

var presetTable = map[PresetName]Tuple{
	PresetLight: {
		Threshold: -18, Ratio: 2, Knee: 20, Attack: 10, Release: 300,
		MakeupGain: 2, AutoGain: true, TargetLevel: -16,
	},
	PresetMedium: {
		Threshold: -24, Ratio: 4, Knee: 10, Attack: 3, Release: 250,
		MakeupGain: 6, AutoGain: true, TargetLevel: -14,
	},
	PresetHeavy: {
		Threshold: -35, Ratio: 10, Knee: 5, Attack: 1, Release: 150,
		MakeupGain: 12, AutoGain: true, TargetLevel: -11,
	},
}

// LookupPreset returns the tuple of a named preset. PresetCustom and unknown
// names report false.
func LookupPreset(name PresetName) (Tuple, bool) {
	t, ok := presetTable[name]
	return t, ok
}

// Presets lists the named presets from lightest to heaviest.
func Presets() []PresetName {
	return []PresetName{PresetLight, PresetMedium, PresetHeavy}
}
