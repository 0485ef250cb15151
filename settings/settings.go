package settings

import (
	"math"

	"github.com/opd-ai/leveler/limits"
	"github.com/sirupsen/logrus"
)

// PresetName identifies an entry of the preset table, or PresetCustom.
type PresetName string

// Preset names.
const (
	PresetLight  PresetName = "light"
	PresetMedium PresetName = "medium"
	PresetHeavy  PresetName = "heavy"
	PresetCustom PresetName = "custom"
)

// Settings is the flat, versionless configuration record. Gains and levels
// are in dB, attack and release in milliseconds.
type Settings struct {
	Enabled          bool       `json:"enabled"`
	Preset           PresetName `json:"preset"`
	AutoGain         bool       `json:"autoGain"`
	TargetLevel      float64    `json:"targetLevel"`
	Threshold        float64    `json:"threshold"`
	Ratio            float64    `json:"ratio"`
	Knee             float64    `json:"knee"`
	Attack           float64    `json:"attack"`
	Release          float64    `json:"release"`
	MakeupGain       float64    `json:"makeupGain"`
	PreGain          float64    `json:"preGain"`
	LimiterThreshold float64    `json:"limiterThreshold"`
}

// Defaults returns the hard-coded default record.
func Defaults() Settings {
	return Settings{
		Enabled:          true,
		Preset:           PresetMedium,
		AutoGain:         true,
		TargetLevel:      -14,
		Threshold:        -24,
		Ratio:            4,
		Knee:             10,
		Attack:           3,
		Release:          250,
		MakeupGain:       6,
		PreGain:          0,
		LimiterThreshold: -1,
	}
}

// Tuple returns the fields governed by presets.
func (s Settings) Tuple() Tuple {
	return Tuple{
		Threshold:   s.Threshold,
		Ratio:       s.Ratio,
		Knee:        s.Knee,
		Attack:      s.Attack,
		Release:     s.Release,
		MakeupGain:  s.MakeupGain,
		AutoGain:    s.AutoGain,
		TargetLevel: s.TargetLevel,
	}
}

// withTuple returns s with the preset-governed fields replaced.
func (s Settings) withTuple(t Tuple) Settings {
	s.Threshold = t.Threshold
	s.Ratio = t.Ratio
	s.Knee = t.Knee
	s.Attack = t.Attack
	s.Release = t.Release
	s.MakeupGain = t.MakeupGain
	s.AutoGain = t.AutoGain
	s.TargetLevel = t.TargetLevel
	return s
}

// normalizePreset downgrades a named preset to custom when the tuple no
// longer matches it.
func (s Settings) normalizePreset() Settings {
	if s.Preset == PresetCustom {
		return s
	}
	tuple, ok := LookupPreset(s.Preset)
	if !ok || s.Tuple() != tuple {
		s.Preset = PresetCustom
	}
	return s
}

// Partial is a field-wise update. Nil fields are left untouched.
type Partial struct {
	Enabled          *bool       `json:"enabled,omitempty"`
	Preset           *PresetName `json:"preset,omitempty"`
	AutoGain         *bool       `json:"autoGain,omitempty"`
	TargetLevel      *float64    `json:"targetLevel,omitempty"`
	Threshold        *float64    `json:"threshold,omitempty"`
	Ratio            *float64    `json:"ratio,omitempty"`
	Knee             *float64    `json:"knee,omitempty"`
	Attack           *float64    `json:"attack,omitempty"`
	Release          *float64    `json:"release,omitempty"`
	MakeupGain       *float64    `json:"makeupGain,omitempty"`
	PreGain          *float64    `json:"preGain,omitempty"`
	LimiterThreshold *float64    `json:"limiterThreshold,omitempty"`
}

// PartialOf returns a Partial that sets every field of s.
func PartialOf(s Settings) Partial {
	return Partial{
		Enabled:          &s.Enabled,
		Preset:           &s.Preset,
		AutoGain:         &s.AutoGain,
		TargetLevel:      &s.TargetLevel,
		Threshold:        &s.Threshold,
		Ratio:            &s.Ratio,
		Knee:             &s.Knee,
		Attack:           &s.Attack,
		Release:          &s.Release,
		MakeupGain:       &s.MakeupGain,
		PreGain:          &s.PreGain,
		LimiterThreshold: &s.LimiterThreshold,
	}
}

// numericFields pairs every numeric field of p with its range.
func (p *Partial) numericFields() []struct {
	r limits.Range
	v **float64
} {
	return []struct {
		r limits.Range
		v **float64
	}{
		{limits.TargetLevel, &p.TargetLevel},
		{limits.Threshold, &p.Threshold},
		{limits.Ratio, &p.Ratio},
		{limits.Knee, &p.Knee},
		{limits.Attack, &p.Attack},
		{limits.Release, &p.Release},
		{limits.MakeupGain, &p.MakeupGain},
		{limits.PreGain, &p.PreGain},
		{limits.LimiterThreshold, &p.LimiterThreshold},
	}
}

// Sanitize clamps every supplied numeric field into its range and drops
// non-finite ones. The receiver is not modified.
func (p Partial) Sanitize() Partial {
	for _, f := range p.numericFields() {
		if *f.v == nil {
			continue
		}
		v, err := limits.Clamp(f.r, **f.v)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Partial.Sanitize",
				"field":    f.r.Name,
				"error":    err.Error(),
			}).Warn("Dropping non-finite settings field")
			*f.v = nil
			continue
		}
		if v != **f.v {
			logrus.WithFields(logrus.Fields{
				"function": "Partial.Sanitize",
				"field":    f.r.Name,
				"value":    **f.v,
				"clamped":  v,
			}).Debug("Clamped settings field into range")
		}
		*f.v = &v
	}
	return p
}

// overlay copies every supplied field except Preset onto s.
func (p Partial) overlay(s Settings) Settings {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.AutoGain != nil {
		s.AutoGain = *p.AutoGain
	}
	setFloat(&s.TargetLevel, p.TargetLevel)
	setFloat(&s.Threshold, p.Threshold)
	setFloat(&s.Ratio, p.Ratio)
	setFloat(&s.Knee, p.Knee)
	setFloat(&s.Attack, p.Attack)
	setFloat(&s.Release, p.Release)
	setFloat(&s.MakeupGain, p.MakeupGain)
	setFloat(&s.PreGain, p.PreGain)
	setFloat(&s.LimiterThreshold, p.LimiterThreshold)
	return s
}

func setFloat(dst *float64, v *float64) {
	if v != nil && !math.IsNaN(*v) {
		*dst = *v
	}
}
