package settings

import (
	"context"

	"github.com/sirupsen/logrus"
)

// ChangeFunc observes a committed settings change.
type ChangeFunc func(prev, next Settings)

// Bank holds the authoritative settings record.
type Bank struct {
	current   Settings
	store     Store
	listeners []ChangeFunc
}

// NewBank creates a bank holding the defaults. A nil store disables
// persistence.
func NewBank(store Store) *Bank {
	return &Bank{
		current: Defaults(),
		store:   store,
	}
}

// OnChange registers a listener called after every committed change.
func (b *Bank) OnChange(fn ChangeFunc) {
	b.listeners = append(b.listeners, fn)
}

// Current returns a copy of the current record.
func (b *Bank) Current() Settings {
	return b.current
}

// LoadDefaults returns the hard-coded default record without applying it.
func (b *Bank) LoadDefaults() Settings {
	return Defaults()
}

// Restore replaces the record with the defaults overlaid by stored fields.
// It is used once at session start and does not write back to the store.
func (b *Bank) Restore(p Partial) Settings {
	p = p.Sanitize()

	next := p.overlay(Defaults())
	if p.Preset != nil {
		if _, ok := LookupPreset(*p.Preset); ok || *p.Preset == PresetCustom {
			next.Preset = *p.Preset
		}
	}
	next = next.normalizePreset()

	logrus.WithFields(logrus.Fields{
		"function": "Bank.Restore",
		"preset":   next.Preset,
		"enabled":  next.Enabled,
	}).Info("Settings restored")

	b.commit(next, false)
	return b.current
}

// Merge applies a partial update.
//
// A known preset name in the update is applied atomically first (tuple,
// name and enabled=true), then the remaining supplied fields are laid over
// it. Whenever the resulting tuple differs from the named preset the record
// becomes custom. Unknown preset names are ignored. Out-of-range values are
// clamped and non-finite values dropped before anything is applied.
//
// A changed record is persisted through the store and reported to every
// OnChange listener; an update that changes nothing does neither.
//
// Parameters:
//   - p: Fields to change; nil fields keep their current value
//
// Returns:
//   - Settings: The record after the update
func (b *Bank) Merge(p Partial) Settings {
	p = p.Sanitize()
	next := b.current

	if p.Preset != nil {
		name := *p.Preset
		if tuple, ok := LookupPreset(name); ok {
			next = next.withTuple(tuple)
			next.Preset = name
			next.Enabled = true
		} else if name == PresetCustom {
			next.Preset = PresetCustom
		} else {
			logrus.WithFields(logrus.Fields{
				"function": "Bank.Merge",
				"preset":   name,
			}).Warn("Ignoring unknown preset name")
		}
	}

	next = p.overlay(next).normalizePreset()
	b.commit(next, true)
	return b.current
}

// ApplyPreset switches to a named preset and forces processing on.
// Unknown names leave the record untouched and report false.
func (b *Bank) ApplyPreset(name PresetName) (Settings, bool) {
	tuple, ok := LookupPreset(name)
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "Bank.ApplyPreset",
			"preset":   name,
		}).Warn("Ignoring unknown preset name")
		return b.current, false
	}

	next := b.current.withTuple(tuple)
	next.Preset = name
	next.Enabled = true

	logrus.WithFields(logrus.Fields{
		"function": "Bank.ApplyPreset",
		"preset":   name,
	}).Info("Applying preset")

	b.commit(next, true)
	return b.current, true
}

// Reset restores the hard-coded defaults.
func (b *Bank) Reset() Settings {
	logrus.WithFields(logrus.Fields{
		"function": "Bank.Reset",
	}).Info("Resetting settings to defaults")

	b.commit(Defaults(), true)
	return b.current
}

// commit swaps in next, persists it and notifies listeners. Unchanged
// records are neither persisted nor reported.
func (b *Bank) commit(next Settings, persist bool) {
	prev := b.current
	if next == prev {
		return
	}
	b.current = next

	if persist && b.store != nil {
		if err := b.store.Save(context.Background(), next); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Bank.commit",
				"error":    err.Error(),
			}).Warn("Failed to persist settings")
		}
	}

	for _, fn := range b.listeners {
		fn(prev, next)
	}
}
