// Package session owns one leveling session: the settings bank, the signal
// graph, the auto-gain controller and the periodic tick loop that meters the
// graph and steers auto-gain.
//
// A Manager guarantees at most one bound source and at most one running tick
// loop. Every rebind, unbind or disable stops the current loop before
// anything else changes. The tick loop runs only while a source is bound and
// processing is enabled.
//
//	m := session.New(session.Config{Store: st})
//	m.Load(ctx)
//	if err := m.Bind(src); err != nil {
//	    // still unbound; a later Bind may succeed
//	}
//	go pump(m.Output())
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler/agc"
	"github.com/opd-ai/leveler/audio"
	"github.com/opd-ai/leveler/graph"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/opd-ai/leveler/settings"
	"github.com/sirupsen/logrus"
)

// DefaultTickInterval is the metering and auto-gain period.
const DefaultTickInterval = 100 * time.Millisecond

// Config configures a Manager.
type Config struct {
	// Store persists settings. Nil disables persistence.
	Store settings.Store

	// Scheduler drives the tick loop. Nil selects a TickerScheduler.
	Scheduler interfaces.Scheduler

	// TickInterval overrides DefaultTickInterval when positive.
	TickInterval time.Duration
}

// Manager coordinates a session. All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	bank      *settings.Bank
	store     settings.Store
	graph     *graph.Graph
	agc       *agc.Controller
	scheduler interfaces.Scheduler
	interval  time.Duration

	state    State
	stopTick func()
	tickGen  uint64

	levels        Levels
	autoGainValue float64
	contextState  ContextState
	lastFrames    uint64
	ticks         uint64
}

// New creates an unbound session holding the default settings.
func New(cfg Config) *Manager {
	scheduler := cfg.Scheduler
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	m := &Manager{
		bank:         settings.NewBank(cfg.Store),
		store:        cfg.Store,
		graph:        graph.New(),
		agc:          agc.New(),
		scheduler:    scheduler,
		interval:     interval,
		levels:       silentLevels(),
		contextState: ContextClosed,
	}
	m.bank.OnChange(m.settingsChanged)

	logrus.WithFields(logrus.Fields{
		"function":      "session.New",
		"tick_interval": interval,
		"persistent":    cfg.Store != nil,
	}).Info("Session created")

	return m
}

func silentLevels() Levels {
	return Levels{Input: audio.ToDB(0), Output: audio.ToDB(0)}
}

// Load restores stored settings over the defaults. A store that cannot be
// read leaves the defaults in place; the error is logged and returned.
func (m *Manager) Load(ctx context.Context) (settings.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.store == nil {
		return m.bank.Current(), nil
	}

	p, err := m.store.Load(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Manager.Load",
			"error":    err.Error(),
		}).Warn("Failed to load stored settings, using defaults")
		return m.bank.Restore(settings.Partial{}), fmt.Errorf("failed to load settings: %w", err)
	}
	return m.bank.Restore(p), nil
}

// Output is the stream the destination pulls processed audio from.
func (m *Manager) Output() beep.Streamer {
	return m.graph
}

// Format returns the format of the bound source's audio.
func (m *Manager) Format() beep.Format {
	return m.graph.Format()
}

// Bind attaches src. Binding the already bound source is a no-op. On
// failure the session is left unbound.
//
// A successful bind stops any running tick loop, builds a fresh graph chain
// from the current settings, resets auto-gain and starts a new tick loop
// when processing is enabled.
//
// Parameters:
//   - src: Source to attach; a different ID than the bound one rebinds
//
// Returns:
//   - error: graph.ErrNilSource, or a graph.ErrBindFailed wrap when the
//     source cannot be tapped
func (m *Manager) Bind(src interfaces.Source) error {
	if src == nil {
		return graph.ErrNilSource
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateBound {
		if current := m.graph.Source(); current != nil && current.ID() == src.ID() {
			return nil
		}
	}

	m.stopTicks()
	m.state = StateBinding

	s := m.bank.Current()
	if err := m.graph.Bind(src, s); err != nil {
		m.state = StateUnbound
		m.contextState = ContextClosed
		m.levels = silentLevels()
		logrus.WithFields(logrus.Fields{
			"function":  "Manager.Bind",
			"source_id": src.ID(),
			"error":     err.Error(),
		}).Warn("Bind failed, session unbound")
		return err
	}

	m.state = StateBound
	m.contextState = ContextRunning
	m.lastFrames = m.graph.FramesPulled()
	m.agc.Reset()
	m.autoGainValue = 0
	if s.Enabled {
		m.startTicks()
	}

	logrus.WithFields(logrus.Fields{
		"function":  "Manager.Bind",
		"source_id": src.ID(),
		"enabled":   s.Enabled,
	}).Info("Session bound")

	return nil
}

// Unbind detaches the current source, as on source loss.
func (m *Manager) Unbind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbind()
}

func (m *Manager) unbind() {
	m.stopTicks()
	if m.state == StateUnbound {
		return
	}

	m.graph.Unbind()
	m.state = StateUnbound
	m.contextState = ContextClosed
	m.levels = silentLevels()

	logrus.WithFields(logrus.Fields{
		"function": "Manager.Unbind",
	}).Info("Session unbound")
}

// Close unbinds the session.
func (m *Manager) Close() {
	m.Unbind()
}

// State returns the binding state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ticking reports whether a tick loop is running.
func (m *Manager) Ticking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopTick != nil
}

// Ticks returns the number of completed ticks.
func (m *Manager) Ticks() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

// Settings returns the current settings record.
func (m *Manager) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.Current()
}

// Snapshot assembles the externally visible state.
//
// While the session is bound with processing disabled no tick loop runs, so
// the snapshot itself observes the graph: the context is running when audio
// was pulled since the previous tick or snapshot and suspended otherwise.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateBound && m.stopTick == nil {
		m.observeContext()
	}

	snap := Snapshot{
		Settings:      m.bank.Current(),
		Levels:        m.levels,
		AutoGainValue: m.autoGainValue,
		IsActive:      m.state == StateBound,
		ContextState:  m.contextState,
		Route:         m.graph.CurrentRoute().String(),
	}
	if src := m.graph.Source(); src != nil {
		snap.SourceID = src.ID()
	}
	return snap
}

// UpdateSettings merges a partial update.
func (m *Manager) UpdateSettings(p settings.Partial) settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.Merge(p)
}

// ApplyPreset selects a named preset. Unknown names leave the settings
// unchanged.
func (m *Manager) ApplyPreset(name settings.PresetName) settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, _ := m.bank.ApplyPreset(name)
	return s
}

// ResetSettings restores the defaults.
func (m *Manager) ResetSettings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.Reset()
}

// settingsChanged pushes a committed change into the graph. The bank only
// commits from Manager methods, so m.mu is held.
func (m *Manager) settingsChanged(prev, next settings.Settings) {
	if prev.Enabled && !next.Enabled {
		m.stopTicks()
	}

	m.graph.ApplyParameters(next)

	if prev.Enabled != next.Enabled {
		m.graph.Route(next.Enabled)
	}
	if prev.AutoGain && !next.AutoGain {
		m.agc.Reset()
		m.autoGainValue = 0
	}

	if m.state == StateBound && next.Enabled && m.stopTick == nil {
		m.startTicks()
	}
}

// startTicks starts a new tick loop. Callers hold m.mu and have stopped any
// previous loop.
func (m *Manager) startTicks() {
	m.tickGen++
	gen := m.tickGen
	m.stopTick = m.scheduler.Every(m.interval, func() { m.tick(gen) })

	logrus.WithFields(logrus.Fields{
		"function":   "Manager.startTicks",
		"generation": gen,
		"interval":   m.interval,
	}).Debug("Tick loop started")
}

// stopTicks cancels the running loop. A tick already in flight sees a newer
// generation and does nothing. Callers hold m.mu.
func (m *Manager) stopTicks() {
	if m.stopTick == nil {
		return
	}
	m.stopTick()
	m.stopTick = nil
	m.tickGen++

	logrus.WithFields(logrus.Fields{
		"function": "Manager.stopTicks",
	}).Debug("Tick loop stopped")
}

// tick meters the graph, advances auto-gain and refreshes the context
// state. A panic inside a tick is logged and the loop keeps running.
func (m *Manager) tick(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.tickGen || m.stopTick == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Manager.tick",
				"panic":    fmt.Sprint(r),
			}).Error("Tick failed")
		}
	}()

	input := audio.RMS(m.graph.InputSamples(audio.AnalysisWindow))
	m.levels = Levels{
		Input:         audio.ToDB(input),
		Output:        audio.LevelDB(m.graph.OutputSamples(audio.AnalysisWindow)),
		GainReduction: m.graph.CurrentReduction(),
	}

	s := m.bank.Current()
	if s.Enabled && s.AutoGain {
		if value, updated := m.agc.Observe(input, s.TargetLevel); updated {
			m.graph.SetAutoGain(value)
		}
	}
	m.autoGainValue = m.agc.Value()

	m.observeContext()
	m.ticks++
}

// observeContext marks the context running when the destination pulled
// audio since the previous observation. Callers hold m.mu.
func (m *Manager) observeContext() {
	frames := m.graph.FramesPulled()
	if frames != m.lastFrames {
		m.contextState = ContextRunning
	} else {
		m.contextState = ContextSuspended
	}
	m.lastFrames = frames
}

// Watch binds and unbinds as notifier reports source changes. It returns
// when ctx is done or the notifier closes.
func (m *Manager) Watch(ctx context.Context, notifier interfaces.SourceNotifier) error {
	sources := notifier.Sources()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case src, ok := <-sources:
			if !ok {
				return nil
			}
			if src == nil {
				m.Unbind()
				continue
			}
			if err := m.Bind(src); err != nil {
				logrus.WithFields(logrus.Fields{
					"function":  "Manager.Watch",
					"source_id": src.ID(),
					"error":     err.Error(),
				}).Warn("Ignoring source that could not be bound")
			}
		}
	}
}
