package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler/audio"
	"github.com/opd-ai/leveler/graph"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/opd-ai/leveler/settings"
	"github.com/opd-ai/leveler/source"
	"github.com/opd-ai/leveler/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFormat = beep.Format{SampleRate: 48000, NumChannels: 2, Precision: 2}

func constSource(id string, v float64) *source.Stream {
	return source.NewStream(id, testFormat, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	}))
}

func newTestManager(t *testing.T) (*Manager, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	return New(Config{Scheduler: sched}), sched
}

// play pulls one tick's worth of audio and then fires the tick.
func play(t *testing.T, m *Manager, sched *ManualScheduler) {
	t.Helper()
	buf := make([][2]float64, 4800)
	_, ok := m.Output().Stream(buf)
	require.True(t, ok)
	sched.Advance(DefaultTickInterval)
}

func ptr[T any](v T) *T { return &v }

func TestManager_BindStartsOneTickLoop(t *testing.T) {
	m, sched := newTestManager(t)

	require.NoError(t, m.Bind(constSource("a", 0.1)))
	assert.Equal(t, StateBound, m.State())
	assert.Equal(t, 1, sched.Active())

	require.NoError(t, m.Bind(constSource("b", 0.1)))
	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, uint64(2), m.graph.Generation())
	assert.Equal(t, "b", m.Snapshot().SourceID)
}

func TestManager_RebindSameSourceIsNoop(t *testing.T) {
	m, sched := newTestManager(t)
	src := constSource("a", 0.1)

	require.NoError(t, m.Bind(src))
	require.NoError(t, m.Bind(src))

	assert.Equal(t, uint64(1), m.graph.Generation())
	assert.Equal(t, 1, sched.Active())
}

func TestManager_BindFailureLeavesUnbound(t *testing.T) {
	m, sched := newTestManager(t)
	src := constSource("a", 0.1)
	_, err := src.Tap()
	require.NoError(t, err)

	err = m.Bind(src)
	assert.ErrorIs(t, err, graph.ErrBindFailed)
	assert.ErrorIs(t, err, interfaces.ErrSourceClaimed)
	assert.Equal(t, StateUnbound, m.State())
	assert.Equal(t, 0, sched.Active())

	snap := m.Snapshot()
	assert.False(t, snap.IsActive)
	assert.Equal(t, ContextClosed, snap.ContextState)

	require.NoError(t, m.Bind(constSource("b", 0.1)))
	assert.Equal(t, StateBound, m.State())
}

func TestManager_BindNil(t *testing.T) {
	m, _ := newTestManager(t)
	assert.ErrorIs(t, m.Bind(nil), graph.ErrNilSource)
}

func TestManager_DisableStopsTickLoop(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.1)))

	m.UpdateSettings(settings.Partial{Enabled: ptr(false)})
	assert.Equal(t, 0, sched.Active())
	assert.False(t, m.Ticking())
	assert.Equal(t, "bypass", m.Snapshot().Route)

	m.UpdateSettings(settings.Partial{Enabled: ptr(true)})
	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, "processing", m.Snapshot().Route)
}

func TestManager_BindWhileDisabled(t *testing.T) {
	m, sched := newTestManager(t)
	m.UpdateSettings(settings.Partial{Enabled: ptr(false)})

	require.NoError(t, m.Bind(constSource("a", 0.1)))
	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, "bypass", m.Snapshot().Route)

	// Selecting a preset forces processing on.
	m.ApplyPreset(settings.PresetLight)
	assert.Equal(t, 1, sched.Active())
	assert.Equal(t, "processing", m.Snapshot().Route)
}

func TestManager_TickMetersAndSteersAutoGain(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.01)))

	play(t, m, sched)

	snap := m.Snapshot()
	assert.InDelta(t, -40, snap.Levels.Input, 1e-6)
	assert.LessOrEqual(t, snap.Levels.GainReduction, 0.0)
	assert.InDelta(t, 26*0.08, snap.AutoGainValue, 1e-6)
	assert.InDelta(t, audio.DBToLinear(snap.AutoGainValue), m.graph.AutoGainTarget(), 1e-9)
	assert.Equal(t, ContextRunning, snap.ContextState)

	prev := snap.AutoGainValue
	for i := 0; i < 50; i++ {
		play(t, m, sched)
		v := m.Snapshot().AutoGainValue
		assert.GreaterOrEqual(t, v, prev)
		assert.LessOrEqual(t, v, 24.0)
		prev = v
	}
	assert.Equal(t, uint64(51), m.Ticks())
}

func TestManager_SilenceFreezesAutoGain(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0)))

	for i := 0; i < 10; i++ {
		play(t, m, sched)
	}

	snap := m.Snapshot()
	assert.Equal(t, 0.0, snap.AutoGainValue)
	assert.Equal(t, 0, m.agc.Window().Len())
	assert.Equal(t, audio.ToDB(0), snap.Levels.Input)
}

func TestManager_AutoGainOffResets(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.01)))
	for i := 0; i < 5; i++ {
		play(t, m, sched)
	}
	require.Greater(t, m.Snapshot().AutoGainValue, 0.0)

	m.UpdateSettings(settings.Partial{AutoGain: ptr(false)})

	assert.Equal(t, 0.0, m.Snapshot().AutoGainValue)
	assert.Equal(t, 0, m.agc.Window().Len())
	assert.Equal(t, 1.0, m.graph.AutoGainTarget())

	play(t, m, sched)
	assert.Equal(t, 0.0, m.Snapshot().AutoGainValue)
}

func TestManager_ContextState(t *testing.T) {
	m, sched := newTestManager(t)
	assert.Equal(t, ContextClosed, m.Snapshot().ContextState)

	require.NoError(t, m.Bind(constSource("a", 0.1)))
	sched.Advance(DefaultTickInterval)
	assert.Equal(t, ContextSuspended, m.Snapshot().ContextState)

	play(t, m, sched)
	assert.Equal(t, ContextRunning, m.Snapshot().ContextState)
}

func TestManager_ContextStateWhileDisabled(t *testing.T) {
	m, sched := newTestManager(t)
	m.UpdateSettings(settings.Partial{Enabled: ptr(false)})
	require.NoError(t, m.Bind(constSource("a", 0.1)))

	sched.Advance(time.Second)
	assert.Equal(t, uint64(0), m.Ticks())
	assert.Equal(t, ContextSuspended, m.Snapshot().ContextState)

	buf := make([][2]float64, 480)
	_, ok := m.Output().Stream(buf)
	require.True(t, ok)
	assert.Equal(t, ContextRunning, m.Snapshot().ContextState)
	assert.Equal(t, ContextSuspended, m.Snapshot().ContextState)
}

func TestManager_ContextStateAfterDisable(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.1)))
	play(t, m, sched)
	require.Equal(t, ContextRunning, m.Snapshot().ContextState)

	m.UpdateSettings(settings.Partial{Enabled: ptr(false)})
	sched.Advance(time.Second)
	assert.Equal(t, ContextSuspended, m.Snapshot().ContextState)
}

func TestManager_Unbind(t *testing.T) {
	m, sched := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.1)))
	play(t, m, sched)

	m.Unbind()

	snap := m.Snapshot()
	assert.Equal(t, StateUnbound, m.State())
	assert.Equal(t, 0, sched.Active())
	assert.False(t, snap.IsActive)
	assert.Equal(t, ContextClosed, snap.ContextState)
	assert.Equal(t, silentLevels(), snap.Levels)
	assert.Empty(t, snap.SourceID)

	m.Close()
}

func TestManager_StaleTickIgnored(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Bind(constSource("a", 0.1)))

	m.mu.Lock()
	stale := m.tickGen
	m.mu.Unlock()

	require.NoError(t, m.Bind(constSource("b", 0.1)))
	m.tick(stale)
	assert.Equal(t, uint64(0), m.Ticks())
}

func TestManager_UpdatesPersist(t *testing.T) {
	mem := store.NewMemoryStore(settings.Partial{})
	m := New(Config{Store: mem, Scheduler: NewManualScheduler()})

	got := m.UpdateSettings(settings.Partial{Ratio: ptr(8.0)})
	assert.Equal(t, settings.PresetCustom, got.Preset)

	saved, ok := mem.Saved()
	require.True(t, ok)
	assert.Equal(t, got, saved)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (settings.Partial, error) {
	return settings.Partial{}, store.ErrChecksumMismatch
}

func (failingStore) Save(context.Context, settings.Settings) error {
	return errors.New("read-only")
}

func TestManager_Load(t *testing.T) {
	t.Run("restores stored record", func(t *testing.T) {
		heavy, ok := settings.NewBank(nil).ApplyPreset(settings.PresetHeavy)
		require.True(t, ok)
		mem := store.NewMemoryStore(settings.PartialOf(heavy))
		m := New(Config{Store: mem, Scheduler: NewManualScheduler()})

		s, err := m.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, heavy, s)
		assert.Equal(t, s, m.Settings())
	})

	t.Run("corrupt store falls back to defaults", func(t *testing.T) {
		m := New(Config{Store: failingStore{}, Scheduler: NewManualScheduler()})

		s, err := m.Load(context.Background())
		assert.ErrorIs(t, err, store.ErrChecksumMismatch)
		assert.Equal(t, settings.Defaults(), s)
	})

	t.Run("no store", func(t *testing.T) {
		m := New(Config{Scheduler: NewManualScheduler()})
		s, err := m.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, settings.Defaults(), s)
	})
}

func TestManager_Watch(t *testing.T) {
	m, sched := newTestManager(t)
	n := source.NewNotifier(4)

	claimed := constSource("claimed", 0.1)
	_, err := claimed.Tap()
	require.NoError(t, err)

	n.Publish(constSource("a", 0.1))
	n.Publish(claimed)
	n.Publish(constSource("b", 0.1))
	n.Close()

	require.NoError(t, m.Watch(context.Background(), n))
	assert.Equal(t, StateBound, m.State())
	assert.Equal(t, "b", m.Snapshot().SourceID)
	assert.Equal(t, 1, sched.Active())
}

func TestManager_WatchSourceLost(t *testing.T) {
	m, sched := newTestManager(t)
	n := source.NewNotifier(2)
	n.Publish(constSource("a", 0.1))
	n.Lost()
	n.Close()

	require.NoError(t, m.Watch(context.Background(), n))
	assert.Equal(t, StateUnbound, m.State())
	assert.Equal(t, 0, sched.Active())
}

func TestManager_WatchCancelled(t *testing.T) {
	m, _ := newTestManager(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.Watch(ctx, source.NewNotifier(0))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
