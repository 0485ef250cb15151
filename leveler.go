package leveler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/opd-ai/leveler/interfaces"
	"github.com/opd-ai/leveler/session"
	"github.com/opd-ai/leveler/settings"
	"github.com/opd-ai/leveler/store"
	"github.com/sirupsen/logrus"
)

// Options configures a Leveler.
type Options struct {
	// SettingsPath is the settings file. Empty disables persistence.
	SettingsPath string

	// TickInterval is the metering and auto-gain period.
	TickInterval time.Duration

	// BlockSize is the number of frames Play pulls per block.
	BlockSize int

	// SampleRate paces Play while no source is bound.
	SampleRate beep.SampleRate

	// Offline drives the tick loop from rendered audio instead of the clock.
	Offline bool

	// TimeProvider supplies tickers in real-time mode. Nil uses the system
	// clock.
	TimeProvider session.TimeProvider
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		TickInterval: session.DefaultTickInterval,
		BlockSize:    512,
		SampleRate:   48000,
	}
}

func (o *Options) validate() error {
	if o.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %v", ErrInvalidOptions, o.TickInterval)
	}
	if o.BlockSize <= 0 {
		return fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidOptions, o.BlockSize)
	}
	if o.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidOptions, o.SampleRate)
	}
	return nil
}

// Sink receives processed audio blocks from Play. The block is reused after
// the call returns.
type Sink func(block [][2]float64) error

// Leveler is a loudness leveling session with persistent settings.
type Leveler struct {
	options *Options
	session *session.Manager
	store   *store.Async
	manual  *session.ManualScheduler
}

// New creates a Leveler and restores stored settings. A settings file that
// cannot be read is logged and the defaults are used.
func New(ctx context.Context, options *Options) (*Leveler, error) {
	if options == nil {
		options = NewOptions()
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	l := &Leveler{options: options}

	cfg := session.Config{TickInterval: options.TickInterval}
	if options.SettingsPath != "" {
		l.store = store.NewAsync(store.NewFileStore(options.SettingsPath))
		cfg.Store = l.store
	}
	if options.Offline {
		l.manual = session.NewManualScheduler()
		cfg.Scheduler = l.manual
	} else {
		cfg.Scheduler = session.TickerScheduler{Time: options.TimeProvider}
	}

	l.session = session.New(cfg)
	if _, err := l.session.Load(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "New",
			"path":     options.SettingsPath,
			"error":    err.Error(),
		}).Warn("Continuing with default settings")
	}

	logrus.WithFields(logrus.Fields{
		"function":      "New",
		"settings_path": options.SettingsPath,
		"offline":       options.Offline,
		"block_size":    options.BlockSize,
	}).Info("Leveler created")

	return l, nil
}

// Session returns the underlying session manager.
func (l *Leveler) Session() *session.Manager { return l.session }

// Bind attaches src to the signal graph.
func (l *Leveler) Bind(src interfaces.Source) error {
	return l.session.Bind(src)
}

// Watch follows a source notifier until ctx is done or it closes.
func (l *Leveler) Watch(ctx context.Context, n interfaces.SourceNotifier) error {
	return l.session.Watch(ctx, n)
}

// Handle executes a control command.
func (l *Leveler) Handle(req session.Request) session.Response {
	return l.session.Handle(req)
}

// Snapshot returns the current session state.
func (l *Leveler) Snapshot() session.Snapshot {
	return l.session.Snapshot()
}

// Settings returns the current settings record.
func (l *Leveler) Settings() settings.Settings {
	return l.session.Settings()
}

// Play pulls processed audio at real-time rate and hands each block to sink,
// which may be nil. It returns when ctx is done or the bound source ends.
func (l *Leveler) Play(ctx context.Context, sink Sink) error {
	rate := l.options.SampleRate
	if l.session.State() == session.StateBound {
		rate = l.session.Format().SampleRate
	}

	clock := l.options.TimeProvider
	if clock == nil {
		clock = session.RealTimeProvider{}
	}

	block := make([][2]float64, l.options.BlockSize)
	period := rate.D(len(block))
	ticker := clock.NewTicker(period)
	defer ticker.Stop()
	started := clock.Now()

	logrus.WithFields(logrus.Fields{
		"function":    "Leveler.Play",
		"sample_rate": int(rate),
		"block_size":  len(block),
		"period":      period,
	}).Info("Starting playback pump")

	out := l.session.Output()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, ok := out.Stream(block)
			if sink != nil && n > 0 {
				if err := sink(block[:n]); err != nil {
					return fmt.Errorf("sink failed: %w", err)
				}
			}
			if !ok {
				logrus.WithFields(logrus.Fields{
					"function": "Leveler.Play",
					"elapsed":  clock.Now().Sub(started),
				}).Info("Source ended")
				return out.Err()
			}
		}
	}
}

// Render processes the bound source to completion and writes the result to
// w as WAV. Each rendered block advances the tick clock by the block's
// duration.
func (l *Leveler) Render(ctx context.Context, w io.WriteSeeker) error {
	if l.manual == nil {
		return ErrNotOffline
	}
	if l.session.State() != session.StateBound {
		return ErrNotBound
	}

	format := l.session.Format()
	if format.Precision == 0 {
		format.Precision = 2
	}
	out := l.session.Output()

	var frames int
	start := l.manual.Now()
	rendered := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if ctx.Err() != nil {
			return 0, false
		}
		n, ok := out.Stream(samples)
		frames += n
		// Advance to the absolute position so per-block rounding never accumulates.
		l.manual.Advance(start + format.SampleRate.D(frames) - l.manual.Now())
		return n, ok
	})

	if err := wav.Encode(w, rendered, format); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := out.Err(); err != nil {
		return fmt.Errorf("source failed: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Leveler.Render",
		"frames":   frames,
		"duration": format.SampleRate.D(frames),
		"ticks":    l.session.Ticks(),
	}).Info("Render complete")

	return nil
}

// Close unbinds the session and flushes pending settings writes.
func (l *Leveler) Close() error {
	l.session.Close()
	if l.store != nil {
		return l.store.Close()
	}
	return nil
}
