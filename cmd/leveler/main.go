package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler"
	"github.com/opd-ai/leveler/internal/cli"
	"github.com/opd-ai/leveler/internal/ui"
	"github.com/opd-ai/leveler/session"
	"github.com/opd-ai/leveler/settings"
	"github.com/opd-ai/leveler/source"
	"github.com/sirupsen/logrus"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Config   string           `short:"c" type:"path" help:"Path to TOML config file (optional)"`
	LogLevel string           `help:"Override the configured log level"`
	Version  kong.VersionFlag `short:"v" help:"Show version information"`

	Process ProcessCmd `cmd:"" help:"Level an audio file offline and write a WAV file"`
	Monitor MonitorCmd `cmd:"" help:"Play a file in real time with a live meter display"`
	Serve   ServeCmd   `cmd:"" help:"Play a file in real time, taking JSON commands on stdin"`
}

// runContext is passed to every command's Run method.
type runContext struct {
	ctx    context.Context
	config cli.Config
}

func main() {
	var args CLI
	kctx := kong.Parse(&args,
		kong.Name("leveler"),
		kong.Description("Real-time loudness leveling: compression, auto-gain and limiting"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := cli.LoadConfig(args.Config)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&runContext{ctx: ctx, config: cfg}); err != nil {
		cli.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}

// sourceFile is an opened source that must be closed after use.
type sourceFile interface {
	ID() string
	Format() beep.Format
	Tap() (beep.Streamer, error)
	Close() error
}

// openSource opens path by extension.
func openSource(path string, rate beep.SampleRate) (sourceFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return source.OpenWAV(path, rate)
	case ".opus", ".ogg":
		return source.OpenOgg(path, source.DefaultOpusFrameSize)
	default:
		return nil, fmt.Errorf("unsupported input format %q: want .wav, .opus or .ogg", filepath.Ext(path))
	}
}

// open builds a Leveler for the command and binds path to it.
func open(rc *runContext, path string, offline bool) (*leveler.Leveler, sourceFile, error) {
	options, err := rc.config.Options()
	if err != nil {
		return nil, nil, err
	}
	options.Offline = offline

	lv, err := leveler.New(rc.ctx, options)
	if err != nil {
		return nil, nil, err
	}

	src, err := openSource(path, options.SampleRate)
	if err != nil {
		lv.Close()
		return nil, nil, err
	}
	if err := lv.Bind(src); err != nil {
		src.Close()
		lv.Close()
		return nil, nil, err
	}
	return lv, src, nil
}

// ProcessCmd renders a file through the leveler as fast as possible.
type ProcessCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Input audio file (.wav, .opus, .ogg)"`
	Output string `arg:"" optional:"" help:"Output WAV file (default: <input>-leveled.wav)"`
	Preset string `short:"p" enum:"light,medium,heavy,stored" default:"stored" help:"Preset to apply before processing (light, medium, heavy, stored)"`
}

// Run executes the process command.
func (c *ProcessCmd) Run(rc *runContext) error {
	closer, err := rc.config.ConfigureLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	lv, src, err := open(rc, c.Input, true)
	if err != nil {
		return err
	}
	defer lv.Close()
	defer src.Close()

	if c.Preset != "stored" {
		lv.Handle(session.Request{Type: session.CommandApplyPreset, Preset: settings.PresetName(c.Preset)})
	}

	output := c.Output
	if output == "" {
		output = strings.TrimSuffix(c.Input, filepath.Ext(c.Input)) + "-leveled.wav"
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := lv.Render(rc.ctx, f); err != nil {
		return err
	}

	snap := lv.Snapshot()
	fmt.Println(cli.TitleStyle.Render("Leveler"))
	cli.PrintField("Input", c.Input)
	cli.PrintField("Output", output)
	cli.PrintField("Preset", string(snap.Settings.Preset))
	cli.PrintField("Input level", fmt.Sprintf("%.1f dB", snap.Levels.Input))
	cli.PrintField("Output level", fmt.Sprintf("%.1f dB", snap.Levels.Output))
	cli.PrintField("Auto-gain", fmt.Sprintf("%+.1f dB", snap.AutoGainValue))
	return nil
}

// MonitorCmd plays a file in real time under the terminal control surface.
type MonitorCmd struct {
	Input string `arg:"" type:"existingfile" help:"Input audio file (.wav, .opus, .ogg)"`
}

// Run executes the monitor command.
func (c *MonitorCmd) Run(rc *runContext) error {
	// The terminal belongs to the UI; logs only go to a configured file.
	closer, err := rc.config.ConfigureLogging(io.Discard)
	if err != nil {
		return err
	}
	defer closer.Close()

	lv, src, err := open(rc, c.Input, false)
	if err != nil {
		return err
	}
	defer lv.Close()
	defer src.Close()

	ctx, cancel := context.WithCancel(rc.ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(lv, c.Input), tea.WithAltScreen(), tea.WithContext(ctx))

	go func() {
		err := lv.Play(ctx, nil)
		if ctx.Err() == nil {
			p.Send(ui.SourceEndedMsg{Err: err})
		}
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return nil
}

// ServeCmd plays a file in real time and answers JSON commands on stdio.
type ServeCmd struct {
	Input string `arg:"" type:"existingfile" help:"Input audio file (.wav, .opus, .ogg)"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(rc *runContext) error {
	closer, err := rc.config.ConfigureLogging(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	lv, src, err := open(rc, c.Input, false)
	if err != nil {
		return err
	}
	defer lv.Close()
	defer src.Close()

	ctx, cancel := context.WithCancel(rc.ctx)
	defer cancel()

	go func() {
		if err := lv.Play(ctx, nil); err != nil && ctx.Err() == nil {
			logrus.WithFields(logrus.Fields{
				"function": "ServeCmd.Run",
				"error":    err.Error(),
			}).Error("Playback failed")
		}
	}()

	return lv.Session().ServeCommands(ctx, os.Stdin, os.Stdout)
}
