package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gopxl/beep/v2"
	"github.com/opd-ai/leveler"
	"github.com/sirupsen/logrus"
)

// Config is the optional TOML configuration file.
//
//	settings_path = "~/.config/leveler/settings.json"
//	sample_rate   = 48000
//	tick_interval = "100ms"
//	block_size    = 512
//	log_level     = "info"
//	log_format    = "text"
//	log_file      = "leveler.log"
type Config struct {
	SettingsPath string `toml:"settings_path"`
	SampleRate   int    `toml:"sample_rate"`
	TickInterval string `toml:"tick_interval"`
	BlockSize    int    `toml:"block_size"`
	LogLevel     string `toml:"log_level"`
	LogFormat    string `toml:"log_format"`
	LogFile      string `toml:"log_file"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		TickInterval: "100ms",
		BlockSize:    512,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// LoadConfig reads path over the defaults. An empty path returns the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logrus.WithFields(logrus.Fields{
			"function": "LoadConfig",
			"path":     path,
			"key":      key.String(),
		}).Warn("Ignoring unknown config key")
	}
	return cfg, nil
}

// Options converts the configuration into leveler options.
func (c Config) Options() (*leveler.Options, error) {
	o := leveler.NewOptions()
	o.SettingsPath = expandHome(c.SettingsPath)

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid tick_interval %q: %w", c.TickInterval, err)
		}
		o.TickInterval = d
	}
	if c.BlockSize != 0 {
		o.BlockSize = c.BlockSize
	}
	if c.SampleRate != 0 {
		o.SampleRate = beep.SampleRate(c.SampleRate)
	}
	return o, nil
}

// ConfigureLogging applies the log settings to the standard logrus logger.
// fallback receives log output when no log file is configured.
func (c Config) ConfigureLogging(fallback io.Writer) (io.Closer, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log_format %q: want text or json", c.LogFormat)
	}

	if c.LogFile == "" {
		logrus.SetOutput(fallback)
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(expandHome(c.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logrus.SetOutput(f)
	return f, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
