package store

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/opd-ai/leveler/settings"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// envelope is the on-disk layout.
type envelope struct {
	Checksum string          `json:"checksum"`
	Settings json.RawMessage `json:"settings"`
}

// FileStore saves the settings record as a checksummed JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by path. The file and its directory
// are created on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string { return fs.path }

// Load reads the stored record. A missing file yields an empty Partial so
// every field falls back to its default.
func (fs *FileStore) Load(ctx context.Context) (settings.Partial, error) {
	if err := ctx.Err(); err != nil {
		return settings.Partial{}, err
	}

	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.WithFields(logrus.Fields{
			"function": "FileStore.Load",
			"path":     fs.path,
		}).Debug("No stored settings found")
		return settings.Partial{}, nil
	}
	if err != nil {
		return settings.Partial{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return settings.Partial{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, env.Settings); err != nil {
		return settings.Partial{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if checksum(compact.Bytes()) != env.Checksum {
		return settings.Partial{}, ErrChecksumMismatch
	}

	var p settings.Partial
	if err := json.Unmarshal(compact.Bytes(), &p); err != nil {
		return settings.Partial{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "FileStore.Load",
		"path":     fs.path,
	}).Info("Stored settings loaded")

	return p, nil
}

// Save replaces the stored record. The file is written to a temporary path
// and renamed over the old one.
func (fs *FileStore) Save(ctx context.Context, s settings.Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	data, err := json.MarshalIndent(envelope{Checksum: checksum(raw), Settings: raw}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings file: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	tmpFile := fs.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary settings file: %w", err)
	}
	if err := os.Rename(tmpFile, fs.path); err != nil {
		return fmt.Errorf("failed to rename settings file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "FileStore.Save",
		"path":     fs.path,
		"preset":   s.Preset,
	}).Debug("Settings saved")

	return nil
}

func checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
