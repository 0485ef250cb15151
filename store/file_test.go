package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opd-ai/leveler/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	fs := NewFileStore(path)

	s := settings.Defaults()
	s.Preset = settings.PresetCustom
	s.Ratio = 7.5
	s.PreGain = -3
	require.NoError(t, fs.Save(context.Background(), s))

	p, err := fs.Load(context.Background())
	require.NoError(t, err)

	bank := settings.NewBank(nil)
	assert.Equal(t, s, bank.Restore(p))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_MissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	p, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Partial{}, p)
}

func TestFileStore_DetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	fs := NewFileStore(path)
	require.NoError(t, fs.Save(context.Background(), settings.Defaults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &env))
	env["settings"] = json.RawMessage(`{"ratio": 19}`)
	data, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err = fs.Load(context.Background())
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFileStore_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"truncated", `{"checksum": "ab`},
		{"not json", `enabled=true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := NewFileStore(path).Load(context.Background())
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	assert.ErrorIs(t, fs.Save(ctx, settings.Defaults()), context.Canceled)
	_, err := fs.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
