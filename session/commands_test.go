package session

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/opd-ai/leveler/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_GetStateUnbound(t *testing.T) {
	m, _ := newTestManager(t)

	resp := m.Handle(Request{Type: CommandGetState})
	require.True(t, resp.Success)
	require.NotNil(t, resp.State)
	assert.False(t, resp.State.IsActive)
	assert.Equal(t, ContextClosed, resp.State.ContextState)
	assert.Equal(t, settings.Defaults(), resp.State.Settings)
}

func TestHandle_SettingsCommands(t *testing.T) {
	heavy, _ := settings.LookupPreset(settings.PresetHeavy)

	tests := []struct {
		name  string
		setup []Request
		req   Request
		check func(t *testing.T, s settings.Settings)
	}{
		{
			name: "apply heavy preset",
			req:  Request{Type: CommandApplyPreset, Preset: settings.PresetHeavy},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, heavy, s.Tuple())
				assert.Equal(t, settings.PresetHeavy, s.Preset)
				assert.True(t, s.Enabled)
			},
		},
		{
			name:  "unknown preset is a no-op",
			setup: []Request{{Type: CommandUpdateSettings, Settings: &settings.Partial{PreGain: ptr(4.0)}}},
			req:   Request{Type: CommandApplyPreset, Preset: "stadium"},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, 4.0, s.PreGain)
				assert.Equal(t, settings.PresetMedium, s.Preset)
			},
		},
		{
			name: "manual edit becomes custom",
			req:  Request{Type: CommandUpdateSettings, Settings: &settings.Partial{Ratio: ptr(8.0)}},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, 8.0, s.Ratio)
				assert.Equal(t, settings.PresetCustom, s.Preset)
			},
		},
		{
			name: "update without fields echoes settings",
			req:  Request{Type: CommandUpdateSettings},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, settings.Defaults(), s)
			},
		},
		{
			name: "reset restores defaults",
			setup: []Request{
				{Type: CommandApplyPreset, Preset: settings.PresetLight},
				{Type: CommandUpdateSettings, Settings: &settings.Partial{Enabled: ptr(false)}},
			},
			req: Request{Type: CommandResetSettings},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, settings.Defaults(), s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			for _, req := range tt.setup {
				require.True(t, m.Handle(req).Success)
			}

			resp := m.Handle(tt.req)
			require.True(t, resp.Success)
			require.NotNil(t, resp.Settings)
			tt.check(t, *resp.Settings)
			assert.Equal(t, *resp.Settings, m.Settings())
		})
	}
}

func TestHandle_UnknownCommand(t *testing.T) {
	m, _ := newTestManager(t)

	resp := m.Handle(Request{Type: "selfDestruct"})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, ErrUnknownCommand.Error())
	assert.Nil(t, resp.Settings)
}

func TestServeCommands(t *testing.T) {
	m, _ := newTestManager(t)
	input := strings.Join([]string{
		`{"type":"getState"}`,
		``,
		`{"type":`,
		`{"type":"nope"}`,
		`{"type":"applyPreset","preset":"light"}`,
		`{"type":"updateSettings","settings":{"knee":12}}`,
	}, "\n")

	var out strings.Builder
	require.NoError(t, m.ServeCommands(context.Background(), strings.NewReader(input), &out))

	var responses []Response
	scanner := bufio.NewScanner(strings.NewReader(out.String()))
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	require.Len(t, responses, 5)

	assert.True(t, responses[0].Success)
	assert.NotNil(t, responses[0].State)

	assert.False(t, responses[1].Success)
	assert.Contains(t, responses[1].Error, ErrMalformedCommand.Error())

	assert.False(t, responses[2].Success)
	assert.Contains(t, responses[2].Error, ErrUnknownCommand.Error())

	require.NotNil(t, responses[3].Settings)
	assert.Equal(t, settings.PresetLight, responses[3].Settings.Preset)

	require.NotNil(t, responses[4].Settings)
	assert.Equal(t, 12.0, responses[4].Settings.Knee)
	assert.Equal(t, settings.PresetCustom, responses[4].Settings.Preset)
}

func TestServeCommands_Cancelled(t *testing.T) {
	m, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out strings.Builder
	err := m.ServeCommands(ctx, strings.NewReader(`{"type":"getState"}`+"\n"), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
