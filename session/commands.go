package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opd-ai/leveler/settings"
	"github.com/sirupsen/logrus"
)

// CommandType is the type tag of a control request.
type CommandType string

// Supported commands.
const (
	CommandGetState       CommandType = "getState"
	CommandUpdateSettings CommandType = "updateSettings"
	CommandApplyPreset    CommandType = "applyPreset"
	CommandResetSettings  CommandType = "resetSettings"
)

// Request is a control-surface command.
type Request struct {
	Type     CommandType         `json:"type"`
	Settings *settings.Partial   `json:"settings,omitempty"`
	Preset   settings.PresetName `json:"preset,omitempty"`
}

// Response answers a Request. getState fills State; the settings commands
// echo the resulting record in Settings.
type Response struct {
	Success  bool               `json:"success"`
	State    *Snapshot          `json:"state,omitempty"`
	Settings *settings.Settings `json:"settings,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func settingsResponse(s settings.Settings) Response {
	return Response{Success: true, Settings: &s}
}

func errorResponse(err error) Response {
	return Response{Error: err.Error()}
}

// Handle executes one command. Unknown commands produce an error response.
func (m *Manager) Handle(req Request) Response {
	logrus.WithFields(logrus.Fields{
		"function": "Manager.Handle",
		"type":     req.Type,
	}).Debug("Handling command")

	switch req.Type {
	case CommandGetState:
		snap := m.Snapshot()
		return Response{Success: true, State: &snap}

	case CommandUpdateSettings:
		var p settings.Partial
		if req.Settings != nil {
			p = *req.Settings
		}
		return settingsResponse(m.UpdateSettings(p))

	case CommandApplyPreset:
		return settingsResponse(m.ApplyPreset(req.Preset))

	case CommandResetSettings:
		return settingsResponse(m.ResetSettings())

	default:
		logrus.WithFields(logrus.Fields{
			"function": "Manager.Handle",
			"type":     req.Type,
		}).Warn("Rejecting unknown command")
		return errorResponse(fmt.Errorf("%w: %q", ErrUnknownCommand, req.Type))
	}
}

// ServeCommands reads newline-delimited JSON requests from r and writes one
// JSON response line per request to w. It returns when r is exhausted, ctx
// is done, or writing fails.
func (m *Manager) ServeCommands(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp Response
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			resp = errorResponse(fmt.Errorf("%w: %v", ErrMalformedCommand, err))
		} else {
			resp = m.Handle(req)
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}
	return nil
}
