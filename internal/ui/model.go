// Package ui provides the Bubbletea control surface for a running leveler
// session: live meters plus keyboard control of presets and switches.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/opd-ai/leveler/limits"
	"github.com/opd-ai/leveler/session"
	"github.com/opd-ai/leveler/settings"
)

// PollInterval is how often the surface asks for a fresh snapshot.
const PollInterval = 100 * time.Millisecond

// Controller executes control commands.
type Controller interface {
	Handle(req session.Request) session.Response
}

// Model is the Bubbletea model for the monitor UI.
type Model struct {
	ctrl  Controller
	title string

	State   session.Snapshot
	Polled  bool
	LastErr string
	Ended   bool
	EndErr  error

	Width int
}

// NewModel creates a model controlling ctrl.
func NewModel(ctrl Controller, title string) Model {
	return Model{ctrl: ctrl, title: title}
}

// Init starts polling.
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case pollMsg:
		return m, m.fetch()

	case stateMsg:
		m.State = msg.state
		m.Polled = true
		return m, tea.Tick(PollInterval, func(time.Time) tea.Msg { return pollMsg{} })

	case commandMsg:
		if !msg.resp.Success {
			m.LastErr = msg.resp.Error
			return m, nil
		}
		m.LastErr = ""
		if msg.resp.Settings != nil {
			m.State.Settings = *msg.resp.Settings
		}

	case SourceEndedMsg:
		m.Ended = true
		m.EndErr = msg.Err
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.State.Settings

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "1":
		return m, m.send(session.Request{Type: session.CommandApplyPreset, Preset: settings.PresetLight})
	case "2":
		return m, m.send(session.Request{Type: session.CommandApplyPreset, Preset: settings.PresetMedium})
	case "3":
		return m, m.send(session.Request{Type: session.CommandApplyPreset, Preset: settings.PresetHeavy})
	case "e":
		enabled := !s.Enabled
		return m, m.update(settings.Partial{Enabled: &enabled})
	case "a":
		autoGain := !s.AutoGain
		return m, m.update(settings.Partial{AutoGain: &autoGain})
	case "+", "=":
		target := min(s.TargetLevel+1, limits.TargetLevel.Max)
		return m, m.update(settings.Partial{TargetLevel: &target})
	case "-":
		target := max(s.TargetLevel-1, limits.TargetLevel.Min)
		return m, m.update(settings.Partial{TargetLevel: &target})
	case "r":
		return m, m.send(session.Request{Type: session.CommandResetSettings})
	}
	return m, nil
}

func (m Model) update(p settings.Partial) tea.Cmd {
	return m.send(session.Request{Type: session.CommandUpdateSettings, Settings: &p})
}

func (m Model) send(req session.Request) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return commandMsg{resp: ctrl.Handle(req)}
	}
}

func (m Model) fetch() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		resp := ctrl.Handle(session.Request{Type: session.CommandGetState})
		if resp.State == nil {
			return commandMsg{resp: resp}
		}
		return stateMsg{state: *resp.State}
	}
}

// View renders the UI.
func (m Model) View() string {
	if !m.Polled {
		return "Connecting to session...\n"
	}
	return renderMonitor(m)
}
