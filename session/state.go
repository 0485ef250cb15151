package session

import "github.com/opd-ai/leveler/settings"

// State is the session's binding state.
type State int

const (
	// StateUnbound means no source is attached.
	StateUnbound State = iota
	// StateBinding means a bind attempt is in progress.
	StateBinding
	// StateBound means a source is attached and a graph is active.
	StateBound
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBinding:
		return "binding"
	case StateBound:
		return "bound"
	default:
		return "unbound"
	}
}

// ContextState describes whether audio is flowing through the graph.
type ContextState string

const (
	// ContextClosed means no graph exists.
	ContextClosed ContextState = "closed"
	// ContextRunning means the destination pulled audio since the last tick.
	ContextRunning ContextState = "running"
	// ContextSuspended means a graph exists but nothing is pulling audio.
	ContextSuspended ContextState = "suspended"
)

// Levels is the meter state recomputed every tick.
type Levels struct {
	Input         float64 `json:"input"`
	Output        float64 `json:"output"`
	GainReduction float64 `json:"gainReduction"`
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	Settings      settings.Settings `json:"settings"`
	Levels        Levels            `json:"levels"`
	AutoGainValue float64           `json:"autoGainValue"`
	IsActive      bool              `json:"isActive"`
	ContextState  ContextState      `json:"contextState"`
	SourceID      string            `json:"sourceId,omitempty"`
	Route         string            `json:"route"`
}
