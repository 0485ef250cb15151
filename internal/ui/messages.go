package ui

import "github.com/opd-ai/leveler/session"

// SourceEndedMsg reports that playback of the bound source finished.
type SourceEndedMsg struct {
	Err error
}

// pollMsg asks the model to refresh its snapshot.
type pollMsg struct{}

// stateMsg carries a refreshed snapshot.
type stateMsg struct {
	state session.Snapshot
}

// commandMsg carries the response to a user command.
type commandMsg struct {
	resp session.Response
}
