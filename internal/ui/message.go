package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/setup"
)

// statusFetchedMsg carries the aggregate setup status for the account.
type statusFetchedMsg struct {
	status *setup.AggregateStatus
	err    error
}

// progressUpdateMsg wraps one orchestrator progress update.
type progressUpdateMsg setup.ProgressUpdate

// linkCompleteMsg reports the outcome of a link flow for one service.
type linkCompleteMsg struct {
	service string
	result  *api.TestResult
	err     error
}

// setupCompletedMsg reports the outcome of marking setup complete.
type setupCompletedMsg struct {
	resp *api.CompleteSetupResponse
	err  error
}

var (
	_ tea.Msg = statusFetchedMsg{}
	_ tea.Msg = progressUpdateMsg{}
	_ tea.Msg = linkCompleteMsg{}
	_ tea.Msg = setupCompletedMsg{}
)
