package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mixview/mixview/internal/api"
	apikey "github.com/mixview/mixview/internal/keys"
	"github.com/mixview/mixview/internal/setup"
)

// ViewState represents the current view in the wizard.
type ViewState int

const (
	WelcomeView ViewState = iota
	ServicesView
	CredentialView
	LinkingView
	DoneView
)

// Model represents the wizard application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	orchestrator *setup.Orchestrator
	width        int
	height       int
	status       *setup.AggregateStatus
	serviceList  list.Model
	selected     string
	input        textinput.Model
	inputErr     error
	progressChan chan setup.ProgressUpdate
	progress     setup.ProgressUpdate
	linkResult   *api.TestResult
	linkErr      error
	completion   *api.CompleteSetupResponse
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new wizard model with the provided dependencies.
func NewModel(ctx context.Context, orchestrator *setup.Orchestrator) *Model {
	return &Model{
		ctx:          ctx,
		view:         WelcomeView,
		orchestrator: orchestrator,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init initializes the wizard by fetching the account's setup status.
func (m *Model) Init() tea.Cmd {
	return m.fetchStatus()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.serviceList.Width() == 0 {
			m.serviceList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case WelcomeView:
			return m.handleWelcomeKeys(msg)
		case ServicesView:
			return m.handleServicesKeys(msg)
		case CredentialView:
			return m.handleCredentialKeys(msg)
		case LinkingView:
			return m.handleLinkingKeys(msg)
		case DoneView:
			return m.handleDoneKeys(msg)
		}

	case statusFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.status = msg.status
		items := make([]list.Item, len(api.LinkableServices))
		for i, svc := range api.LinkableServices {
			items[i] = serviceItem{name: svc, connected: serviceConnected(msg.status, svc)}
		}
		m.serviceList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.serviceList.Title = "Link your services"
		// The wizard renders its own footer, and four items need no filter.
		m.serviceList.SetShowHelp(false)
		m.serviceList.SetFilteringEnabled(false)
		m.serviceList.SetSize(m.width-4, m.height-8)
		if m.view == LinkingView && m.linkErr == nil {
			m.view = ServicesView
			m.selected = ""
			m.linkResult = nil
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = setup.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case linkCompleteMsg:
		m.progressChan = nil
		m.linkResult = msg.result
		m.linkErr = msg.err
		if msg.err != nil {
			return m, nil
		}
		return m, m.fetchStatus()

	case setupCompletedMsg:
		m.completion = msg.resp
		m.err = msg.err
		m.view = DoneView
		return m, nil
	}

	return m.updateControls(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != DoneView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case WelcomeView:
		return m.renderWelcome()
	case ServicesView:
		return m.renderServices()
	case CredentialView:
		return m.renderCredential()
	case LinkingView:
		return m.renderLinking()
	case DoneView:
		return m.renderDone()
	default:
		return ""
	}
}

func (m *Model) handleWelcomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.status != nil {
			m.view = ServicesView
		}
	}
	return m, nil
}

func (m *Model) handleServicesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = WelcomeView
		return m, nil
	case "?":
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case "c":
		return m, m.completeSetup()
	case "enter":
		selected := m.serviceList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(serviceItem); ok {
				m.selected = item.name
				m.progress = setup.ProgressUpdate{}
				m.linkErr = nil
				if item.name == api.ServiceSpotify {
					m.view = LinkingView
					return m, m.startSpotifyLink()
				}
				m.startCredentialInput(item.name)
				m.view = CredentialView
				return m, textinput.Blink
			}
		}
	}

	var cmd tea.Cmd
	m.serviceList, cmd = m.serviceList.Update(msg)
	return m, cmd
}

func (m *Model) handleCredentialKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = ServicesView
		m.inputErr = nil
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		if err := apikey.ValidateFormat(m.selected, value); err != nil {
			m.inputErr = err
			return m, nil
		}
		m.view = LinkingView
		m.progress = setup.ProgressUpdate{}
		m.linkErr = nil
		return m, m.startAPIKeyLink(m.selected, value)
	}

	m.inputErr = nil
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleLinkingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.linkErr == nil {
			return m, nil
		}
		m.linkErr = nil
		m.progress = setup.ProgressUpdate{}
		if m.selected == api.ServiceSpotify {
			return m, m.startSpotifyLink()
		}
		m.view = CredentialView
		return m, textinput.Blink
	case "esc":
		if m.linkErr == nil {
			return m, nil
		}
		m.view = ServicesView
		m.linkErr = nil
		return m, m.fetchStatus()
	}
	return m, nil
}

func (m *Model) handleDoneKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = WelcomeView
		m.completion = nil
		m.err = nil
		m.linkErr = nil
		m.selected = ""
		return m, m.fetchStatus()
	}
	return m, nil
}

func (m *Model) updateControls(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ServicesView:
		m.serviceList, cmd = m.serviceList.Update(msg)
	case CredentialView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) startCredentialInput(service string) {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("%s credential", displayName(service))
	ti.CharLimit = 128
	ti.Width = 48
	ti.Focus()
	m.input = ti
	m.inputErr = nil
}

func (m *Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.orchestrator.Status(m.ctx)
		return statusFetchedMsg{status: status, err: err}
	}
}

func (m *Model) startSpotifyLink() tea.Cmd {
	m.progressChan = make(chan setup.ProgressUpdate, 50)

	go func() {
		result, err := m.orchestrator.LinkSpotify(m.ctx, m.progressChan, false)
		m.linkResult = result
		m.linkErr = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) startAPIKeyLink(service, secret string) tea.Cmd {
	m.progressChan = make(chan setup.ProgressUpdate, 50)

	go func() {
		result, err := m.orchestrator.LinkAPIKey(m.ctx, m.progressChan, service, secret, false)
		m.linkResult = result
		m.linkErr = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return linkCompleteMsg{service: m.selected, result: m.linkResult, err: m.linkErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			return linkCompleteMsg{service: m.selected, result: m.linkResult, err: m.linkErr}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) completeSetup() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.orchestrator.Complete(m.ctx)
		return setupCompletedMsg{resp: resp, err: err}
	}
}

func (m *Model) renderWelcome() string {
	title := styles.title.Render("MixView Setup")
	if m.status == nil {
		return fmt.Sprintf("%s\nLoading setup status...", title)
	}

	summary := fmt.Sprintf("\n%d of %d services connected (%.0f%%)\n\n",
		len(m.status.Connected), len(m.status.Required), m.status.Completion)

	var lines strings.Builder
	for _, svc := range api.LinkableServices {
		marker := styles.warn.Render("○")
		if serviceConnected(m.status, svc) {
			marker = styles.ok.Render("●")
		}
		fmt.Fprintf(&lines, "  %s %s\n", marker, displayName(svc))
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s%s%s\n%s", title, summary, lines.String(), helpView)
}

func (m *Model) renderServices() string {
	return fmt.Sprintf("%s\n\n%s", m.serviceList.View(), m.help.View(m.keys))
}

func (m *Model) renderCredential() string {
	title := styles.title.Render(fmt.Sprintf("Link %s", displayName(m.selected)))
	hint := styles.help.Render(apikey.FormatHint(m.selected))

	body := fmt.Sprintf("%s\n%s\n\n%s\n", title, hint, m.input.View())
	if m.inputErr != nil {
		body += fmt.Sprintf("\n%s\n", styles.err.Render(m.inputErr.Error()))
	}

	submitKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	quitKey := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	helpView := m.help.ShortHelpView([]key.Binding{submitKey, m.keys.back, quitKey})

	return fmt.Sprintf("%s\n%s", body, helpView)
}

func (m *Model) renderLinking() string {
	title := styles.title.Render(fmt.Sprintf("Linking %s", displayName(m.selected)))

	if m.linkErr != nil {
		failure := styles.err.Render(fmt.Sprintf("✗ %v", m.linkErr))
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n%s\n\n%s", title, failure, helpView)
	}

	var phase string
	switch m.progress.Phase {
	case setup.Intro:
		phase = "Contacting the backend..."
	case setup.Credentials:
		phase = "Waiting for browser authorization..."
	case setup.APIKey:
		phase = fmt.Sprintf("Storing credential (%d/%d)", m.progress.Step, m.progress.Total)
	case setup.Testing:
		phase = fmt.Sprintf("Testing connection (%d/%d)", m.progress.Step, m.progress.Total)
	case setup.Connected:
		phase = styles.ok.Render("✓ Connected")
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderDone() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Setup not complete: %v\n\nPress r to go back, q to quit", m.err))
	}

	if m.completion == nil {
		return styles.err.Render("No result available\n\nPress r to go back, q to quit")
	}

	title := styles.ok.Render("✓ Setup Complete!")
	info := fmt.Sprintf("\n%s\nConfigured services: %s\n",
		m.completion.Message, strings.Join(m.completion.ConfiguredServices, ", "))

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func serviceConnected(status *setup.AggregateStatus, service string) bool {
	if status == nil {
		return false
	}
	for _, s := range status.Connected {
		if s == service {
			return true
		}
	}
	return false
}
