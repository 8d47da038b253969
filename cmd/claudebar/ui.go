package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/poller"
	"github.com/claudebar/claudebar/pkg/usage"
)

const uiTickRate = time.Second

// Styles
var (
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	setupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	staleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	rowStyle    = lipgloss.NewStyle().PaddingLeft(2)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(52)
)

const setupInstructions = `To get your credentials:

1. Open claude.ai/settings/usage in your browser
2. Open DevTools -> Network tab
3. Find the 'usage' request and look at the Cookie header
4. Copy the 'sessionKey' value (starts with sk-ant-sid01-)
5. Copy the Organization ID from the URL`

type view int

const (
	viewStatus view = iota
	viewSettings
)

type stateMsg usage.State

type uiTickMsg time.Time

type model struct {
	state usage.State
	now   time.Time
	view  view

	spinner    spinner.Model
	sessionKey textinput.Model
	orgID      textinput.Model
	focusOrg   bool

	note string

	creds   *credentials.Store
	poll    *poller.Poller
	updates <-chan usage.State
	gotOne  bool
}

func newModel(creds *credentials.Store, poll *poller.Poller) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	sk := textinput.New()
	sk.Placeholder = "sk-ant-sid01-..."
	sk.EchoMode = textinput.EchoPassword
	sk.CharLimit = 256
	sk.Width = 44

	org := textinput.New()
	org.Placeholder = "organization id (UUID)"
	org.CharLimit = 64
	org.Width = 44

	return model{
		state:      usage.Unconfigured(),
		now:        time.Now(),
		spinner:    s,
		sessionKey: sk,
		orgID:      org,
		creds:      creds,
		poll:       poll,
		updates:    poll.Updates(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForState(m.updates), uiTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.view == viewSettings {
			return m.updateSettings(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.note = ""
			m.poll.RefreshNow()
		case "s":
			return m.openSettings()
		case "c":
			m.note = ""
			if err := m.creds.Clear(); err != nil {
				m.note = fmt.Sprintf("clear failed: %v", err)
			} else {
				m.note = "Credentials cleared"
				// State drops to unconfigured immediately; the poller
				// confirms on its next pass without touching the network.
				m.state = usage.Unconfigured()
				m.poll.RefreshNow()
			}
		}

	case stateMsg:
		m.state = usage.State(msg)
		m.gotOne = true
		cmds = append(cmds, waitForState(m.updates))

	case uiTickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, uiTick())

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) openSettings() (tea.Model, tea.Cmd) {
	m.view = viewSettings
	m.note = ""
	m.focusOrg = false
	m.sessionKey.SetValue("")
	m.orgID.SetValue("")
	m.orgID.Blur()
	return m, m.sessionKey.Focus()
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = viewStatus
		return m, nil
	case "tab", "shift+tab":
		m.focusOrg = !m.focusOrg
		if m.focusOrg {
			m.sessionKey.Blur()
			return m, m.orgID.Focus()
		}
		m.orgID.Blur()
		return m, m.sessionKey.Focus()
	case "enter":
		if !m.focusOrg {
			m.focusOrg = true
			m.sessionKey.Blur()
			return m, m.orgID.Focus()
		}
		sessionKey := strings.TrimSpace(m.sessionKey.Value())
		orgID := strings.TrimSpace(m.orgID.Value())
		if err := m.creds.Save(sessionKey, orgID); err != nil {
			m.note = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.view = viewStatus
		m.note = "Credentials saved"
		m.poll.RefreshNow()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusOrg {
		m.orgID, cmd = m.orgID.Update(msg)
	} else {
		m.sessionKey, cmd = m.sessionKey.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	if m.view == viewSettings {
		return m.renderSettings()
	}
	return m.renderStatus()
}

func (m model) renderStatus() string {
	label := StatusLabel(m.state)
	switch m.state.Phase {
	case usage.PhaseUnconfigured:
		label = setupStyle.Render(label)
	case usage.PhaseError:
		label = errorStyle.Render(label)
	default:
		label = labelStyle.Render(label)
	}
	if !m.gotOne {
		label = fmt.Sprintf("%s %s", m.spinner.View(), label)
	}

	var body strings.Builder
	body.WriteString(label + "\n\n")

	for _, row := range MenuRows(m.state, m.now) {
		line := row.String()
		if row.Stale {
			line = staleStyle.Render(line)
		}
		body.WriteString(rowStyle.Render(line) + "\n")
	}

	if m.state.Phase == usage.PhaseError && m.state.Err != nil {
		body.WriteString("\n" + subtleStyle.Render(errorHint(m.state.Err)) + "\n")
	}
	if m.state.Phase == usage.PhaseUnconfigured {
		body.WriteString("\n" + subtleStyle.Render("Press s to enter your credentials.") + "\n")
	}

	if m.note != "" {
		body.WriteString("\n" + noteStyle.Render(m.note) + "\n")
	}

	footer := subtleStyle.Render("r refresh • s settings • c clear credentials • q quit")
	return paneStyle.Render(body.String()) + "\n" + footer + "\n"
}

func (m model) renderSettings() string {
	var body strings.Builder
	body.WriteString(labelStyle.Render("Settings") + "\n\n")
	body.WriteString(subtleStyle.Render(setupInstructions) + "\n\n")
	body.WriteString("Session key:\n" + m.sessionKey.View() + "\n\n")
	body.WriteString("Organization id:\n" + m.orgID.View() + "\n")
	if m.note != "" {
		body.WriteString("\n" + errorStyle.Render(m.note) + "\n")
	}
	footer := subtleStyle.Render("enter next/save • tab switch field • esc cancel")
	return paneStyle.Render(body.String()) + "\n" + footer + "\n"
}

// errorHint maps an error kind to the short diagnostic line under the
// rows. Raw error payloads stay in the log file.
func errorHint(err *usage.PollError) string {
	switch err.Kind {
	case usage.ErrAuth:
		return "Session key rejected. Open Settings (s) and paste a fresh one."
	case usage.ErrNetwork:
		return "Could not reach claude.ai. Will retry on the next tick."
	default:
		return "The usage API returned an unexpected response."
	}
}

// Commands

func waitForState(ch <-chan usage.State) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ch)
	}
}

func uiTick() tea.Cmd {
	return tea.Tick(uiTickRate, func(t time.Time) tea.Msg {
		return uiTickMsg(t)
	})
}
