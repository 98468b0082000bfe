// Package tui provides a Bubble Tea terminal user interface for jukelight.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jukelight/jukelight/internal/controller"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2)

	inputStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))
)

// Controls is the slice of the controller the UI drives.
type Controls interface {
	Digit(d byte)
	Commit()
	Reload()
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	controls Controls
	states   <-chan controller.DisplayState

	display controller.DisplayState
	spinner spinner.Model

	width  int
	height int
}

// NewModel creates a new TUI model fed by DisplayState snapshots.
func NewModel(controls Controls, states <-chan controller.DisplayState) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	return Model{
		controls: controls,
		states:   states,
		spinner:  sp,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForState())
}

// Message types
type (
	// StateMsg carries a fresh DisplayState snapshot from the controller.
	StateMsg struct {
		State controller.DisplayState
	}

	// StatesClosedMsg is sent when the controller stops publishing.
	StatesClosedMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "enter":
			m.controls.Commit()

		case "r":
			m.controls.Reload()

		default:
			if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
				m.controls.Digit(key[0])
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StateMsg:
		m.display = msg.State
		cmds = append(cmds, m.waitForState())

	case StatesClosedMsg:
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

// waitForState returns a command that blocks for the next snapshot.
func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		state, ok := <-m.states
		if !ok {
			return StatesClosedMsg{}
		}
		return StateMsg{State: state}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header, tinted by the artwork's edge colors.
	start, end := m.display.Gradient.CSS()
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(start)).
		Render("  jukelight  ")
	b.WriteString(titleStyle.Render("Jukebox"))
	b.WriteString(" ")
	b.WriteString(header)
	b.WriteString(dimStyle.Render(fmt.Sprintf("gradient %s - %s", start, end)))
	b.WriteString("\n\n")

	b.WriteString(m.viewNowPlaying())
	b.WriteString("\n")
	b.WriteString(m.viewInput())
	b.WriteString("\n")
	b.WriteString(m.viewNotifications())

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("digits: pick a song • enter: confirm • r: reload song list • q: quit"))

	return b.String()
}

func (m Model) viewNowPlaying() string {
	var b strings.Builder

	if !m.display.HasTrack {
		b.WriteString(dimStyle.Render("Nothing playing"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(subtitleStyle.Render("Now playing:"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.display.Track.DisplayLine()))
	b.WriteString("\n")

	if m.display.Resolving {
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" finding artwork..."))
		b.WriteString("\n")
	} else if m.display.Art != nil {
		bounds := m.display.Art.Image.Bounds()
		line := fmt.Sprintf("artwork: %s (%dx%d)", m.display.Art.Source, bounds.Dx(), bounds.Dy())
		if m.display.Art.Placeholder {
			line = "artwork: placeholder"
		}
		b.WriteString(infoStyle.Render(line))
		b.WriteString("\n")
	}

	queue := m.display.Queue
	b.WriteString(dimStyle.Render(fmt.Sprintf("queue: %d song(s), %s", queue.Length, queue.State)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInput() string {
	if !m.display.InputActive {
		return dimStyle.Render("keypad: ----") + "\n"
	}
	return inputStyle.Render(fmt.Sprintf("keypad: %04d", m.display.InputValue)) + "\n"
}

func (m Model) viewNotifications() string {
	var b strings.Builder

	for _, n := range m.display.Notifications {
		var style lipgloss.Style
		prefix := "•"
		switch n.Kind {
		case controller.Failure:
			style = errorStyle
			prefix = "✗"
		case controller.Queued:
			style = successStyle
			prefix = "✓"
		case controller.Command:
			style = infoStyle
			prefix = "›"
		case controller.SongInfo:
			style = subtitleStyle
			prefix = "♪"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + n.Text))
		b.WriteString("\n")
	}

	return b.String()
}

// Run starts the TUI application and blocks until it exits.
func Run(controls Controls, states <-chan controller.DisplayState) error {
	p := tea.NewProgram(NewModel(controls, states), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
