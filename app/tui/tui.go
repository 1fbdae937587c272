// Package tui implements the full-screen chat surface on Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lexcodex/reagent/react"
)

// Run bootstraps the chat TUI around a ready controller.
func Run(ctx context.Context, controller *react.Controller) error {
	if controller == nil {
		return fmt.Errorf("controller is required")
	}
	program := tea.NewProgram(
		NewModel(controller),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	_, err := program.Run()
	return err
}

// turnMsg delivers a finished turn back into the update loop.
type turnMsg struct {
	input  string
	result *react.TurnResult
	err    error
}

// Model implements the Bubble Tea model: a transcript viewport over a prompt
// bar, with a spinner while a turn is in flight.
type Model struct {
	controller *react.Controller

	feed    viewport.Model
	input   textinput.Model
	spinner spinner.Model

	transcript []string
	busy       bool
	width      int
	height     int
	ready      bool
}

// NewModel builds the initial TUI state.
func NewModel(controller *react.Controller) *Model {
	input := textinput.New()
	input.Placeholder = "Ask something (or \"quit\")"
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Model{
		controller: controller,
		input:      input,
		spinner:    spin,
		transcript: []string{welcomeStyle.Render("reagent — ReAct agent with tools and memory")},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := msg.Height - 3
		if feedHeight < 1 {
			feedHeight = 1
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width
			m.feed.Height = feedHeight
		}
		m.refreshFeed()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			if strings.EqualFold(text, "quit") {
				return m, tea.Quit
			}
			m.input.Reset()
			m.busy = true
			m.transcript = append(m.transcript, userStyle.Render("You: ")+text)
			m.refreshFeed()
			return m, tea.Batch(m.spinner.Tick, m.runTurn(text))
		}

	case turnMsg:
		m.busy = false
		if msg.err != nil {
			m.transcript = append(m.transcript, errorStyle.Render(fmt.Sprintf("error: %v", msg.err)))
		} else {
			for i, step := range msg.result.Steps {
				if step.Tool == "" {
					continue
				}
				m.transcript = append(m.transcript,
					stepStyle.Render(fmt.Sprintf("  [%d] %s(%s) -> %s", i+1, step.Tool, step.Input, step.Observation)))
			}
			m.transcript = append(m.transcript, agentStyle.Render("Agent: ")+msg.result.FinalAnswer)
		}
		m.refreshFeed()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.feed, cmd = m.feed.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}
	prompt := m.input.View()
	if m.busy {
		prompt = m.spinner.View() + " thinking..."
	}
	return m.feed.View() + "\n" + promptBarStyle.Width(m.width).Render(prompt)
}

func (m *Model) refreshFeed() {
	if !m.ready {
		return
	}
	m.feed.SetContent(strings.Join(m.transcript, "\n"))
	m.feed.GotoBottom()
}

// runTurn executes one agent turn off the update loop.
func (m *Model) runTurn(input string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.controller.RunTurn(context.Background(), input)
		return turnMsg{input: input, result: result, err: err}
	}
}
