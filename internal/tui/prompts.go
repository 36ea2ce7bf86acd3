// Package tui provides the interactive prompts used for configuration and
// consent gating. The orchestration engine itself never reads the terminal.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInteractiveDisabled is returned when interactive prompts are disabled via LASSO_NO_INTERACTIVE
var ErrInteractiveDisabled = fmt.Errorf("interactive prompts are disabled (LASSO_NO_INTERACTIVE is set)")

// checkInteractiveAllowed returns an error if interactive mode is disabled for testing
func checkInteractiveAllowed() error {
	if os.Getenv("LASSO_NO_INTERACTIVE") != "" {
		return ErrInteractiveDisabled
	}
	return nil
}

// textInputModel is a simple text input prompt model
type textInputModel struct {
	textInput textinput.Model
	prompt    string
	done      bool
	err       error
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = fmt.Errorf("canceled")
			m.done = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	if m.done {
		return ""
	}
	styleObj := lipgloss.NewStyle().Margin(1, 0)
	return styleObj.Render(fmt.Sprintf("%s\n%s\n\n(Press Enter to submit, Ctrl+C to cancel)", m.prompt, m.textInput.View()))
}

func runTextInput(prompt string, echoMode textinput.EchoMode) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}

	input := textinput.New()
	input.Focus()
	input.EchoMode = echoMode

	model := textInputModel{textInput: input, prompt: prompt}
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return "", err
	}

	result := finalModel.(textInputModel)
	if result.err != nil {
		return "", result.err
	}
	return strings.TrimSpace(result.textInput.Value()), nil
}

// Input prompts for a single line of text
func Input(prompt string) (string, error) {
	return runTextInput(prompt, textinput.EchoNormal)
}

// Secret prompts for a value without echoing it
func Secret(prompt string) (string, error) {
	return runTextInput(prompt, textinput.EchoPassword)
}

// confirmModel is a simple yes/no confirmation prompt model
type confirmModel struct {
	prompt string
	choice bool
	done   bool
	err    error
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = fmt.Errorf("canceled")
			m.done = true
			return m, tea.Quit
		case tea.KeyRunes:
			switch strings.ToLower(string(msg.Runes)) {
			case "y", "yes":
				m.choice = true
				m.done = true
				return m, tea.Quit
			case "n", "no":
				m.choice = false
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	styleObj := lipgloss.NewStyle().Margin(1, 0)
	return styleObj.Render(fmt.Sprintf("%s [y/n]", m.prompt))
}

// Confirm asks a yes/no question and returns the operator's choice
func Confirm(prompt string) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	model := confirmModel{prompt: prompt}
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return false, err
	}

	result := finalModel.(confirmModel)
	if result.err != nil {
		return false, result.err
	}
	return result.choice, nil
}

// Prompter adapts the package prompts to the config.Prompter interface
type Prompter struct{}

// Input prompts for a single line of text
func (Prompter) Input(prompt string) (string, error) {
	return Input(prompt)
}

// Secret prompts for a value without echoing it
func (Prompter) Secret(prompt string) (string, error) {
	return Secret(prompt)
}
