// Package setupui is the interactive terminal wizard for writing a WiFi
// credential file from a host machine, for controllers whose filesystem is
// mounted or synced rather than provisioned over the captive portal.
package setupui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andoniskgr/heating-system/internal/credentials"
)

// ErrAborted is returned when the user quits without saving.
var ErrAborted = errors.New("setup aborted")

const (
	fieldSSID = iota
	fieldPassword
	fieldCount
)

// Model is the Bubble Tea model for the credential wizard.
type Model struct {
	inputs [fieldCount]textinput.Model
	focus  int

	store *credentials.Store

	errMsg  string
	saved   bool
	aborted bool
}

// NewModel builds the wizard for one credential store.
func NewModel(store *credentials.Store) Model {
	ssid := textinput.New()
	ssid.Placeholder = "network name"
	ssid.CharLimit = 32
	ssid.Width = 40
	ssid.Focus()

	password := textinput.New()
	password.Placeholder = "leave empty for an open network"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 64
	password.Width = 40

	m := Model{store: store}
	m.inputs[fieldSSID] = ssid
	m.inputs[fieldPassword] = password
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit

		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount)

		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount)

		case "enter":
			if m.focus < fieldCount-1 {
				return m.setFocus(m.focus + 1)
			}
			return m.save()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) setFocus(focus int) (Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = focus
	return m, m.inputs[m.focus].Focus()
}

func (m Model) save() (Model, tea.Cmd) {
	ssid := strings.TrimSpace(m.inputs[fieldSSID].Value())
	if ssid == "" {
		m.errMsg = "SSID must not be empty"
		return m.setFocus(fieldSSID)
	}

	err := m.store.Save(credentials.Credentials{
		SSID:     ssid,
		Password: m.inputs[fieldPassword].Value(),
	})
	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}

	m.errMsg = ""
	m.saved = true
	return m, tea.Quit
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Heating Controller WiFi Setup"))
	b.WriteString("\n\n")

	if m.saved {
		b.WriteString(SuccessStyle.Render("✓ Credentials saved"))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render(fmt.Sprintf("Written to %s", m.store.Path())))
		b.WriteString("\n")
		return b.String()
	}

	labels := [fieldCount]string{"Network SSID", "Password"}
	for i, input := range m.inputs {
		style := LabelBlurredStyle
		if i == m.focus {
			style = LabelFocusedStyle
		}
		b.WriteString(style.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render("✗ " + m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(HelpStyle.Render("enter: next/save · tab: switch field · esc: abort"))
	b.WriteString("\n")
	return b.String()
}

// Run drives the wizard to completion. It returns ErrAborted when the
// user quits without saving.
func Run(store *credentials.Store) error {
	final, err := tea.NewProgram(NewModel(store)).Run()
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return fmt.Errorf("unexpected wizard model type %T", final)
	}
	if m.aborted {
		return ErrAborted
	}
	if !m.saved {
		return ErrAborted
	}
	return nil
}
