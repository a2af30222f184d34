package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"crewdeck/internal/model"
)

// Auth screen: a login form that flips into a register form with ctrl+r.
// Server-side failures surface through the session manager's recorded error;
// password-strength problems are caught locally before any request is made.

type authMode int

const (
	authLogin authMode = iota
	authRegister
)

type authModel struct {
	mode     authMode
	inputs   []textinput.Model
	focus    int
	localErr string
}

const (
	authFieldEmail = iota
	authFieldPassword
	authFieldFirst
	authFieldLast
)

func newAuthModel() authModel {
	mk := func(placeholder string, secret bool) textinput.Model {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.CharLimit = 120
		if secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		return ti
	}
	m := authModel{
		inputs: []textinput.Model{
			mk("email", false),
			mk("password", true),
			mk("first name", false),
			mk("last name", false),
		},
	}
	m.inputs[authFieldEmail].Focus()
	return m
}

func (m authModel) visibleFields() int {
	if m.mode == authRegister {
		return 4
	}
	return 2
}

func (m *authModel) setFocus(i int) tea.Cmd {
	n := m.visibleFields()
	m.focus = (i + n) % n
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m *authModel) toggleMode() tea.Cmd {
	if m.mode == authLogin {
		m.mode = authRegister
	} else {
		m.mode = authLogin
	}
	m.localErr = ""
	return m.setFocus(0)
}

func (m *authModel) credentials() model.Credentials {
	return model.Credentials{
		Email:    strings.TrimSpace(m.inputs[authFieldEmail].Value()),
		Password: m.inputs[authFieldPassword].Value(),
	}
}

func (m *authModel) registration() model.Registration {
	return model.Registration{
		Email:     strings.TrimSpace(m.inputs[authFieldEmail].Value()),
		Password:  m.inputs[authFieldPassword].Value(),
		FirstName: strings.TrimSpace(m.inputs[authFieldFirst].Value()),
		LastName:  strings.TrimSpace(m.inputs[authFieldLast].Value()),
	}
}

func (m *authModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		return m.setFocus(m.focus + 1)
	case "shift+tab", "up":
		return m.setFocus(m.focus - 1)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m authModel) view(screenW, screenH int, sessionErr string, checking bool) string {
	title := "Sign in to Crewdeck"
	action := "sign in"
	if m.mode == authRegister {
		title = "Create a Crewdeck account"
		action = "create account"
	}

	bodyW := modalBodyWidth(screenW)
	labels := []string{"Email", "Password", "First name", "Last name"}
	focusLabel := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	var b strings.Builder
	for i := 0; i < m.visibleFields(); i++ {
		st := styleMuted()
		if i == m.focus {
			st = focusLabel
		}
		b.WriteString(st.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, m.inputs[i].View()))
		b.WriteString("\n")
	}

	if msg := m.localErr; msg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorError).Width(bodyW).Render(msg))
		b.WriteString("\n")
	} else if sessionErr != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(colorError).Width(bodyW).Render(sessionErr))
		b.WriteString("\n")
	}
	if checking {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("checking session…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styleMuted().Width(bodyW).Render(
		"enter: " + action + "   ctrl+r: switch login/register   ctrl+c: quit"))

	return placeCentered(screenW, screenH, renderModalBox(screenW, title, b.String()))
}
