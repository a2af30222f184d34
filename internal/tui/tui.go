package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"crewdeck/internal/store"
)

// Run starts the interactive TUI against an already-wired store bundle and
// blocks until the user quits. Store changes are forwarded into the program as
// messages so background completions (loads, auto-dismissed notifications)
// repaint without user input.
func Run(stores *store.Stores) error {
	applyColorProfilePreference()
	if th, ok := themeFromEnv(); ok {
		stores.UI.SetTheme(th)
	}

	p := tea.NewProgram(newAppModel(stores), tea.WithAltScreen())

	cancels := []func(){
		stores.Session.Subscribe(func() { p.Send(stateChangedMsg{}) }),
		stores.Tasks.Subscribe(func() { p.Send(stateChangedMsg{}) }),
		stores.Teams.Subscribe(func() { p.Send(stateChangedMsg{}) }),
		stores.UI.Subscribe(func() { p.Send(stateChangedMsg{}) }),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	_, err := p.Run()
	return err
}
