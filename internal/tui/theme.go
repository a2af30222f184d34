package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"crewdeck/internal/store"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds.
// We use lipgloss.AdaptiveColor where possible and only apply "faint" styling
// on dark backgrounds (faint text on light terminals often becomes illegible).

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

// Common semantic colors used across the TUI.
var (
	colorMuted     lipgloss.TerminalColor = ac("240", "243")
	colorSurfaceFg lipgloss.TerminalColor = ac("235", "252")

	// Slightly elevated surfaces for controls/inputs so they remain visible
	// on light terminals.
	colorControlBg lipgloss.TerminalColor = ac("252", "235")
	colorInputBg   lipgloss.TerminalColor = ac("254", "234")

	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")

	colorAccent   lipgloss.TerminalColor = ac("27", "62") // blue
	colorAccentFg lipgloss.TerminalColor = ac("255", "235")

	// Notification severities.
	colorSuccess lipgloss.TerminalColor = ac("28", "78")
	colorWarning lipgloss.TerminalColor = ac("130", "214")
	colorError   lipgloss.TerminalColor = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func severityColor(sev store.Severity) lipgloss.TerminalColor {
	switch sev {
	case store.SeveritySuccess:
		return colorSuccess
	case store.SeverityWarning:
		return colorWarning
	case store.SeverityError:
		return colorError
	default:
		return colorAccent
	}
}

// ApplyTheme is the global theme side effect wired into the UI store: the
// durable theme choice drives Lip Gloss's light/dark adaptive variant for the
// whole process.
func ApplyTheme(th store.Theme) {
	lipgloss.SetHasDarkBackground(th == store.ThemeDark)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// Note: termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which is useful for
// non-interactive CLI output but can accidentally disable colors in a TUI. For the TUI,
// we only honor NO_COLOR and otherwise follow the terminal's capabilities.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// If TERM/COLORTERM indicate stronger support than the detector reports,
	// trust the env. Color probing under-reports in some terminals.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
}

// themeFromEnv reports an explicit CREWDECK_TUI_THEME override. When set it
// replaces the durable preference.
func themeFromEnv() (store.Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("CREWDECK_TUI_THEME"))) {
	case "light":
		return store.ThemeLight, true
	case "dark":
		return store.ThemeDark, true
	}
	return "", false
}
