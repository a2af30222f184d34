package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Modal rendering. A modal is a centered box with a header bar and a padded
// body. Avoid borders: some terminals show background artifacts when nesting
// bordered components inside a box with a background color.

const modalMaxWidth = 64

func modalWidth(screenW int) int {
	w := screenW - 8
	if w > modalMaxWidth {
		w = modalMaxWidth
	}
	if w < 24 {
		w = 24
	}
	return w
}

func modalBodyWidth(screenW int) int {
	return modalWidth(screenW) - 4
}

func renderModalBox(screenW int, title string, content string) string {
	w := modalWidth(screenW)
	bodyW := w - 4

	header := lipgloss.NewStyle().
		Width(w).
		Padding(0, 2).
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Render(truncateLine(title, bodyW))

	var body strings.Builder
	for i, ln := range strings.Split(content, "\n") {
		if i > 0 {
			body.WriteString("\n")
		}
		if xansi.StringWidth(ln) > bodyW {
			ln = truncateLine(ln, bodyW)
		}
		body.WriteString(ln)
	}

	bodyBox := lipgloss.NewStyle().
		Width(w).
		Padding(1, 2).
		Render(body.String())

	return lipgloss.JoinVertical(lipgloss.Left, header, bodyBox)
}

func placeCentered(screenW, screenH int, box string) string {
	return lipgloss.Place(screenW, screenH, lipgloss.Center, lipgloss.Center, box)
}

// renderInputLine renders a text input as a single visual line. If the view
// ever contains newlines (or overflows due to ANSI/cursor styling), it can
// trigger wrapping that looks like "newline insertion" while typing.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Never exceed the modal body width; terminate ANSI styling to prevent bleed.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

type confirmFocus int

const (
	confirmFocusConfirm confirmFocus = iota
	confirmFocusCancel
)

func renderConfirmModal(screenW int, title, body, confirmLabel, cancelLabel string, focus confirmFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)
	help := styleMuted().Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{body, "", controls, "", help}, "\n")
	return renderModalBox(screenW, title, content)
}
