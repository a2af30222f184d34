package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. Creating a renderer with
	// WithAutoStyle can trigger terminal capability/background queries that may
	// block on some terminals, so we pick the style ourselves and cache.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders a task description for the detail pane. On renderer
// errors the raw markdown is shown instead of nothing.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := "light"
	if lipgloss.HasDarkBackground() {
		style = "dark"
	}

	mdRendererMu.Lock()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		// Re-check in case a concurrent goroutine filled it.
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
