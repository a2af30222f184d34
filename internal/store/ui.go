package store

import (
	"sync"
	"time"
)

type OverlayKind string

const (
	OverlayNone   OverlayKind = ""
	OverlayTeam   OverlayKind = "team"
	OverlayTask   OverlayKind = "task"
	OverlayMember OverlayKind = "member"
)

// OverlayState is the single modal slot. At most one overlay is ever active;
// Payload is the entity being edited, or nil when creating — consumers must
// not infer edit-vs-create from the kind alone.
type OverlayState struct {
	Active  OverlayKind
	Payload any
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	ID       int
	Message  string
	Severity Severity
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type UIState struct {
	Overlay       OverlayState
	Notifications []Notification
	Theme         Theme
	SidebarOpen   bool
}

// uiDurable is the durable subset of the UI store: only the theme survives a
// restart.
type uiDurable struct {
	Theme Theme `json:"theme"`
}

const defaultAutoDismiss = 5 * time.Second

// UIStore coordinates the modal overlay slot, the transient notification
// queue, the sidebar flag, and the theme.
//
// The theme is applied as a global side effect through the injected apply
// hook (the TUI flips lipgloss's background mode; a different front end would
// set its own document-level attribute): once at construction from the
// durable value and again on every change.
type UIStore struct {
	mu          sync.Mutex
	overlay     OverlayState
	notes       []Notification
	nextNoteID  int
	timers      map[int]*time.Timer
	theme       Theme
	sidebarOpen bool

	autoDismiss time.Duration
	applyTheme  func(Theme)
	file        stateFile
	signal      broadcaster
}

func NewUIStore(dir string, applyTheme func(Theme)) *UIStore {
	s := &UIStore{
		timers:      map[int]*time.Timer{},
		theme:       ThemeLight,
		sidebarOpen: true,
		autoDismiss: defaultAutoDismiss,
		applyTheme:  applyTheme,
		file:        stateFile{dir: dir, name: uiStateFileName},
	}
	var durable uiDurable
	_ = s.file.load(&durable)
	if durable.Theme == ThemeDark {
		s.theme = ThemeDark
	}
	if s.applyTheme != nil {
		s.applyTheme(s.theme)
	}
	return s
}

func (s *UIStore) Subscribe(fn func()) func() { return s.signal.Subscribe(fn) }

func (s *UIStore) State() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return UIState{
		Overlay:       s.overlay,
		Notifications: append([]Notification(nil), s.notes...),
		Theme:         s.theme,
		SidebarOpen:   s.sidebarOpen,
	}
}

// Open shows an overlay. An already-open overlay is replaced outright: no
// stacking, no confirmation.
func (s *UIStore) Open(kind OverlayKind, payload any) {
	if kind == OverlayNone {
		s.Close()
		return
	}
	s.mu.Lock()
	s.overlay = OverlayState{Active: kind, Payload: payload}
	s.mu.Unlock()
	s.signal.notify()
}

// Close dismisses the active overlay and discards its payload.
func (s *UIStore) Close() {
	s.mu.Lock()
	s.overlay = OverlayState{}
	s.mu.Unlock()
	s.signal.notify()
}

// SetOverlayPayload swaps the payload of the active overlay (e.g. a form
// updating its draft). No-op when nothing is open.
func (s *UIStore) SetOverlayPayload(payload any) {
	s.mu.Lock()
	if s.overlay.Active == OverlayNone {
		s.mu.Unlock()
		return
	}
	s.overlay.Payload = payload
	s.mu.Unlock()
	s.signal.notify()
}

// Notify appends to the notification queue (insertion order, no
// deduplication) and schedules automatic removal. It returns the
// notification id for early dismissal.
func (s *UIStore) Notify(message string, severity Severity) int {
	s.mu.Lock()
	s.nextNoteID++
	id := s.nextNoteID
	s.notes = append(s.notes, Notification{ID: id, Message: message, Severity: severity})
	s.timers[id] = time.AfterFunc(s.autoDismiss, func() { s.Dismiss(id) })
	s.mu.Unlock()
	s.signal.notify()
	return id
}

// Dismiss removes a notification before its auto-removal fires. Unknown ids
// are ignored (the timer may already have collected it).
func (s *UIStore) Dismiss(id int) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	found := false
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.signal.notify()
	}
}

func (s *UIStore) ClearNotifications() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	changed := len(s.notes) > 0
	s.notes = nil
	s.mu.Unlock()
	if changed {
		s.signal.notify()
	}
}

func (s *UIStore) SetTheme(theme Theme) {
	if theme != ThemeLight && theme != ThemeDark {
		return
	}
	s.mu.Lock()
	s.theme = theme
	apply := s.applyTheme
	s.mu.Unlock()
	_ = s.file.save(uiDurable{Theme: theme})
	if apply != nil {
		apply(theme)
	}
	s.signal.notify()
}

func (s *UIStore) ToggleTheme() {
	s.mu.Lock()
	next := ThemeDark
	if s.theme == ThemeDark {
		next = ThemeLight
	}
	s.mu.Unlock()
	s.SetTheme(next)
}

func (s *UIStore) ToggleSidebar() {
	s.mu.Lock()
	s.sidebarOpen = !s.sidebarOpen
	s.mu.Unlock()
	s.signal.notify()
}

// SetAutoDismiss overrides the notification lifetime (tests shorten it).
func (s *UIStore) SetAutoDismiss(d time.Duration) {
	s.mu.Lock()
	s.autoDismiss = d
	s.mu.Unlock()
}

// Shutdown stops all pending auto-dismiss timers. Called at application exit.
func (s *UIStore) Shutdown() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
}
