package store

import (
	"context"

	"crewdeck/internal/api"
)

// Stores bundles the four stores of one application lifetime. Construction
// and teardown are explicit lifecycle calls bound to application start/stop.
//
// Stores never call each other except for the declared couplings: the team
// store reads the session identity for membership checks, and the view layer
// reads team state when building task forms (a snapshot read of settled
// state, never awaited jointly).
type Stores struct {
	Session *SessionManager
	Tasks   *TaskStore
	Teams   *TeamStore
	UI      *UIStore
}

// New wires the stores to one API client and one config dir. applyTheme is
// the global theme side effect (may be nil for headless use).
func New(client *api.Client, dir string, applyTheme func(Theme)) *Stores {
	session := NewSessionManager(client, dir)
	return &Stores{
		Session: session,
		Tasks:   NewTaskStore(client),
		Teams:   NewTeamStore(client, session),
		UI:      NewUIStore(dir, applyTheme),
	}
}

// Logout tears the session down: best-effort server notification, then all
// session-scoped state is reset. The theme deliberately survives.
func (s *Stores) Logout(ctx context.Context) {
	s.Session.Logout(ctx)
	s.Tasks.Reset()
	s.Teams.Reset()
	s.UI.Close()
	s.UI.ClearNotifications()
}

// Shutdown releases timers. Safe to call once at application exit.
func (s *Stores) Shutdown() {
	s.UI.Shutdown()
}
