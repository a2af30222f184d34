package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode"

	"crewdeck/internal/model"
)

// AuthAPI is the slice of the API client the session manager consumes.
// SessionStatus returns (nil, nil) for "no active session".
type AuthAPI interface {
	SessionStatus(ctx context.Context) (*model.UserProfile, error)
	Login(ctx context.Context, creds model.Credentials) (*model.UserProfile, error)
	Register(ctx context.Context, reg model.Registration) (*model.UserProfile, error)
	Logout(ctx context.Context) error
}

type SessionStatus int

const (
	SessionIdle SessionStatus = iota
	SessionChecking
	SessionReady
)

func (s SessionStatus) String() string {
	switch s {
	case SessionChecking:
		return "checking"
	case SessionReady:
		return "ready"
	default:
		return "idle"
	}
}

// SessionState is a point-in-time snapshot of the session.
// Invariant: IsAuthenticated == (User != nil), always.
type SessionState struct {
	User            *model.UserProfile
	IsAuthenticated bool
	Status          SessionStatus
	Error           string
}

// authState is the durable subset ({user, isAuthenticated}); Error and Status
// are transient by design.
type authState struct {
	User            *model.UserProfile `json:"user"`
	IsAuthenticated bool               `json:"isAuthenticated"`
}

// SessionManager is the authoritative source of "who is logged in". All
// protected operations gate on it. It starts in SessionChecking with the
// durable identity restored optimistically; Probe settles it to SessionReady.
type SessionManager struct {
	mu     sync.Mutex
	api    AuthAPI
	state  SessionState
	file   stateFile
	signal broadcaster
}

func NewSessionManager(authAPI AuthAPI, dir string) *SessionManager {
	m := &SessionManager{
		api:  authAPI,
		file: stateFile{dir: dir, name: authStateFileName},
	}
	var durable authState
	_ = m.file.load(&durable)
	// Restore identity but re-derive the flag: the pair must never disagree,
	// whatever a hand-edited file claims.
	m.state.User = durable.User
	m.state.IsAuthenticated = durable.User != nil
	m.state.Status = SessionChecking
	return m
}

// Subscribe registers fn to run after every session change.
func (m *SessionManager) Subscribe(fn func()) func() { return m.signal.Subscribe(fn) }

func (m *SessionManager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// CurrentUser returns the authenticated profile, or nil.
func (m *SessionManager) CurrentUser() *model.UserProfile {
	return m.State().User
}

func (m *SessionManager) setUserLocked(user *model.UserProfile) {
	m.state.User = user
	m.state.IsAuthenticated = user != nil
}

func (m *SessionManager) persist() {
	st := m.State()
	_ = m.file.save(authState{User: st.User, IsAuthenticated: st.IsAuthenticated})
}

// Probe queries the server for the current session status. Failures degrade
// to "not authenticated" and are never surfaced to the caller; the manager
// always terminates in SessionReady.
func (m *SessionManager) Probe(ctx context.Context) {
	m.mu.Lock()
	m.state.Status = SessionChecking
	m.state.Error = ""
	m.mu.Unlock()
	m.signal.notify()

	user, err := m.api.SessionStatus(ctx)
	m.mu.Lock()
	if err != nil {
		user = nil
	}
	m.setUserLocked(user)
	m.state.Status = SessionReady
	m.mu.Unlock()
	m.persist()
	m.signal.notify()
}

// Login submits credentials. On failure the error message is recorded and the
// error returned so the auth form can stay open; identity is left untouched.
func (m *SessionManager) Login(ctx context.Context, creds model.Credentials) error {
	user, err := m.api.Login(ctx, creds)
	m.mu.Lock()
	if err != nil {
		m.state.Error = errMessage(err)
		m.mu.Unlock()
		m.signal.notify()
		return err
	}
	m.setUserLocked(user)
	m.state.Error = ""
	m.state.Status = SessionReady
	m.mu.Unlock()
	m.persist()
	m.signal.notify()
	return nil
}

// Register has the same contract as Login. The caller is responsible for
// pre-validating password strength (see ValidatePassword); the manager does
// not re-validate.
func (m *SessionManager) Register(ctx context.Context, reg model.Registration) error {
	user, err := m.api.Register(ctx, reg)
	m.mu.Lock()
	if err != nil {
		m.state.Error = errMessage(err)
		m.mu.Unlock()
		m.signal.notify()
		return err
	}
	m.setUserLocked(user)
	m.state.Error = ""
	m.state.Status = SessionReady
	m.mu.Unlock()
	m.persist()
	m.signal.notify()
	return nil
}

// Logout notifies the server best-effort and then unconditionally clears
// local identity. A failed server call never blocks logging out.
func (m *SessionManager) Logout(ctx context.Context) {
	_ = m.api.Logout(ctx)
	m.mu.Lock()
	m.setUserLocked(nil)
	m.state.Error = ""
	m.mu.Unlock()
	m.persist()
	m.signal.notify()
}

func (m *SessionManager) ClearError() {
	m.mu.Lock()
	changed := m.state.Error != ""
	m.state.Error = ""
	m.mu.Unlock()
	if changed {
		m.signal.notify()
	}
}

// ErrWeakPassword is the client-side precondition for Register inputs.
var ErrWeakPassword = errors.New("weak password")

// ValidatePassword enforces the minimum strength the auth form requires
// before calling Register: at least 8 characters with upper case, lower case,
// and a digit.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return fmt.Errorf("%w: must be at least 8 characters", ErrWeakPassword)
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return fmt.Errorf("%w: must mix upper case, lower case, and digits", ErrWeakPassword)
	}
	return nil
}
