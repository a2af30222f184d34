package store

import (
	"context"
	"errors"
	"testing"

	"crewdeck/internal/api"
	"crewdeck/internal/model"
)

func checkSessionInvariant(t *testing.T, m *SessionManager) {
	t.Helper()
	st := m.State()
	if st.IsAuthenticated != (st.User != nil) {
		t.Fatalf("invariant violated: isAuthenticated=%v user=%+v", st.IsAuthenticated, st.User)
	}
}

func TestSession_AuthenticatedFlagAlwaysMatchesUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	auth := &fakeAuthAPI{}
	m := NewSessionManager(auth, "")
	checkSessionInvariant(t, m)

	// Failed login: identity untouched, error recorded.
	auth.loginFn = func(ctx context.Context, creds model.Credentials) (*model.UserProfile, error) {
		return nil, &api.Error{Status: 401, Message: "invalid credentials"}
	}
	if err := m.Login(ctx, model.Credentials{Email: "a@b.com", Password: "nope"}); err == nil {
		t.Fatalf("expected login error")
	}
	checkSessionInvariant(t, m)
	if st := m.State(); st.IsAuthenticated || st.Error != "invalid credentials" {
		t.Fatalf("unexpected state after failed login: %+v", st)
	}

	// Successful login.
	auth.loginFn = nil
	if err := m.Login(ctx, model.Credentials{Email: "a@b.com", Password: "Abcd1234"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	checkSessionInvariant(t, m)
	if st := m.State(); !st.IsAuthenticated || st.User.Email != "a@b.com" || st.Error != "" {
		t.Fatalf("unexpected state after login: %+v", st)
	}

	// Probe failure degrades to unauthenticated, never errors.
	auth.statusFn = func(ctx context.Context) (*model.UserProfile, error) {
		return nil, &api.Error{Status: 0, Message: "network error"}
	}
	m.Probe(ctx)
	checkSessionInvariant(t, m)
	if st := m.State(); st.IsAuthenticated || st.Status != SessionReady {
		t.Fatalf("unexpected state after failed probe: %+v", st)
	}

	// Register success re-establishes identity.
	if err := m.Register(ctx, model.Registration{Email: "c@d.com", Password: "Abcd1234"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	checkSessionInvariant(t, m)

	// Logout clears unconditionally, even when the server call fails.
	auth.logoutFn = func(ctx context.Context) error { return errors.New("boom") }
	m.Logout(ctx)
	checkSessionInvariant(t, m)
	if st := m.State(); st.IsAuthenticated || st.User != nil {
		t.Fatalf("expected cleared identity after logout: %+v", st)
	}
	if auth.logoutCalls != 1 {
		t.Fatalf("expected 1 logout call, got %d", auth.logoutCalls)
	}
}

func TestProbe_SuccessSetsUserAndEndsReady(t *testing.T) {
	t.Parallel()

	auth := &fakeAuthAPI{
		statusFn: func(ctx context.Context) (*model.UserProfile, error) {
			return &model.UserProfile{ID: "u9", Email: "x@y.com"}, nil
		},
	}
	m := NewSessionManager(auth, "")
	if st := m.State(); st.Status != SessionChecking {
		t.Fatalf("expected initial status checking, got %v", st.Status)
	}

	m.Probe(context.Background())
	st := m.State()
	if st.Status != SessionReady || !st.IsAuthenticated || st.User.ID != "u9" {
		t.Fatalf("unexpected state after probe: %+v", st)
	}
}

func TestSession_DurableSubsetSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	auth := &fakeAuthAPI{
		loginFn: func(ctx context.Context, creds model.Credentials) (*model.UserProfile, error) {
			return &model.UserProfile{ID: "u1", Email: creds.Email, FirstName: "Ada"}, nil
		},
	}
	m := NewSessionManager(auth, dir)
	if err := m.Login(ctx, model.Credentials{Email: "a@b.com", Password: "Abcd1234"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Leave a transient error behind; it must not be durable.
	auth.loginFn = func(ctx context.Context, creds model.Credentials) (*model.UserProfile, error) {
		return nil, &api.Error{Status: 400, Message: "bad request"}
	}
	_ = m.Login(ctx, model.Credentials{})

	// "Process restart".
	m2 := NewSessionManager(&fakeAuthAPI{}, dir)
	st := m2.State()
	if !st.IsAuthenticated || st.User == nil || st.User.Email != "a@b.com" {
		t.Fatalf("expected restored identity, got %+v", st)
	}
	if st.Error != "" {
		t.Fatalf("error should not survive restart: %q", st.Error)
	}
	if st.Status != SessionChecking {
		t.Fatalf("restored session must start in checking, got %v", st.Status)
	}
}

func TestSession_LogoutClearsDurableState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m := NewSessionManager(&fakeAuthAPI{}, dir)
	if err := m.Login(ctx, model.Credentials{Email: "a@b.com", Password: "Abcd1234"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	m.Logout(ctx)

	m2 := NewSessionManager(&fakeAuthAPI{}, dir)
	if st := m2.State(); st.IsAuthenticated || st.User != nil {
		t.Fatalf("expected cleared durable identity, got %+v", st)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pw string
		ok bool
	}{
		{"Abcd1234", true},
		{"longEnough1", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.pw)
		if tc.ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", tc.pw, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tc.pw)
			} else if !errors.Is(err, ErrWeakPassword) {
				t.Errorf("ValidatePassword(%q) = %v, want ErrWeakPassword", tc.pw, err)
			}
		}
	}
}
