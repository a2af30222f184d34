package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crewdeck/internal/model"
)

func TestDo_DecodesDataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("team_id"); got != "T1" {
			t.Errorf("team_id query = %q, want %q", got, "T1")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"task-1","title":"Ship it","team_id":"T1","status":"todo","priority":"high"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	tasks, err := c.ListTasks(context.Background(), model.TaskFilter{TeamID: "T1"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "task-1" || tasks[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestDo_MapsServerErrorToMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"not a team admin"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.DeleteTeam(context.Background(), "team-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	ae, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ae.Status != http.StatusForbidden || ae.Message != "not a team admin" {
		t.Fatalf("unexpected error: %+v", ae)
	}
}

func TestDo_NetworkFailureIsStatusZero(t *testing.T) {
	// Closed server => transport-level failure.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListTeams(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsNetworkFailure(err) {
		t.Fatalf("expected network failure, got %v", err)
	}
}

func TestSessionStatus_UnauthenticatedIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"isAuthenticated":false,"user":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	u, err := c.SessionStatus(context.Background())
	if err != nil {
		t.Fatalf("SessionStatus: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil profile, got %+v", u)
	}
}

func TestClient_KeepsSessionCookieAcrossRequests(t *testing.T) {
	var sawCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s-1", Path: "/"})
			_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","email":"a@b.com","first_name":"A","last_name":"B"}}}`))
		case "/teams":
			if c, err := r.Cookie("session"); err == nil && c.Value == "s-1" {
				sawCookie = true
			}
			_, _ = w.Write([]byte(`{"data":{"teams":[]}}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "Abcd1234"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := c.ListTeams(context.Background()); err != nil {
		t.Fatalf("ListTeams: %v", err)
	}
	if !sawCookie {
		t.Fatalf("expected session cookie to be replayed on subsequent requests")
	}
}
