package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"crewdeck/internal/model"
)

func TestOverlay_AtMostOneActive(t *testing.T) {
	t.Parallel()

	s := NewUIStore("", nil)
	defer s.Shutdown()

	s.Open(OverlayTeam, nil)
	task := model.Task{ID: "t1", Title: "edit me"}
	s.Open(OverlayTask, task)

	st := s.State()
	if st.Overlay.Active != OverlayTask {
		t.Fatalf("expected the second open to replace outright, got %q", st.Overlay.Active)
	}
	if got, ok := st.Overlay.Payload.(model.Task); !ok || got.ID != "t1" {
		t.Fatalf("unexpected payload: %+v", st.Overlay.Payload)
	}

	s.Close()
	st = s.State()
	if st.Overlay.Active != OverlayNone || st.Overlay.Payload != nil {
		t.Fatalf("close must discard kind and payload: %+v", st.Overlay)
	}
}

func TestOverlay_NilPayloadMeansCreate(t *testing.T) {
	t.Parallel()

	s := NewUIStore("", nil)
	defer s.Shutdown()

	s.Open(OverlayMember, nil)
	if st := s.State(); st.Overlay.Active != OverlayMember || st.Overlay.Payload != nil {
		t.Fatalf("expected create-mode overlay, got %+v", st.Overlay)
	}
}

func TestNotifications_OrderDismissAndAutoRemoval(t *testing.T) {
	t.Parallel()

	s := NewUIStore("", nil)
	defer s.Shutdown()
	s.SetAutoDismiss(25 * time.Millisecond)

	id1 := s.Notify("saved", SeveritySuccess)
	id2 := s.Notify("saved", SeveritySuccess) // no deduplication
	id3 := s.Notify("failed", SeverityError)

	st := s.State()
	if len(st.Notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(st.Notifications))
	}
	if st.Notifications[0].ID != id1 || st.Notifications[1].ID != id2 || st.Notifications[2].ID != id3 {
		t.Fatalf("queue must keep insertion order: %+v", st.Notifications)
	}

	s.Dismiss(id2)
	st = s.State()
	if len(st.Notifications) != 2 || st.Notifications[0].ID != id1 || st.Notifications[1].ID != id3 {
		t.Fatalf("unexpected queue after dismiss: %+v", st.Notifications)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(s.State().Notifications) != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("notifications were not auto-removed: %+v", s.State().Notifications)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTheme_PersistsAndAppliesOnEveryChange(t *testing.T) {
	dir := t.TempDir()

	var applied []Theme
	s := NewUIStore(dir, func(th Theme) { applied = append(applied, th) })
	defer s.Shutdown()

	// Applied once at startup from the durable (default) value.
	if len(applied) != 1 || applied[0] != ThemeLight {
		t.Fatalf("expected startup apply of light theme, got %v", applied)
	}

	s.ToggleTheme()
	if got := s.State().Theme; got != ThemeDark {
		t.Fatalf("expected dark after toggle, got %q", got)
	}
	if applied[len(applied)-1] != ThemeDark {
		t.Fatalf("toggle must apply the theme globally: %v", applied)
	}

	// "Restart": only the theme survives.
	var restartApplied []Theme
	s2 := NewUIStore(dir, func(th Theme) { restartApplied = append(restartApplied, th) })
	defer s2.Shutdown()
	st := s2.State()
	if st.Theme != ThemeDark {
		t.Fatalf("theme must be durable, got %q", st.Theme)
	}
	if len(restartApplied) != 1 || restartApplied[0] != ThemeDark {
		t.Fatalf("expected startup apply of durable theme, got %v", restartApplied)
	}
	if len(st.Notifications) != 0 || st.Overlay.Active != OverlayNone {
		t.Fatalf("only the theme is durable: %+v", st)
	}
}

func TestUIStore_CorruptStateFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, uiStateFileName), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewUIStore(dir, nil)
	defer s.Shutdown()
	if got := s.State().Theme; got != ThemeLight {
		t.Fatalf("corrupt durable state must fall back to light, got %q", got)
	}
}

func TestToggleSidebar(t *testing.T) {
	t.Parallel()

	s := NewUIStore("", nil)
	defer s.Shutdown()
	if !s.State().SidebarOpen {
		t.Fatalf("sidebar must start open")
	}
	s.ToggleSidebar()
	if s.State().SidebarOpen {
		t.Fatalf("expected sidebar closed after toggle")
	}
}

func TestOverlay_SetPayloadSwapsOnlyWhenOpen(t *testing.T) {
	t.Parallel()

	s := NewUIStore("", nil)
	defer s.Shutdown()

	// No-op while nothing is open.
	s.SetOverlayPayload(model.Task{ID: "t0"})
	if st := s.State(); st.Overlay.Active != OverlayNone || st.Overlay.Payload != nil {
		t.Fatalf("payload swap without an overlay must be ignored: %+v", st.Overlay)
	}

	s.Open(OverlayTask, model.Task{ID: "t1"})
	s.SetOverlayPayload(model.Task{ID: "t2"})
	st := s.State()
	if st.Overlay.Active != OverlayTask {
		t.Fatalf("swap must not change the kind: %+v", st.Overlay)
	}
	if got, ok := st.Overlay.Payload.(model.Task); !ok || got.ID != "t2" {
		t.Fatalf("unexpected payload after swap: %+v", st.Overlay.Payload)
	}
}
