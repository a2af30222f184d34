package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"CREWDECK_API_URL", "CREWDECK_CONFIG_DIR", "CREWDECK_EMAIL", "CREWDECK_PASSWORD"} {
		t.Setenv(k, "")
	}
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDocs_ListsTopics(t *testing.T) {
	out, err := runCmd(t, "docs", "--config-dir", t.TempDir())
	if err != nil {
		t.Fatalf("docs: %v", err)
	}
	var p struct {
		Data struct {
			Topics []string `json:"topics"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	found := false
	for _, topic := range p.Data.Topics {
		if topic == "filters" {
			found = true
		}
	}
	if !found {
		t.Fatalf("topics missing %q: %v", "filters", p.Data.Topics)
	}
}

func TestDocs_RawPrintsMarkdown(t *testing.T) {
	out, err := runCmd(t, "docs", "teams", "--raw", "--config-dir", t.TempDir())
	if err != nil {
		t.Fatalf("docs teams --raw: %v", err)
	}
	if !strings.HasPrefix(out, "# Teams") {
		t.Fatalf("expected raw markdown, got %q", out)
	}
}

func TestDocs_UnknownTopic(t *testing.T) {
	if _, err := runCmd(t, "docs", "nope", "--config-dir", t.TempDir()); err == nil {
		t.Fatalf("expected an error for an unknown topic")
	}
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	_, err := runCmd(t, "whoami", "--config-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v, want not logged in", err)
	}
}

func TestTasksList_RequiresCredentials(t *testing.T) {
	_, err := runCmd(t, "tasks", "list", "--config-dir", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "not authenticated") {
		t.Fatalf("err = %v, want not authenticated", err)
	}
}

func TestTasksList_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s-1", Path: "/"})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u1","email":"a@b.com","first_name":"Ada","last_name":"L"}}}`))
	})
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "s-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"unauthenticated"}`))
			return
		}
		if got := r.URL.Query().Get("status"); got != "todo" {
			t.Errorf("status query = %q, want todo", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"tasks":[{"id":"t1","title":"First","team_id":"tm1","status":"todo","priority":"high"}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out, err := runCmd(t, "tasks", "list",
		"--api-url", srv.URL,
		"--config-dir", t.TempDir(),
		"--email", "a@b.com",
		"--password", "password1",
		"--status", "todo",
	)
	if err != nil {
		t.Fatalf("tasks list: %v", err)
	}
	var p struct {
		Data []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(p.Data) != 1 || p.Data[0].ID != "t1" || p.Data[0].Title != "First" {
		t.Fatalf("unexpected tasks: %+v", p.Data)
	}
}
