package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/memefeed-cli/internal/config"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, env := range os.Environ() {
		if key, _, ok := strings.Cut(env, "="); ok && strings.HasPrefix(key, config.EnvPrefix) {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	t.Chdir(t.TempDir())
}

type feedServer struct {
	*httptest.Server
	mu       sync.Mutex
	feedback []string
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"paths_loaded":100,"liked_count":3}`)
	})
	mux.HandleFunc("/recommend", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"recommendations":[{"path":"memes/cat.png","index":0},{"path":"C:\\memes\\dog.jpg","index":7}]}`)
	})
	mux.HandleFunc("/feedback", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fs.mu.Lock()
		fs.feedback = append(fs.feedback, string(body))
		fs.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func runCLI(t *testing.T, a *App, args ...string) (string, string, error) {
	t.Helper()
	if a == nil {
		a = &App{runProgram: func(tea.Model) error { return nil }}
	}
	cmd := newRootCmd(a)
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestStatusCmd(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)

	out, stderr, err := runCLI(t, nil, "--api-url", srv.URL, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, stderr)
	}
	if out != "total: 100\nliked: 3\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRecommendCmd_PrintsTabSeparatedRows(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)

	out, stderr, err := runCLI(t, nil, "--api-url", srv.URL, "recommend")
	if err != nil {
		t.Fatalf("recommend failed: %v\n%s", err, stderr)
	}
	want := fmt.Sprintf("0\tcat.png\t%s/image/0\n7\tdog.jpg\t%s/image/7\n", srv.URL, srv.URL)
	if out != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", out, want)
	}
}

func TestFeedbackCmd(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)

	out, stderr, err := runCLI(t, nil, "--api-url", srv.URL, "feedback", "like", "4")
	if err != nil {
		t.Fatalf("feedback failed: %v\n%s", err, stderr)
	}
	if out != "sent like for item 4\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.feedback) != 1 || !strings.Contains(srv.feedback[0], `"action":"like"`) || !strings.Contains(srv.feedback[0], `"index":4`) {
		t.Fatalf("unexpected feedback payloads: %v", srv.feedback)
	}
}

func TestFeedbackCmd_RejectsBadArgs(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)

	for _, args := range [][]string{
		{"feedback", "love", "4"},
		{"feedback", "like", "four"},
		{"feedback", "skip", "-1"},
		{"feedback", "like"},
	} {
		if _, _, err := runCLI(t, nil, append([]string{"--api-url", srv.URL}, args...)...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.feedback) != 0 {
		t.Fatalf("no feedback should reach the service, got %v", srv.feedback)
	}
}

func TestStatusCmd_ServiceError(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, stderr, err := runCLI(t, nil, "--api-url", srv.URL, "status")
	if err == nil {
		t.Fatal("expected status error")
	}
	if !strings.Contains(stderr, "fetch status") || !strings.Contains(stderr, "503") {
		t.Fatalf("expected wrapped transport error on stderr, got %q", stderr)
	}
}

func TestRootCmd_InvalidAPIURL(t *testing.T) {
	isolate(t)
	_, stderr, err := runCLI(t, nil, "--api-url", "http://example.com/", "status")
	if err == nil || !strings.Contains(stderr, "config error") {
		t.Fatalf("expected config error, got err=%v stderr=%q", err, stderr)
	}
}

func TestRootCmd_ConfigFileFlag(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)
	path := filepath.Join(t.TempDir(), "memefeed.yaml")
	if err := os.WriteFile(path, []byte("api_base_url: "+srv.URL+"\nbreaker:\n  enabled: false\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, stderr, err := runCLI(t, nil, "--config", path, "status")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(out, "total: 100") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRootCmd_RunsTUIAndPrintsSummary(t *testing.T) {
	isolate(t)
	srv := newFeedServer(t)

	var screen string
	a := &App{runProgram: func(m tea.Model) error {
		// Init batches the start command with the spinner tick.
		batch, ok := m.Init()().(tea.BatchMsg)
		if !ok || len(batch) == 0 {
			return fmt.Errorf("expected batched init, got %T", batch)
		}
		m, cmd := m.Update(batch[0]())
		if cmd == nil {
			return fmt.Errorf("expected initial batch after start")
		}
		m, _ = m.Update(cmd())
		screen = m.View()
		return nil
	}}

	out, stderr, err := runCLI(t, a, "--api-url", srv.URL)
	if err != nil {
		t.Fatalf("root failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(screen, "cat.png") || !strings.Contains(screen, "dog.jpg") {
		t.Fatalf("expected initial batch on screen, got:\n%s", screen)
	}
	if !strings.Contains(out, "session: 1 batches (0 failed), 2 items fetched, 2 new") {
		t.Fatalf("unexpected summary: %q", out)
	}
	if _, err := os.Stat("memefeed.log"); err != nil {
		t.Fatalf("expected TUI logs in memefeed.log: %v", err)
	}
}

func TestRootCmd_TUIErrorIsReported(t *testing.T) {
	isolate(t)
	a := &App{runProgram: func(tea.Model) error { return fmt.Errorf("no tty") }}

	_, stderr, err := runCLI(t, a)
	if err == nil || !strings.Contains(stderr, "tui error: no tty") {
		t.Fatalf("expected tui error, got err=%v stderr=%q", err, stderr)
	}
}
