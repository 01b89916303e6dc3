package view

import (
	"errors"
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"

	tuitheme "github.com/glabrego/memefeed-cli/internal/tui/theme"
)

func TestToolbar(t *testing.T) {
	if got := Toolbar(false); !strings.Contains(got, "j/k move") || !strings.Contains(got, "r refresh") {
		t.Fatalf("unexpected list toolbar: %q", got)
	}
	if got := Toolbar(true); !strings.Contains(got, "j/k scroll") || !strings.Contains(got, "esc back") {
		t.Fatalf("unexpected detail toolbar: %q", got)
	}
}

func TestHeader(t *testing.T) {
	got := xansi.Strip(Header(100, 3, 10, tuitheme.Default()))
	for _, want := range []string{"memefeed", "catalogue 100", "liked 3", "queue 10"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in header, got %q", want, got)
		}
	}
}

func TestMessage(t *testing.T) {
	th := tuitheme.Default()
	if got := xansi.Strip(Message(false, false, "", "", "", th)); !strings.Contains(got, "state: idle | Ready") {
		t.Fatalf("unexpected idle message: %q", got)
	}
	if got := xansi.Strip(Message(true, false, "", "", "*", th)); !strings.Contains(got, "* state: loading") {
		t.Fatalf("unexpected loading message: %q", got)
	}
	if got := xansi.Strip(Message(false, true, "", "boom", "*", th)); !strings.Contains(got, "state: warning | boom") || strings.Contains(got, "*") {
		t.Fatalf("unexpected warning message: %q", got)
	}
}

func TestNoticeAndInitFailure(t *testing.T) {
	th := tuitheme.Default()
	notice := xansi.Strip(Notice("Feedback failed", "like for item 4 failed", 60, th))
	if !strings.Contains(notice, "Feedback failed") || !strings.Contains(notice, "press any key") {
		t.Fatalf("unexpected notice: %q", notice)
	}

	screen := xansi.Strip(InitFailure(errors.New("connection refused"), "http://127.0.0.1:18080", 80, th))
	for _, want := range []string{"Could not reach", "http://127.0.0.1:18080", "connection refused", "r retry"} {
		if !strings.Contains(screen, want) {
			t.Fatalf("expected %q in init failure screen, got %q", want, screen)
		}
	}
}
