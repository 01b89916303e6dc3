package platform

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestValidateImageURL(t *testing.T) {
	valid, err := ValidateImageURL("  http://127.0.0.1:18080/image/4 ")
	if err != nil {
		t.Fatalf("unexpected error for valid URL: %v", err)
	}
	if valid != "http://127.0.0.1:18080/image/4" {
		t.Fatalf("unexpected normalized URL: %q", valid)
	}

	_, err = ValidateImageURL("")
	if err == nil || !strings.Contains(err.Error(), "no image URL") {
		t.Fatalf("expected missing URL error, got %v", err)
	}

	_, err = ValidateImageURL("file:///etc/passwd")
	if err == nil || !strings.Contains(err.Error(), "unsupported URL scheme") {
		t.Fatalf("expected unsupported scheme error, got %v", err)
	}

	_, err = ValidateImageURL("https://")
	if err == nil || !strings.Contains(err.Error(), "invalid URL host") {
		t.Fatalf("expected invalid host error, got %v", err)
	}
}

func TestBrowserCommand(t *testing.T) {
	cases := []struct {
		goos string
		name string
		args []string
	}{
		{goos: "darwin", name: "open", args: []string{"http://x/image/1"}},
		{goos: "windows", name: "rundll32", args: []string{"url.dll,FileProtocolHandler", "http://x/image/1"}},
		{goos: "linux", name: "xdg-open", args: []string{"http://x/image/1"}},
	}
	for _, tc := range cases {
		gotName, gotArgs := browserCommand(tc.goos, "http://x/image/1")
		if gotName != tc.name || !reflect.DeepEqual(gotArgs, tc.args) {
			t.Fatalf("browserCommand(%q) = (%q, %v), want (%q, %v)", tc.goos, gotName, gotArgs, tc.name, tc.args)
		}
	}
}

func TestCopyWith(t *testing.T) {
	var written string
	write := func(s string) error { written = s; return nil }

	if err := copyWith(false, write, "http://x/image/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if written != "http://x/image/1" {
		t.Fatalf("unexpected clipboard content: %q", written)
	}

	if err := copyWith(true, write, "ignored"); err == nil {
		t.Fatal("expected error when clipboard is unsupported")
	}

	failing := func(string) error { return errors.New("xclip exited 1") }
	if err := copyWith(false, failing, "x"); err == nil || !strings.Contains(err.Error(), "write clipboard") {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
}
