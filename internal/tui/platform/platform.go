package platform

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func ValidateImageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("item has no image URL")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid URL host")
	}
	return trimmed, nil
}

func OpenURLInBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Run()
}

func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// CopyURLToClipboard writes url to the system clipboard. clipboard.Unsupported
// is set when no pbcopy, xclip, xsel or wl-copy is available.
func CopyURLToClipboard(url string) error {
	return copyWith(clipboard.Unsupported, clipboard.WriteAll, url)
}

func copyWith(unsupported bool, write func(string) error, text string) error {
	if unsupported {
		return fmt.Errorf("no clipboard command available")
	}
	if err := write(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
