package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/memefeed-cli/internal/feed"
)

type InlineImagePreviewState struct {
	Enabled bool
	Loading bool
	Raw     string
	Err     string
}

func DetailMetaLines(item feed.ViewItem, width int, wrap WrapFunc) []string {
	title := ItemLabel(item)
	lines := make([]string, 0, 8)
	lines = append(lines, wrap(title, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, visibleLen(title)))))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Item: %d", item.Index))
	lines = append(lines, fmt.Sprintf("Position: %d of %d", item.Position, item.QueueLen))
	switch {
	case item.Pending:
		lines = append(lines, "Liked: updating...")
	case item.Liked:
		lines = append(lines, "Liked: yes")
	default:
		lines = append(lines, "Liked: no")
	}
	if item.DisplayURL != "" {
		lines = append(lines, wrap("URL: "+item.DisplayURL, width)...)
	}
	return lines
}

func DetailLines(item feed.ViewItem, contentWidth, horizontalMargin int, wrap WrapFunc, preview InlineImagePreviewState) []string {
	lines := DetailMetaLines(item, contentWidth, wrap)
	lines = appendInlineImagePreview(lines, item, preview, contentWidth)
	return leftPadLines(lines, horizontalMargin)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

// appendInlineImagePreview adds the rendered image, a loading line, or the
// text fallback when the image could not be shown.
func appendInlineImagePreview(lines []string, item feed.ViewItem, preview InlineImagePreviewState, contentWidth int) []string {
	if !preview.Enabled {
		return lines
	}
	var previewLines []string
	switch raw := strings.TrimSpace(preview.Raw); {
	case preview.Loading:
		previewLines = []string{"Loading image preview..."}
	case raw != "" && ContainsKittyGraphicsEscape(preview.Raw):
		previewLines = []string{strings.TrimRight(preview.Raw, "\r\n")}
	case raw != "":
		previewLines = centerLines(strings.Split(strings.TrimRight(preview.Raw, "\r\n"), "\n"), contentWidth)
	case strings.TrimSpace(preview.Err) != "":
		previewLines = centerLines([]string{
			fmt.Sprintf("Item %d", item.Index),
			item.Filename,
			"",
			"Image preview unavailable: " + strings.TrimSpace(preview.Err),
		}, contentWidth)
	}
	if len(previewLines) == 0 {
		return lines
	}
	out := make([]string, 0, len(lines)+len(previewLines)+1)
	out = append(out, lines...)
	out = append(out, "")
	return append(out, previewLines...)
}
