package view

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/glabrego/memefeed-cli/internal/feed"
	tuitheme "github.com/glabrego/memefeed-cli/internal/tui/theme"
)

const (
	heartLiked   = "♥"
	heartUnliked = "♡"
	heartPending = "…"
)

type ItemLineParams struct {
	Item   feed.ViewItem
	Active bool
	Width  int
}

// RenderItemLine draws one queue row: cursor, like marker, filename, and the
// position counter flush right.
func RenderItemLine(p ItemLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	prefix := fmt.Sprintf("  %s %s ", cursorMarker, LikeMarker(p.Item, th))
	counter := fmt.Sprintf("%d / %d", p.Item.Position, p.Item.QueueLen)

	available := p.Width - xansi.StringWidth(prefix) - 1 - len(counter)
	if available < 1 {
		available = 1
	}
	label := ItemLabel(p.Item)
	label = xansi.Truncate(label, available, "...")
	styled := th.StyleFilename(p.Item.Liked, p.Item.Pending, label)

	gap := p.Width - xansi.StringWidth(prefix) - xansi.StringWidth(label) - len(counter)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+styled+strings.Repeat(" ", gap)+th.MetaLabel.Render(counter))
}

func LikeMarker(item feed.ViewItem, th tuitheme.Theme) string {
	switch {
	case item.Pending:
		return th.MetaLabel.Render(heartPending)
	case item.Liked:
		return th.Heart.Render(heartLiked)
	default:
		return heartUnliked
	}
}

// ItemLabel is the filename, or "Item N" when the source path has none.
func ItemLabel(item feed.ViewItem) string {
	if name := strings.TrimSpace(item.Filename); name != "" {
		return name
	}
	return fmt.Sprintf("Item %d", item.Index)
}

type ListRenderInput struct {
	Items          []feed.ViewItem
	Start          int
	End            int
	Cursor         int
	RenderItemLine func(item feed.ViewItem, active bool) string
}

func RenderListBody(in ListRenderInput) string {
	if len(in.Items) == 0 || in.Start >= in.End || in.Start < 0 {
		return ""
	}
	end := in.End
	if end > len(in.Items) {
		end = len(in.Items)
	}
	var b strings.Builder
	for i := in.Start; i < end; i++ {
		b.WriteString(in.RenderItemLine(in.Items[i], i == in.Cursor))
		b.WriteString("\n")
	}
	return b.String()
}

// EmptyState is shown when the queue has nothing left to display.
func EmptyState(fetching bool, width int, th tuitheme.Theme) string {
	lines := []string{th.Section.Render("All done")}
	if fetching {
		lines = append(lines, th.MetaValue.Render("Looking for more memes..."))
	} else {
		lines = append(lines, th.MetaValue.Render("Press r to fetch a fresh batch."))
	}
	return strings.Join(centerLines(lines, width), "\n") + "\n"
}
