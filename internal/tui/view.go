package tui

import (
	"strings"

	"github.com/glabrego/memefeed-cli/internal/feed"
	"github.com/glabrego/memefeed-cli/internal/tui/state"
	"github.com/glabrego/memefeed-cli/internal/tui/view"
)

func (m Model) View() string {
	var b strings.Builder
	if m.clearGraphics {
		b.WriteString(view.ClearKittyGraphicsSequence())
	}
	b.WriteString(view.Header(m.snap.TotalItems, m.snap.LikeCount, len(m.snap.Items), m.theme))
	b.WriteString("\n")

	switch {
	case !m.snap.Started:
		b.WriteString("\n")
		if m.initErr != nil && !m.starting {
			b.WriteString(view.InitFailure(m.initErr, m.opts.BaseURL, m.contentWidth(), m.theme))
			return b.String()
		}
		b.WriteString(m.spinner.View() + " Connecting to the feed service...\n")
		return b.String()
	case m.notice != nil:
		b.WriteString("\n")
		b.WriteString(view.Notice(m.notice.title, m.notice.body, m.contentWidth(), m.theme))
		b.WriteString("\n")
		return b.String()
	case m.showHelp:
		b.WriteString("Help (? to close)\n\n")
		b.WriteString(strings.Join(view.HelpLines(), "\n"))
		b.WriteString("\n")
	case m.inDetail:
		b.WriteString(view.Toolbar(true))
		b.WriteString("\n\n")
		b.WriteString(m.detailView())
	default:
		b.WriteString(view.Toolbar(false))
		b.WriteString("\n\n")
		b.WriteString(m.listView())
	}

	b.WriteString("\n")
	b.WriteString(m.messagePanel())
	b.WriteString("\n")
	return b.String()
}

func (m Model) listView() string {
	if m.snap.IsEmpty() {
		return view.EmptyState(m.loading(), m.contentWidth(), m.theme)
	}
	start, end := state.CenteredWindow(len(m.snap.Items), m.cursor, m.listBodyHeight())
	width := m.contentWidth()
	return view.RenderListBody(view.ListRenderInput{
		Items:  m.snap.Items,
		Start:  start,
		End:    end,
		Cursor: m.cursor,
		RenderItemLine: func(item feed.ViewItem, active bool) string {
			return view.RenderItemLine(view.ItemLineParams{Item: item, Active: active, Width: width}, m.theme)
		},
	})
}

func (m Model) detailView() string {
	lines := m.currentDetailLines()
	if len(lines) == 0 {
		return "No item selected.\n"
	}
	return view.RenderDetailLines(lines, m.detailTop, m.detailBodyHeight())
}

func (m Model) currentDetailLines() []string {
	item, ok := m.currentItem()
	if !ok {
		return nil
	}
	const margin = 2
	return view.DetailLines(item, m.contentWidth()-margin, margin, view.WordWrap, view.InlineImagePreviewState{
		Enabled: m.opts.ImagePreview,
		Loading: m.imagePreviewLoading[item.Index],
		Raw:     m.imagePreview[item.Index],
		Err:     m.imagePreviewErr[item.Index],
	})
}

func (m Model) messagePanel() string {
	return view.Message(m.loading(), m.warning != "", m.status, m.warning, m.spinner.View(), m.theme)
}
