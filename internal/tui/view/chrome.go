package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/memefeed-cli/internal/tui/theme"
)

func Toolbar(inDetail bool) string {
	if inDetail {
		return "j/k scroll | space like | o open | y copy | esc back | ? help"
	}
	return "j/k move | enter view | space like | r refresh | ? help | q quit"
}

// HelpLines is the full key reference shown by ?.
func HelpLines() []string {
	return []string{
		"j/k, arrows   move",
		"pgup/pgdown   jump a page",
		"g/G           top/bottom",
		"enter         view item",
		"l, space      like / unlike",
		"r             refresh recommendations",
		"o             open image in browser",
		"y             copy image URL",
		"esc           back",
		"?             toggle help",
		"q             quit",
	}
}

func Header(total, likeCount, queueLen int, th tuitheme.Theme) string {
	parts := []string{
		th.Title.Render("memefeed"),
		th.MetaLabel.Render("catalogue") + " " + th.MetaValue.Render(fmt.Sprintf("%d", total)),
		th.MetaLabel.Render("liked") + " " + th.LikeCount.Render(fmt.Sprintf("%d", likeCount)),
		th.MetaLabel.Render("queue") + " " + th.MetaValue.Render(fmt.Sprintf("%d", queueLen)),
	}
	return strings.Join(parts, " • ")
}

// Message is the status line. spinner is only drawn while loading.
func Message(loading, hasWarning bool, status, warning, spinner string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
		if spinner != "" {
			stateLabel = spinner + " " + stateLabel
		}
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}

// Notice renders a blocking message box that waits for a key.
func Notice(title, body string, width int, th tuitheme.Theme) string {
	inner := width - 6
	if inner < 20 {
		inner = 20
	}
	lines := []string{th.StateWarn.Render(title), ""}
	lines = append(lines, WordWrap(body, inner)...)
	lines = append(lines, "", th.MetaLabel.Render("press any key to continue"))
	return th.Notice.Render(strings.Join(lines, "\n"))
}

// InitFailure is the full-screen error shown when the session cannot start.
func InitFailure(err error, baseURL string, width int, th tuitheme.Theme) string {
	lines := []string{
		th.StateWarn.Render("Could not reach the feed service"),
		"",
	}
	if baseURL != "" {
		lines = append(lines, th.MetaLabel.Render("service")+" "+th.MetaValue.Render(baseURL))
	}
	if err != nil {
		lines = append(lines, WordWrap(err.Error(), max(20, width-4))...)
	}
	lines = append(lines, "", th.MetaLabel.Render("r retry • q quit"))
	return strings.Join(lines, "\n") + "\n"
}
