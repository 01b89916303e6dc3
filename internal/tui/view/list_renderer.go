package view

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

type WrapFunc func(string, int) []string

// WordWrap is the default WrapFunc.
func WordWrap(s string, width int) []string {
	if width <= 0 {
		return []string{s}
	}
	return strings.Split(xansi.Wordwrap(s, width, " -_/"), "\n")
}

func visibleLen(s string) int {
	return xansi.StringWidth(s)
}

func centerLines(lines []string, width int) []string {
	if width <= 0 || len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		visible := visibleLen(line)
		if visible >= width {
			out[i] = line
			continue
		}
		out[i] = strings.Repeat(" ", (width-visible)/2) + line
	}
	return out
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		if ContainsKittyGraphicsEscape(line) {
			out[i] = line
			continue
		}
		out[i] = prefix + line
	}
	return out
}
