package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// VisualWidth returns the display width of text, accounting for multi-byte characters
func VisualWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate truncates text to maxLen characters (visual width) with optional ellipsis
func Truncate(s string, maxLen int, ellipsis bool) string {
	s = strings.TrimSpace(s)
	if maxLen <= 0 {
		return ""
	}

	if VisualWidth(s) > maxLen {
		if ellipsis && maxLen > 3 {
			return runewidth.Truncate(s, maxLen-3, "") + "..."
		}
		return runewidth.Truncate(s, maxLen, "")
	}
	return s
}

// ClipLine prepares a raw console line for a fixed-width viewport: escape
// sequences are dropped, tabs expanded and the result cut to width.
// Leading whitespace is kept so stack traces stay indented.
func ClipLine(s string, width int) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
	s = strings.TrimRight(s, " \r")
	if width <= 0 || VisualWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
