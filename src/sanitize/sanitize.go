// Package sanitize cleans Jenkins console output for LLM consumption.
// It removes console annotations and ANSI escape codes so MCP tool responses
// carry plain, readable text.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Jenkins console notes: \x1b[8mha:<base64>\x1b[0m, hidden by the web UI but
// present in consoleText when the AnsiColor or timestamper plugins are active.
var consoleNote = regexp.MustCompile(`\x1b\[8mha:[^\x1b]*\x1b\[0m`)

// StripANSI removes Jenkins console notes and ANSI escape sequences.
func StripANSI(s string) string {
	s = consoleNote.ReplaceAllString(s, "")
	return ansi.Strip(s)
}

// Clean strips escape sequences and normalizes line endings to \n.
func Clean(s string) string {
	s = StripANSI(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
