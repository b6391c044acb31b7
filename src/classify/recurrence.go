package classify

import (
	"regexp"
	"sort"
	"strings"
)

// Tokens that vary between otherwise identical error lines.
var (
	timestampPattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}([.,]\d+)?(Z|[+-]\d{2}:?\d{2})?`)
	uuidPattern       = regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`)
	hexAddressPattern = regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`)
	longHashPattern   = regexp.MustCompile(`\b[a-f0-9]{12,}\b`)
	longPathPattern   = regexp.MustCompile(`/(?:[^/\s]+/){3,}[^/\s:]+`)
	numberPattern     = regexp.MustCompile(`\b\d+\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Recurrence is a group of matches whose lines share a signature.
type Recurrence struct {
	Signature string `json:"signature"`
	Category  string `json:"category"`
	Count     int    `json:"count"`
	FirstLine int    `json:"first_line"`
	Example   string `json:"example"`
}

// Signature masks the volatile parts of a log line (timestamps, ids, hashes,
// workspace paths and numbers) so repeats of the same error compare equal.
func Signature(line string) string {
	line = timestampPattern.ReplaceAllString(line, "[TIMESTAMP]")
	line = uuidPattern.ReplaceAllString(line, "[UUID]")
	line = hexAddressPattern.ReplaceAllString(line, "[HEX]")
	line = longHashPattern.ReplaceAllString(line, "[HASH]")
	line = longPathPattern.ReplaceAllString(line, "[PATH]")
	line = numberPattern.ReplaceAllString(line, "[NUM]")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))
}

// Recurring groups matches by category and signature and returns the groups
// seen more than once, most frequent first. Ties keep log order.
func Recurring(matches []Match) []Recurrence {
	type key struct{ category, signature string }

	index := make(map[key]int)
	var groups []Recurrence
	for _, m := range matches {
		k := key{m.Category, Signature(m.Line)}
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Recurrence{
			Signature: k.signature,
			Category:  m.Category,
			Count:     1,
			FirstLine: m.LineNumber,
			Example:   m.Line,
		})
	}

	out := groups[:0]
	for _, g := range groups {
		if g.Count > 1 {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
