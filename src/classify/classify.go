// Package classify sorts console log lines into error categories using
// ordered, first-match-wins pattern sets.
package classify

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// CustomCategory is the single category used for caller-supplied patterns.
const CustomCategory = "custom"

// CategorySpec is an uncompiled category: a name and its patterns in priority order.
type CategorySpec struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// Category is a compiled category.
type Category struct {
	Name     string
	Patterns []*regexp.Regexp
}

// PatternSet is an ordered list of categories. Earlier categories win.
type PatternSet struct {
	Categories []Category
	// Skipped lists the patterns that failed to compile.
	Skipped []SkippedPattern
}

// SkippedPattern records a pattern that could not be compiled.
type SkippedPattern struct {
	Category string `json:"category"`
	Pattern  string `json:"pattern"`
	Reason   string `json:"reason"`
}

// Match is one classified line.
type Match struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
	Category   string `json:"category"`
}

// Result is the outcome of classifying a log.
type Result struct {
	Errors  []Match        `json:"errors"`
	Summary map[string]int `json:"summary"`
	Total   int            `json:"total"`
}

// DefaultSpecs returns the built-in categories in priority order.
func DefaultSpecs() []CategorySpec {
	return []CategorySpec{
		{
			Category: "error",
			Patterns: []string{`(?i)\berror\b`, `\[ERROR\]`},
		},
		{
			Category: "exception",
			Patterns: []string{
				`(?i)\bexception\b`,
				`^Traceback \(most recent call last\):`,
				`^\s+at [\w$.<>]+\(.*\)$`,
			},
		},
		{
			Category: "failure",
			Patterns: []string{`(?i)\bfailed\b`, `(?i)\bfailure\b`},
		},
		{
			Category: "jenkins",
			Patterns: []string{
				`Finished: FAILURE`,
				`Finished: ABORTED`,
				`(?i)fatal:`,
				`Build step '.+' marked build as failure`,
			},
		},
	}
}

// Default compiles the built-in pattern set.
func Default() *PatternSet {
	return Compile(DefaultSpecs())
}

// Custom compiles caller-supplied patterns into the single "custom" category.
func Custom(patterns []string) *PatternSet {
	return Compile([]CategorySpec{{Category: CustomCategory, Patterns: patterns}})
}

// Compile compiles every pattern in multiline mode. Patterns that do not
// compile are recorded in Skipped and left out of the set. A category whose
// patterns all fail is kept with no patterns so ordering is unchanged.
func Compile(specs []CategorySpec) *PatternSet {
	set := &PatternSet{Categories: make([]Category, 0, len(specs))}
	for _, spec := range specs {
		cat := Category{Name: spec.Category}
		for _, p := range spec.Patterns {
			re, err := regexp.Compile("(?m)" + p)
			if err != nil {
				set.Skipped = append(set.Skipped, SkippedPattern{
					Category: spec.Category,
					Pattern:  p,
					Reason:   err.Error(),
				})
				continue
			}
			cat.Patterns = append(cat.Patterns, re)
		}
		set.Categories = append(set.Categories, cat)
	}
	return set
}

// LoadPatternFile reads a YAML list of categories:
//
//	- category: error
//	  patterns: ['(?i)\berror\b']
func LoadPatternFile(path string) ([]CategorySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", err)
	}

	var specs []CategorySpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to parse pattern file %s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("pattern file %s defines no categories", path)
	}
	for i, spec := range specs {
		if strings.TrimSpace(spec.Category) == "" {
			return nil, fmt.Errorf("pattern file %s: entry %d has no category", path, i+1)
		}
	}
	return specs, nil
}

// Classify matches each line against the set. Line numbers are 1-based.
func (s *PatternSet) Classify(lines []string) Result {
	res := Result{
		Errors:  []Match{},
		Summary: map[string]int{},
	}

	for i, line := range lines {
		if name, ok := s.match(line); ok {
			res.Errors = append(res.Errors, Match{
				LineNumber: i + 1,
				Line:       line,
				Category:   name,
			})
			res.Summary[name]++
		}
	}

	res.Total = len(res.Errors)
	return res
}

func (s *PatternSet) match(line string) (string, bool) {
	for _, cat := range s.Categories {
		for _, re := range cat.Patterns {
			if re.MatchString(line) {
				return cat.Name, true
			}
		}
	}
	return "", false
}
