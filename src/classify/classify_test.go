package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Classify(t *testing.T) {
	lines := []string{
		"Started by user admin",
		"[ERROR] Failed to execute goal",
		"java.lang.IllegalStateException: boom",
		"\tat com.example.App.main(App.java:12)",
		"Traceback (most recent call last):",
		"Tests failed: 3",
		"fatal: unable to access repository",
		"Build step 'Execute shell' marked build as failure",
		"Finished: FAILURE",
	}

	res := Default().Classify(lines)

	want := []Match{
		{LineNumber: 2, Line: lines[1], Category: "error"},
		{LineNumber: 4, Line: lines[3], Category: "exception"},
		{LineNumber: 5, Line: lines[4], Category: "exception"},
		{LineNumber: 6, Line: lines[5], Category: "failure"},
		{LineNumber: 7, Line: lines[6], Category: "jenkins"},
		{LineNumber: 8, Line: lines[7], Category: "failure"},
		{LineNumber: 9, Line: lines[8], Category: "failure"},
	}
	assert.Equal(t, want, res.Errors)
	assert.Equal(t, len(want), res.Total)
	assert.Equal(t, map[string]int{"error": 1, "exception": 2, "failure": 3, "jenkins": 1}, res.Summary)
}

func TestClassify_FirstCategoryWins(t *testing.T) {
	// matches both "error" and "failure"; counted once, under the earlier category
	res := Default().Classify([]string{"ERROR: build failed"})

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "error", res.Errors[0].Category)
	assert.Equal(t, map[string]int{"error": 1}, res.Summary)
}

func TestClassify_SummaryMatchesErrors(t *testing.T) {
	lines := []string{
		"error one", "ok", "Exception thrown", "FAILED", "error two",
		"nothing", "Finished: ABORTED", "Error again", "fine",
	}

	res := Default().Classify(lines)

	counts := map[string]int{}
	for _, m := range res.Errors {
		counts[m.Category]++
	}
	assert.Equal(t, counts, res.Summary)
	assert.Equal(t, len(res.Errors), res.Total)

	sum := 0
	for _, n := range res.Summary {
		sum += n
	}
	assert.Equal(t, res.Total, sum)
}

func TestClassify_NoMatches(t *testing.T) {
	res := Default().Classify([]string{"all good", "Finished: SUCCESS"})

	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Errors)
	assert.Empty(t, res.Summary)
	assert.Equal(t, 0, res.Total)
}

func TestCustom(t *testing.T) {
	set := Custom([]string{`OOM`, `([unclosed`, `^panic:`})

	require.Len(t, set.Skipped, 1)
	assert.Equal(t, "([unclosed", set.Skipped[0].Pattern)
	assert.Equal(t, CustomCategory, set.Skipped[0].Category)

	res := set.Classify([]string{"panic: nil map", "ERROR plain", "killed: OOM"})
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 1, res.Errors[0].LineNumber)
	assert.Equal(t, 3, res.Errors[1].LineNumber)
	assert.Equal(t, map[string]int{CustomCategory: 2}, res.Summary)
}

func TestCompile_KeepsCategoryOrder(t *testing.T) {
	set := Compile([]CategorySpec{
		{Category: "broken", Patterns: []string{`(`}},
		{Category: "second", Patterns: []string{`x`}},
	})

	require.Len(t, set.Categories, 2)
	assert.Equal(t, "broken", set.Categories[0].Name)
	assert.Empty(t, set.Categories[0].Patterns)
	assert.Len(t, set.Skipped, 1)
}

func TestLoadPatternFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "patterns.yaml")
		content := "- category: infra\n  patterns:\n    - 'No space left on device'\n- category: error\n  patterns: ['(?i)\\berror\\b']\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		specs, err := LoadPatternFile(path)
		require.NoError(t, err)
		require.Len(t, specs, 2)
		assert.Equal(t, "infra", specs[0].Category)
		assert.Equal(t, []string{"No space left on device"}, specs[0].Patterns)

		res := Compile(specs).Classify([]string{"write: No space left on device (error)"})
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "infra", res.Errors[0].Category)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPatternFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("empty category", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- patterns: ['x']\n"), 0o644))

		_, err := LoadPatternFile(path)
		assert.ErrorContains(t, err, "no category")
	})

	t.Run("empty list", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

		_, err := LoadPatternFile(path)
		assert.Error(t, err)
	})
}
