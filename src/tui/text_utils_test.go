package tui

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		ellipsis bool
		want     string
	}{
		{name: "fits", input: "folder/job", maxLen: 20, want: "folder/job"},
		{name: "cut", input: "folder/job", maxLen: 6, want: "folder"},
		{name: "ellipsis", input: "folder/job", maxLen: 7, ellipsis: true, want: "fold..."},
		{name: "wide runes", input: "ビルド失敗", maxLen: 4, want: "ビル"},
		{name: "zero width", input: "x", maxLen: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.maxLen, tt.ellipsis); got != tt.want {
				t.Errorf("Truncate(%q, %d, %v) = %q, want %q", tt.input, tt.maxLen, tt.ellipsis, got, tt.want)
			}
		})
	}
}

func TestClipLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{name: "plain", input: "Finished: SUCCESS", width: 80, want: "Finished: SUCCESS"},
		{name: "ansi", input: "\x1b[31mERROR\x1b[0m: boom", width: 80, want: "ERROR: boom"},
		{name: "tab indent kept", input: "\tat com.example.App.main(App.java:12)", width: 80, want: "    at com.example.App.main(App.java:12)"},
		{name: "clipped", input: "0123456789", width: 5, want: "0123…"},
		{name: "carriage return", input: "progress 100%\r", width: 80, want: "progress 100%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClipLine(tt.input, tt.width)
			if got != tt.want {
				t.Errorf("ClipLine(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
			if tt.width > 0 && VisualWidth(got) > tt.width {
				t.Errorf("ClipLine(%q, %d) width = %d", tt.input, tt.width, VisualWidth(got))
			}
		})
	}
}
