package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower bool
		want  string
	}{
		{name: "trims space", s: "  hello \t", want: "hello"},
		{name: "lowers", s: " John_Doe ", lower: true, want: "john_doe"},
		{name: "keeps case by default", s: "John", want: "John"},
		{name: "empty", s: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanString(tt.s, tt.lower); got != tt.want {
				t.Errorf("CleanString(%q, %v) = %q, want %q", tt.s, tt.lower, got, tt.want)
			}
		})
	}
}
