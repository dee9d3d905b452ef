package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Deep  Tissue   Massage  ", "Deep Tissue Massage"},
		{"\tHaircut\n", "Haircut"},
		{"already clean", "already clean"},
		{"   ", ""},
		{"", ""},
		{"tabs\t\tand\nnewlines", "tabs and newlines"},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPipelineAppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "b" },
		func(s string) string { return s + "c" },
	}
	if got := p.Apply("a"); got != "abc" {
		t.Errorf("Apply = %q, want %q", got, "abc")
	}
}
