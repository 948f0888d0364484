package indexer

import "testing"

func TestPlainText(t *testing.T) {
	texter := NewPlainTexter()

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "empty",
			markdown: "",
			want:     "",
		},
		{
			name:     "whitespace only",
			markdown: "   \n\n  ",
			want:     "",
		},
		{
			name:     "heading and emphasis",
			markdown: "# Hours\n\nOpen **daily** from 10 to 5.",
			want:     "Hours\n\nOpen daily from 10 to 5.",
		},
		{
			name:     "link keeps label only",
			markdown: "See [our site](https://museum.example/visit) for tickets.",
			want:     "See our site for tickets.",
		},
		{
			name:     "soft line breaks become spaces",
			markdown: "The gallery\nreopened in spring.",
			want:     "The gallery reopened in spring.",
		},
		{
			name:     "list items are separate blocks",
			markdown: "- Painting\n- Sculpture",
			want:     "Painting\n\nSculpture",
		},
		{
			name:     "table rows",
			markdown: "| Day | Hours |\n|-----|-------|\n| Mon | Closed |",
			want:     "Day | Hours\nMon | Closed",
		},
		{
			name:     "fenced code keeps content",
			markdown: "```\nfoo\n```",
			want:     "foo",
		},
		{
			name:     "thematic break dropped",
			markdown: "Before\n\n---\n\nAfter",
			want:     "Before\n\nAfter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := texter.PlainText(tt.markdown); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}
