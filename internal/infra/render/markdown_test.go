package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown marker is stripped",
			in:   "<!--markdown-->## Goal\n\nShip it",
			want: "## Goal\n\nShip it",
		},
		{
			name: "plain text",
			in:   "  just text  ",
			want: "just text",
		},
		{
			name: "paragraphs and emphasis",
			in:   "<div><p>Make the <strong>report</strong> faster</p><p>See <a href=\"https://x.io\">docs</a></p></div>",
			want: "Make the **report** faster\n\nSee [docs](https://x.io)",
		},
		{
			name: "lists",
			in:   "<ul><li>one</li><li>two</li></ul><ol><li>first</li><li>second</li></ol>",
			want: "- one\n- two\n\n1. first\n2. second",
		},
		{
			name: "headings and code",
			in:   "<h2>Steps</h2><p>Run <code>make</code></p><pre>a\n  b</pre>",
			want: "## Steps\n\nRun `make`\n\n```\na\n  b\n```",
		},
		{
			name: "line breaks and images",
			in:   "line one<br>line two <img alt=\"shot\" src=\"/a.png\">",
			want: "line one\nline two ![shot](/a.png)",
		},
		{
			name: "scripts dropped",
			in:   "<p>ok</p><script>alert(1)</script>",
			want: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Description(tt.in))
		})
	}
}

func TestMarkdownWidth(t *testing.T) {
	out := MarkdownWidth("# Title\n\nbody text", 200)

	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body text")
}
