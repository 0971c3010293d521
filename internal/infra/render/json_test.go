package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_PlainWhenNotTerminal(t *testing.T) {
	// Setup
	var buf bytes.Buffer

	// Execute
	err := JSON(&buf, map[string]any{"id": 115068, "desc": "<!--markdown-->x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"desc\": \"<!--markdown-->x\",\n  \"id\": 115068\n}\n", buf.String())
}

func TestHighlightJSON(t *testing.T) {
	// Setup
	var buf bytes.Buffer

	// Execute
	err := HighlightJSON(&buf, `{"id": 1}`)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), `"id"`)
}

func TestUnderline(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
	}{
		{name: "ascii", in: "Translate report", width: 16},
		{name: "wide characters", in: "翻訳", width: 4},
		{name: "empty", in: "", width: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, strings.Repeat("─", tt.width), Underline(tt.in))
		})
	}
}
