package llm_test

import (
	"testing"

	"github.com/plotdeck/plotdeck/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFencedExtractor_Extract(t *testing.T) {
	e := llm.FencedExtractor{}

	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "bare JSON",
			raw:    `{"action":"update_theme","themeUpdate":"dark"}`,
			want:   `{"action":"update_theme","themeUpdate":"dark"}`,
			wantOK: true,
		},
		{
			name:   "fenced with json tag",
			raw:    "```json\n{\"action\":\"reject\"}\n```",
			want:   `{"action":"reject"}`,
			wantOK: true,
		},
		{
			name:   "fenced without tag",
			raw:    "```\n{\"action\":\"reject\"}\n```",
			want:   `{"action":"reject"}`,
			wantOK: true,
		},
		{
			name:   "prose around fenced block",
			raw:    "Sure, here is the command:\n```json\n{\"action\":\"update_theme\",\"themeUpdate\":\"dark\",\"message\":\"ok\"}\n```\nLet me know if you need anything else!",
			want:   `{"action":"update_theme","themeUpdate":"dark","message":"ok"}`,
			wantOK: true,
		},
		{
			name:   "first of two fenced blocks wins",
			raw:    "```json\n{\"a\":1}\n```\ntext\n```json\n{\"b\":2}\n```",
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "whitespace padding trimmed",
			raw:    "  \n {\"action\":\"reject\"} \n ",
			want:   `{"action":"reject"}`,
			wantOK: true,
		},
		{
			name:   "pure prose",
			raw:    "I cannot do that, sorry.",
			wantOK: false,
		},
		{
			name:   "empty",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "empty fenced block",
			raw:    "```json\n```",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFencedExtractor_CleansArtifacts(t *testing.T) {
	e := llm.FencedExtractor{}

	// Trailing commas and line comments are common model artifacts.
	raw := "```json\n{\n  \"action\": \"delete_chart\", // remove it\n  \"targetChartId\": \"c1\",\n}\n```"
	got, ok := e.Extract(raw)
	require.True(t, ok)
	assert.NotContains(t, got, "//")
	assert.NotContains(t, got, ",\n}")
}

func TestFencedExtractor_PreservesSlashesInStrings(t *testing.T) {
	e := llm.FencedExtractor{}

	raw := `{"action":"update_chart","targetChartId":"c1","chartUpdate":{"title":"http://example.com/q"}}`
	got, ok := e.Extract(raw)
	require.True(t, ok)
	assert.Contains(t, got, "http://example.com/q")
}
