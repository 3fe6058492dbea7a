package anthropic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"title": "Jazz Night"}`, `{"title": "Jazz Night"}`},
		{"json fence", "```json\n{\"title\": \"Jazz Night\"}\n```", `{"title": "Jazz Night"}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose wrapping", `Here is the extraction: {"a": 1} Hope that helps!`, `{"a": 1}`},
		{"nested braces", `{"a": {"b": 1}}`, `{"a": {"b": 1}}`},
		{"no object", "no json here", "no json here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestMessageResponse_Text(t *testing.T) {
	r := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "part one"},
		{Type: "text", Text: ""},
		{Type: "text", Text: "part two"},
	}}
	assert.Equal(t, "part one\npart two", r.Text())
}

func TestTokenUsage_EstimateCost(t *testing.T) {
	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	assert.InDelta(t, 0.80+2.00, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}
