package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "event array with parts",
			payload: `[{"content":{"parts":[{"text":"Hello!"}],"role":"model"}}]`,
			want:    "Hello!",
		},
		{
			name:    "last event wins over earlier text",
			payload: `[{"text":"A"},{"content":{"parts":[{"text":"B"}]}}]`,
			want:    "B",
		},
		{
			name:    "backward scan skips trailing event without text",
			payload: `[{"content":{"parts":[{"text":"answer"}]}},{"content":{"parts":[{"functionCall":{}}]}}]`,
			want:    "answer",
		},
		{
			name:    "event-level text fallback",
			payload: `[{"text":"plain event text"}]`,
			want:    "plain event text",
		},
		{
			name:    "plain string",
			payload: `"just a string"`,
			want:    "just a string",
		},
		{
			name:    "message object",
			payload: `{"message":"hi"}`,
			want:    "hi",
		},
		{
			name:    "content object",
			payload: `{"content":"from content"}`,
			want:    "from content",
		},
		{
			name:    "empty object",
			payload: `{}`,
			want:    NoResponseText,
		},
		{
			name:    "empty array",
			payload: `[]`,
			want:    NoResponseText,
		},
		{
			name:    "array of events without any text",
			payload: `[{"content":{"parts":[{"functionCall":{}}]}},{"invocationId":"x"}]`,
			want:    NoResponseText,
		},
		{
			name:    "number payload",
			payload: `42`,
			want:    NoResponseText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(json.RawMessage(tt.payload)))
		})
	}
}

func TestExtractTextEmptyPayload(t *testing.T) {
	assert.Equal(t, NoResponseText, ExtractText(nil))
}
