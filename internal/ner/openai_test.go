package ner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []extractedEntity
		wantErr bool
	}{
		{
			name:    "plain json array",
			content: `[{"word": "Alice", "group": "PER", "score": 0.97}]`,
			want:    []extractedEntity{{Word: "Alice", Group: "PER", Score: 0.97}},
		},
		{
			name: "json code fence",
			content: "```json\n" +
				`[{"word": "Berlin", "group": "LOC", "score": 0.9}]` +
				"\n```",
			want: []extractedEntity{{Word: "Berlin", Group: "LOC", Score: 0.9}},
		},
		{
			name: "bare code fence",
			content: "```\n" +
				`[]` +
				"\n```",
			want: []extractedEntity{},
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    []extractedEntity{},
		},
		{
			name:    "prose instead of json",
			content: `I found two entities in the text.`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseExtraction(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveOffsets(t *testing.T) {
	t.Run("repeated surface forms claim distinct occurrences", func(t *testing.T) {
		text := "Bob met Bob at noon"
		spans := resolveOffsets(text, []extractedEntity{
			{Word: "Bob", Group: "PER", Score: 0.9},
			{Word: "Bob", Group: "PER", Score: 0.9},
		})
		require.Len(t, spans, 2)
		assert.Equal(t, Int(0), spans[0].Start)
		assert.Equal(t, Int(3), spans[0].End)
		assert.Equal(t, Int(8), spans[1].Start)
		assert.Equal(t, Int(11), spans[1].End)
	})

	t.Run("out of order entity retried from the beginning", func(t *testing.T) {
		text := "Berlin welcomed Alice"
		spans := resolveOffsets(text, []extractedEntity{
			{Word: "Alice", Group: "PER", Score: 0.9},
			{Word: "Berlin", Group: "LOC", Score: 0.9},
		})
		require.Len(t, spans, 2)
		assert.Equal(t, "Alice", spans[0].Text)
		assert.Equal(t, Int(16), spans[0].Start)
		assert.Equal(t, "Berlin", spans[1].Text)
		assert.Equal(t, Int(0), spans[1].Start)
	})

	t.Run("missing surface form dropped", func(t *testing.T) {
		spans := resolveOffsets("nothing relevant", []extractedEntity{
			{Word: "Ghost", Group: "PER", Score: 0.9},
		})
		assert.Empty(t, spans)
	})

	t.Run("zero score gets the default", func(t *testing.T) {
		spans := resolveOffsets("Alice", []extractedEntity{{Word: "Alice", Group: "PER"}})
		require.Len(t, spans, 1)
		assert.Equal(t, Number(openAIDefaultScore), spans[0].Score)
	})

	t.Run("empty word skipped", func(t *testing.T) {
		spans := resolveOffsets("text", []extractedEntity{{Word: "", Group: "PER", Score: 0.9}})
		assert.Empty(t, spans)
	})
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	p := NewOpenAIProvider("key", "")
	assert.Equal(t, DefaultOpenAIModel, p.model)
	assert.Equal(t, "openai", p.Name())
}
