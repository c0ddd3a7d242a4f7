package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// openAIDefaultScore is assigned when the model omits a confidence.
const openAIDefaultScore = 0.90

const extractionPrompt = `Extract named entities from the user's text.
Return ONLY a JSON array, no prose. Each element:
{"word": "<exact substring from the text>", "group": "PER"|"LOC"|"ORG", "score": <0..1>}
Use the exact surface form from the text for "word". Return [] when there are none.`

// OpenAIProvider extracts entities with a chat model. The model returns
// surface forms; offsets are resolved against the input text afterwards,
// claiming occurrences left to right so repeated words map to distinct
// spans.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider using the given API key and model.
// An empty model falls back to DefaultOpenAIModel.
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

type extractedEntity struct {
	Word  string  `json:"word"`
	Group string  `json:"group"`
	Score float64 `json:"score"`
}

// Detect asks the chat model for entities and resolves their offsets.
func (p *OpenAIProvider) Detect(ctx context.Context, text string) ([]RawSpan, error) {
	ctx, span := tracer.Start(ctx, "ner.detect",
		trace.WithAttributes(
			attribute.String("ner.provider", p.Name()),
			attribute.String("gen_ai.request.model", p.model),
		))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, TimeoutDetect)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("openai ner call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai ner call: empty response")
	}

	entities, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing openai entities: %w", err)
	}

	spans := resolveOffsets(text, entities)
	span.SetAttributes(attribute.Int("ner.span_count", len(spans)))
	return spans, nil
}

// parseExtraction decodes the model output, tolerating a markdown code fence.
func parseExtraction(content string) ([]extractedEntity, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	var entities []extractedEntity
	if err := json.Unmarshal([]byte(content), &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// resolveOffsets locates each extracted surface form in text, claiming
// occurrences left to right. Entities whose surface form does not occur
// after the cursor are retried from the beginning, then dropped.
func resolveOffsets(text string, entities []extractedEntity) []RawSpan {
	spans := make([]RawSpan, 0, len(entities))
	cursor := 0
	for _, e := range entities {
		if e.Word == "" {
			continue
		}
		idx := strings.Index(text[cursor:], e.Word)
		if idx >= 0 {
			idx += cursor
		} else {
			idx = strings.Index(text, e.Word)
		}
		if idx < 0 {
			continue
		}
		score := e.Score
		if score == 0 {
			score = openAIDefaultScore
		}
		spans = append(spans, Span(e.Word, e.Group, idx, idx+len(e.Word), score))
		if end := idx + len(e.Word); end > cursor {
			cursor = end
		}
	}
	return spans
}
