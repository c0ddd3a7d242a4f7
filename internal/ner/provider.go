// Package ner defines the named-entity recognition collaborator boundary.
// The pipeline only depends on the Provider contract: text in, raw spans
// out, no shared mutable state across calls. Backends are free to batch
// or parallelize internally.
package ner

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// TimeoutDetect bounds a single NER inference call.
const TimeoutDetect = 30 * time.Second

// Domain errors for the ner package.
var (
	ErrProviderNotAvailable = errors.New("ner provider not available")
	ErrUnknownProvider      = errors.New("unknown ner provider")
)

// RawSpan is one entity span as returned by a NER backend, prior to
// validation. Score and offsets stay raw JSON because backends disagree
// on types (floats serialized as strings, integer offsets as floats);
// the redact filter coerces them leniently at the pipeline boundary.
// Offsets are byte offsets into the text handed to Detect; providers
// whose wire format reports rune offsets convert before returning.
type RawSpan struct {
	Text  string          `json:"word"`
	Group string          `json:"entity_group"`
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end"`
	Score json.RawMessage `json:"score"`
}

// Provider is the interface all NER backends implement.
type Provider interface {
	// Name returns the backend identifier (e.g. "http", "openai").
	Name() string
	// Detect runs inference on one canonical text line and returns the
	// detected entity spans.
	Detect(ctx context.Context, text string) ([]RawSpan, error)
}

// Number renders v as a raw JSON number, for building RawSpan values in
// code (static providers, tests).
func Number(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'g', -1, 64))
}

// Int renders v as a raw JSON integer.
func Int(v int) json.RawMessage {
	return json.RawMessage(strconv.Itoa(v))
}

// Span is a convenience constructor for a fully populated RawSpan.
func Span(text, group string, start, end int, score float64) RawSpan {
	return RawSpan{
		Text:  text,
		Group: group,
		Start: Int(start),
		End:   Int(end),
		Score: Number(score),
	}
}
