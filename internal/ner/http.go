package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	veilotel "github.com/veildata/veil/internal/otel"
)

var tracer = veilotel.Tracer("github.com/veildata/veil/internal/ner")

// DefaultHTTPBaseURL is where a locally served token-classification model
// is expected to listen.
const DefaultHTTPBaseURL = "http://localhost:8090"

// HTTPProvider talks to a Hugging Face inference-style token-classification
// endpoint: POST {"inputs": text} returning a JSON array of entity spans
// with aggregated groups.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPProvider creates an HTTP provider pointing at the given base URL.
// If baseURL is empty, DefaultHTTPBaseURL is used.
func NewHTTPProvider(baseURL string) *HTTPProvider {
	if baseURL == "" {
		baseURL = DefaultHTTPBaseURL
	}
	return &HTTPProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Name returns the provider identifier.
func (p *HTTPProvider) Name() string {
	return "http"
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Detect sends one line to the inference endpoint and decodes the span list.
func (p *HTTPProvider) Detect(ctx context.Context, text string) ([]RawSpan, error) {
	ctx, span := tracer.Start(ctx, "ner.detect",
		trace.WithAttributes(
			attribute.String("ner.provider", p.Name()),
			attribute.Int("ner.input_bytes", len(text)),
		))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, TimeoutDetect)
	defer cancel()

	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshalling ner request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating ner request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("ner api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderNotAvailable, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var spans []RawSpan
	if err := json.NewDecoder(resp.Body).Decode(&spans); err != nil {
		return nil, fmt.Errorf("decoding ner response: %w", err)
	}
	spans = charToByteOffsets(text, spans)

	span.SetAttributes(attribute.Int("ner.span_count", len(spans)))
	return spans, nil
}

// charToByteOffsets rewrites the rune-indexed offsets the inference
// protocol reports into byte offsets on text, the coordinate system the
// rest of the pipeline slices with. Offsets that are not numeric or fall
// outside the text are left untouched so the filter boundary drops them.
func charToByteOffsets(text string, spans []RawSpan) []RawSpan {
	if len(text) == utf8.RuneCountInString(text) {
		return spans
	}

	byteAt := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		byteAt = append(byteAt, i)
	}
	byteAt = append(byteAt, len(text))

	for i := range spans {
		if idx, ok := asRuneIndex(spans[i].Start, len(byteAt)); ok {
			spans[i].Start = Int(byteAt[idx])
		}
		if idx, ok := asRuneIndex(spans[i].End, len(byteAt)); ok {
			spans[i].End = Int(byteAt[idx])
		}
	}
	return spans
}

// asRuneIndex reads a JSON number or numeric string as a rune index in
// [0, n).
func asRuneIndex(raw json.RawMessage, n int) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = v
	}
	idx := int(f)
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}
