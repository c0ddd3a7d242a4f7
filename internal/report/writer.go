// Package report assembles per-line detection records and run summaries,
// and persists run history in SQLite.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/veildata/veil/internal/redact"
)

// LineRecord is the serializable per-line report record: the canonical
// text and the post-filter entity list, one JSON object per line.
type LineRecord struct {
	Text     string        `json:"text"`
	Entities []redact.Span `json:"entities"`
}

// Writer emits one JSON record per processed line (JSONL).
type Writer struct {
	enc *json.Encoder
}

// NewWriter wraps w in a JSONL record writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// WriteLine emits the record for one line result.
func (w *Writer) WriteLine(res *redact.LineResult) error {
	entities := res.Entities
	if entities == nil {
		entities = []redact.Span{}
	}
	if err := w.enc.Encode(LineRecord{Text: res.Canonical, Entities: entities}); err != nil {
		return fmt.Errorf("writing report record: %w", err)
	}
	return nil
}

// WriteSummary prints the run summary: masked counts in the fixed
// category order, then filtered-but-not-masked counts when any exist.
func WriteSummary(w io.Writer, sum *redact.Summary) {
	fmt.Fprintln(w, "Summary (masked counts):")
	for _, c := range redact.SummaryOrder {
		if n := sum.Counts[c]; n > 0 {
			fmt.Fprintf(w, "  %-12s: %d\n", c, n)
		}
	}
	if sum.Total() == 0 {
		fmt.Fprintln(w, "  (no masks applied)")
	}

	if n := sum.FilteredCounts[redact.CategoryLocation]; n > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Filtered (not masked):")
		fmt.Fprintf(w, "  Streets: %d\n", n)
	}
}
