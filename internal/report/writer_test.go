package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildata/veil/internal/redact"
)

func TestWriterWriteLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteLine(&redact.LineResult{
		Canonical: "Alice flew to Berlin",
		Entities: []redact.Span{
			{Text: "Alice", Group: redact.CategoryPerson, Start: 0, End: 5, Confidence: 0.99},
		},
	}))
	require.NoError(t, w.WriteLine(&redact.LineResult{
		Canonical: "no entities here",
	}))

	scanner := bufio.NewScanner(&buf)

	require.True(t, scanner.Scan())
	var first LineRecord
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &first))
	assert.Equal(t, "Alice flew to Berlin", first.Text)
	require.Len(t, first.Entities, 1)
	assert.Equal(t, "Alice", first.Entities[0].Text)
	assert.Equal(t, redact.CategoryPerson, first.Entities[0].Group)

	require.True(t, scanner.Scan())
	line := scanner.Text()
	assert.Contains(t, line, `"entities":[]`, "nil entity list must serialize as an empty array")

	assert.False(t, scanner.Scan())
}

func TestWriteSummary(t *testing.T) {
	t.Run("counts in fixed order", func(t *testing.T) {
		sum := redact.NewSummary()
		sum.Counts[redact.CategoryEmail] = 2
		sum.Counts[redact.CategoryPerson] = 3

		var buf bytes.Buffer
		WriteSummary(&buf, sum)
		out := buf.String()

		assert.Contains(t, out, "Summary (masked counts):")
		assert.Contains(t, out, "PERSON")
		assert.Contains(t, out, "EMAIL")
		assert.Less(t, strings.Index(out, "PERSON"), strings.Index(out, "EMAIL"))
		assert.NotContains(t, out, "no masks applied")
		assert.NotContains(t, out, "Filtered")
	})

	t.Run("empty run", func(t *testing.T) {
		var buf bytes.Buffer
		WriteSummary(&buf, redact.NewSummary())
		assert.Contains(t, buf.String(), "(no masks applied)")
	})

	t.Run("filtered streets reported", func(t *testing.T) {
		sum := redact.NewSummary()
		sum.Counts[redact.CategoryLocation] = 1
		sum.FilteredCounts[redact.CategoryLocation] = 2

		var buf bytes.Buffer
		WriteSummary(&buf, sum)
		out := buf.String()
		assert.Contains(t, out, "Filtered (not masked):")
		assert.Contains(t, out, "Streets: 2")
	})
}
