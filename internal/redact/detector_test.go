package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileDefaults(t *testing.T) map[string]*Detector {
	t.Helper()
	recognizers, err := DefaultRecognizers()
	require.NoError(t, err)
	detectors, err := CompileDetectors(recognizers)
	require.NoError(t, err)

	byName := make(map[string]*Detector, len(detectors))
	for _, d := range detectors {
		byName[d.Name] = d
	}
	return byName
}

func TestEmailDetector(t *testing.T) {
	d := compileDefaults(t)["Email"]
	require.NotNil(t, d)

	spans := d.Detect("Write to jane.doe+test@mail.example.org today")
	require.Len(t, spans, 1)
	assert.Equal(t, "jane.doe+test@mail.example.org", spans[0].Text)
	assert.Equal(t, CategoryEmail, spans[0].Group)

	assert.Empty(t, d.Detect("no address here"))
}

func TestSSNDetector(t *testing.T) {
	d := compileDefaults(t)["SSN"]
	require.NotNil(t, d)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dashed ssn", "SSN is 123-45-6789.", []string{"123-45-6789"}},
		{"two ssns", "123-45-6789 and 987-65-4321", []string{"123-45-6789", "987-65-4321"}},
		{"digits without dashes ignored", "id 123456789", nil},
		{"embedded in longer number ignored", "9123-45-67891", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := d.Detect(tt.text)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneDetector(t *testing.T) {
	d := compileDefaults(t)["US Phone"]
	require.NotNil(t, d)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dashed", "call 555-867-5309 now", []string{"555-867-5309"}},
		{"parenthesized", "office: (212) 555-0198", []string{"(212) 555-0198"}},
		{"country code", "+1 415 555 2671", []string{"+1 415 555 2671"}},
		{"dotted", "fax 555.867.5309", []string{"555.867.5309"}},
		{"followed by digit rejected", "ref 555-867-53091", nil},
		// The guard drops the rejected match whole; the scan picks up
		// after it instead of retrying a shifted window, so nothing in
		// the run matches.
		{"long digit run skipped entirely", "5558675309123", nil},
		{"nine digit run ignored", "ssn-ish 123456789", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := d.Detect(tt.text)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
			for _, s := range spans {
				assert.Equal(t, CategoryPhone, s.Group)
			}
		})
	}
}

func TestBareSSNDetector(t *testing.T) {
	d := compileDefaults(t)["Bare SSN"]
	require.NotNil(t, d)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"scoped by token", "My SSN: 123456789", []string{"123456789"}},
		{"token case insensitive", "ssn on file 987654321", []string{"987654321"}},
		{"no token no match", "order number 123456789", nil},
		{"token but preceded by digit", "SSN 0123456789x", nil},
		{"token but followed by digit", "SSN x1234567890", nil},
		{"token substring does not scope", "ssns 123456789", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := d.Detect(tt.text)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestZIPDetectorIsOptional(t *testing.T) {
	d := compileDefaults(t)["ZIP"]
	require.NotNil(t, d)
	assert.True(t, d.Optional)

	spans := d.Detect("Portland, OR 97205-1234 or 10001")
	require.Len(t, spans, 2)
	assert.Equal(t, "97205-1234", spans[0].Text)
	assert.Equal(t, "10001", spans[1].Text)
	assert.Equal(t, CategoryZIP, spans[0].Group)
}

func TestTitleDetector(t *testing.T) {
	vocab, err := DefaultVocab()
	require.NoError(t, err)
	td, err := NewTitleDetector(vocab)
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
		want []Span
	}{
		{
			name: "dotted title single name",
			text: "Ask Dr. Washington about it",
			want: []Span{{Text: "Washington", Group: CategoryPerson, Start: 8, End: 18, Confidence: 0.95}},
		},
		{
			name: "lowercase title two word name",
			text: "met prof. Ada Lovelace yesterday",
			want: []Span{{Text: "Ada Lovelace", Group: CategoryPerson, Start: 10, End: 22, Confidence: 0.95}},
		},
		{
			name: "long form title",
			text: "Senator Blackwell spoke",
			want: []Span{{Text: "Blackwell", Group: CategoryPerson, Start: 8, End: 17, Confidence: 0.95}},
		},
		{
			name: "lowercase name is not a match",
			text: "the dr said rest",
			want: nil,
		},
		{
			name: "title inside word does not fire",
			text: "Madrid Weather is mild",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, td.Detect(tt.text))
		})
	}
}

func TestNewTitleDetectorRejectsEmptyVocab(t *testing.T) {
	_, err := NewTitleDetector(&VocabFile{})
	assert.Error(t, err)
}
