package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreetFilterIsStreet(t *testing.T) {
	f := NewStreetFilter([]string{"street", "st", "st.", "avenue", "ave"})

	tests := []struct {
		surface string
		want    bool
	}{
		{"St", true},
		{"st.", true},
		{"Main Street", true},
		{"Fifth Ave", true},
		{"  Elm Avenue ", true},
		{"Berlin", false},
		{"Street Fighter Club", false}, // suffix must be last
		{"Main", false},
	}

	for _, tt := range tests {
		t.Run(tt.surface, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsStreet(tt.surface))
		})
	}
}

func TestApplyPolicy(t *testing.T) {
	text := "Alice of Acme Corp lives on State St in Ohio"
	// Offsets into text above.
	person := Span{Text: "Alice", Group: CategoryPerson, Start: 0, End: 5, Confidence: 0.99}
	org := Span{Text: "Acme Corp", Group: CategoryOrganization, Start: 9, End: 18, Confidence: 0.95}
	street := Span{Text: "State St", Group: CategoryLocation, Start: 28, End: 36, Confidence: 0.90}
	state := Span{Text: "Ohio", Group: CategoryLocation, Start: 40, End: 44, Confidence: 0.97}
	misc := Span{Text: "Acme", Group: Category("MISC"), Start: 9, End: 13, Confidence: 0.99}

	ents := []Span{person, org, street, state, misc}
	streets := NewStreetFilter([]string{"street", "st", "st."})

	t.Run("defaults keep person and location only", func(t *testing.T) {
		kept, filtered := ApplyPolicy(text, ents, DefaultOptions(), streets)
		assert.Equal(t, []Span{person, street, state}, kept)
		assert.Empty(t, filtered)
	})

	t.Run("organizations opt in", func(t *testing.T) {
		opts := DefaultOptions()
		opts.MaskOrganizations = true
		kept, _ := ApplyPolicy(text, ents, opts, streets)
		assert.Equal(t, []Span{person, org, street, state}, kept)
	})

	t.Run("street filtering suppresses and counts", func(t *testing.T) {
		opts := DefaultOptions()
		opts.FilterStreetNames = true
		kept, filtered := ApplyPolicy(text, ents, opts, streets)
		require.Equal(t, []Span{person, state}, kept)
		assert.Equal(t, map[Category]int{CategoryLocation: 1}, filtered)
	})

	t.Run("nil street filter masks everything", func(t *testing.T) {
		opts := DefaultOptions()
		opts.FilterStreetNames = true
		kept, filtered := ApplyPolicy(text, ents, opts, nil)
		assert.Equal(t, []Span{person, street, state}, kept)
		assert.Empty(t, filtered)
	})
}
