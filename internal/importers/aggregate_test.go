package importers

import (
	"testing"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/stretchr/testify/assert"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name           string
		records        []entities.HighlightRecord
		wantHighlights []string
		wantNotes      []string
	}{
		{
			name:           "empty input",
			records:        nil,
			wantHighlights: []string{},
			wantNotes:      []string{},
		},
		{
			name: "drops blank notes",
			records: []entities.HighlightRecord{
				{HighlightedText: "A quote", Notes: []string{"a note", "", "   "}},
			},
			wantHighlights: []string{"- A quote"},
			wantNotes:      []string{"- a note"},
		},
		{
			name: "one highlight line per record regardless of notes",
			records: []entities.HighlightRecord{
				{HighlightedText: "first"},
				{HighlightedText: "second", Notes: []string{"n1", "n2"}},
				{HighlightedText: "third", Notes: []string{"n3"}},
			},
			wantHighlights: []string{"- first", "- second", "- third"},
			wantNotes:      []string{"- n1", "- n2", "- n3"},
		},
		{
			name: "keeps source order without sorting",
			records: []entities.HighlightRecord{
				{HighlightedText: "z", Notes: []string{"later"}},
				{HighlightedText: "a", Notes: []string{"earlier"}},
			},
			wantHighlights: []string{"- z", "- a"},
			wantNotes:      []string{"- later", "- earlier"},
		},
		{
			name: "note text is kept untrimmed",
			records: []entities.HighlightRecord{
				{HighlightedText: "h", Notes: []string{" spaced "}},
			},
			wantHighlights: []string{"- h"},
			wantNotes:      []string{"-  spaced "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.records)

			assert.Equal(t, tt.wantHighlights, got.Highlights)
			assert.Equal(t, tt.wantNotes, got.Notes)
			assert.Len(t, got.Highlights, len(tt.records))
		})
	}
}
