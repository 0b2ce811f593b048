package importers

import (
	"strings"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

const bulletPrefix = "- "

// Aggregated holds the bullet lines rendered into a book document.
type Aggregated struct {
	Highlights []string
	Notes      []string
}

// Aggregate turns highlight records into bullet lines.
// Every record yields one highlight line. Notes are flattened in record
// order and blank notes are dropped. Source order is kept as-is.
func Aggregate(records []entities.HighlightRecord) Aggregated {
	result := Aggregated{
		Highlights: make([]string, 0, len(records)),
		Notes:      []string{},
	}

	for _, record := range records {
		result.Highlights = append(result.Highlights, bulletPrefix+record.HighlightedText)

		for _, note := range record.Notes {
			if strings.TrimSpace(note) == "" {
				continue
			}
			result.Notes = append(result.Notes, bulletPrefix+note)
		}
	}

	return result
}
