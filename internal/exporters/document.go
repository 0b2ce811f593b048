package exporters

import (
	"fmt"
	"strings"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

// Compose renders a book's metadata, highlights and notes into a markdown
// document. Sections always appear in the same order and are never omitted,
// so identical input produces byte-identical output.
func Compose(meta entities.BookMetadata, highlights, notes []string) entities.ImportedDocument {
	var builder strings.Builder

	fmt.Fprintf(&builder, "# %s\n\n", meta.MainTitle)
	fmt.Fprintf(&builder, "![](%s)\n", meta.CoverImageURL)

	fmt.Fprintf(&builder, "## Metadata\n")
	fmt.Fprintf(&builder, "- Author(s): %s\n", strings.Join(meta.Authors, ", "))
	fmt.Fprintf(&builder, "- Full title: %s\n", meta.FullTitle())

	fmt.Fprintf(&builder, "## Highlights\n\n")
	builder.WriteString(strings.Join(highlights, "\n"))

	fmt.Fprintf(&builder, "\n## Notes\n")
	builder.WriteString(strings.Join(notes, "\n"))

	return entities.ImportedDocument{
		Title: meta.MainTitle,
		Body:  builder.String(),
	}
}
