// Package importers imports Perlego highlights into markdown documents.
//
// # Architecture
//
// One run follows a fixed sequence:
//
//	ListBooks → for each book: FetchHighlights → (skip | FetchMetadata → Aggregate → Compose → Write)
//
// Books are processed one at a time. Each book is fully fetched, rendered
// and written before the next one starts.
//
// # Outcomes
//
// Every listed book yields exactly one entities.ImportOutcome:
//
//   - imported: a document was written to <folder>/<title>.md
//   - skipped_no_data: the highlights call reported no content
//   - failed: fetching highlights or metadata, or writing, failed
//
// A failure of the book list call aborts the run before any book is
// touched. The caller gets a RunSummary with Err set.
//
// # Example Usage
//
//	client := perlego.NewClient()
//	vault, _ := storage.NewVault("/path/to/vault")
//	importer := importers.NewImporter(client, vault, "Perlego")
//	importer.SetReporter(notify.Logger{})
//
//	summary, err := importer.ImportAll(ctx, token, entities.ImportTriggerCLI)
package importers
