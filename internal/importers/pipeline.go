package importers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/exporters"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/storage"
)

const (
	MessageStarting    = "Importing Perlego highlights..."
	MessageCredentials = "Perlego import failed, check your credentials"
)

// BookSource is the Perlego API as seen by the importer.
// perlego.Client implements it.
type BookSource interface {
	ListBooks(ctx context.Context, token string) ([]entities.BookReference, error)
	FetchHighlights(ctx context.Context, token, bookID string) (*perlego.HighlightsResponse, error)
	FetchMetadata(ctx context.Context, token, bookID string) (entities.BookMetadata, error)
}

// RunRecorder persists run history. runs.Repository implements it.
type RunRecorder interface {
	StartRun(runID string, trigger entities.ImportTrigger, startedAt time.Time) (*entities.ImportRun, error)
	FinishRun(id uint, summary entities.RunSummary) error
}

// ImportAuditor records finished runs in the audit trail.
type ImportAuditor interface {
	LogImport(summary entities.RunSummary)
}

// Importer drives a full import: list books, then fetch, aggregate,
// compose and write one document per book, strictly one book at a time.
//
// Only one run may be active per Importer; overlapping calls fail fast
// with ErrRunInProgress.
type Importer struct {
	source   BookSource
	store    storage.DocumentStore
	folder   func() string
	reporter notify.Reporter
	recorder RunRecorder
	auditor  ImportAuditor
	verbose  bool

	running sync.Mutex
	now     func() time.Time
	newID   func() string
}

// NewImporter creates an importer writing documents into folder.
func NewImporter(source BookSource, store storage.DocumentStore, folder string) *Importer {
	return &Importer{
		source:   source,
		store:    store,
		folder:   func() string { return folder },
		reporter: notify.Nop{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetReporter sets where progress notices go.
func (i *Importer) SetReporter(r notify.Reporter) {
	if r == nil {
		r = notify.Nop{}
	}
	i.reporter = r
}

// SetRecorder enables run history persistence.
func (i *Importer) SetRecorder(r RunRecorder) {
	i.recorder = r
}

// SetAuditor enables audit logging of finished runs.
func (i *Importer) SetAuditor(a ImportAuditor) {
	i.auditor = a
}

// SetVerbose logs skipped books.
func (i *Importer) SetVerbose(verbose bool) {
	i.verbose = verbose
}

// SetFolderFunc makes the importer resolve its folder at the start of every
// run, so settings changes apply without a restart.
func (i *Importer) SetFolderFunc(fn func() string) {
	if fn != nil {
		i.folder = fn
	}
}

// Folder returns the collection documents are written into.
func (i *Importer) Folder() string {
	return i.folder()
}

// ImportAll runs one import with the given token.
//
// A failure to list books aborts the run: the returned summary has Err set,
// no per-book request is made and nothing is written. Per-book problems
// never abort the run; they are recorded as skipped or failed outcomes.
func (i *Importer) ImportAll(ctx context.Context, token string, trigger entities.ImportTrigger) (entities.RunSummary, error) {
	if !i.running.TryLock() {
		return entities.RunSummary{}, ErrRunInProgress
	}
	defer i.running.Unlock()

	summary := entities.RunSummary{
		RunID:     i.newID(),
		StartedAt: i.now(),
		Outcomes:  []entities.ImportOutcome{},
	}
	run := i.startRecord(summary, trigger)
	defer func() {
		i.finishRecord(run, summary)
	}()

	i.reporter.Report(notify.Event{
		Kind:     notify.EventStarting,
		Message:  MessageStarting,
		Duration: notify.DefaultDuration,
	})

	books, err := i.source.ListBooks(ctx, token)
	if err != nil {
		summary.Err = fmt.Errorf("fetch book list: %w", err)
		summary.FinishedAt = i.now()
		log.Printf("Perlego import: aborted: %v", summary.Err)
		i.reporter.Report(notify.Event{
			Kind:    notify.EventFailed,
			Message: MessageCredentials,
			Urgent:  true,
			Force:   true,
		})
		return summary, summary.Err
	}

	i.reporter.Report(notify.Event{
		Kind:     notify.EventSaving,
		Message:  fmt.Sprintf("Saving Perlego highlights for %d books...", len(books)),
		Duration: notify.DefaultDuration,
	})

	state := &runState{folder: i.folder(), written: make(map[string]string)}
	for _, book := range books {
		if err := ctx.Err(); err != nil {
			summary.Err = fmt.Errorf("import interrupted: %w", err)
			break
		}
		summary.Add(i.importBook(ctx, token, book, state))
	}
	summary.FinishedAt = i.now()

	log.Printf("Perlego import: %d imported, %d skipped, %d failed in %v",
		summary.Imported, summary.Skipped, summary.Failed,
		summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	if summary.Err != nil {
		i.reporter.Report(notify.Event{
			Kind:    notify.EventFailed,
			Message: "Perlego import interrupted",
			Urgent:  true,
			Force:   true,
		})
		return summary, summary.Err
	}

	i.reporter.Report(notify.Event{
		Kind: notify.EventCompleted,
		Message: fmt.Sprintf("Perlego import completed: %d imported, %d skipped, %d failed",
			summary.Imported, summary.Skipped, summary.Failed),
		Duration: notify.DefaultDuration,
	})

	return summary, nil
}

type runState struct {
	folder          string
	collectionReady bool
	written         map[string]string // document path -> book id
}

func (i *Importer) importBook(ctx context.Context, token string, book entities.BookReference, state *runState) entities.ImportOutcome {
	outcome := entities.ImportOutcome{BookID: book.BookID}

	highlights, err := i.source.FetchHighlights(ctx, token, book.BookID)
	if err != nil {
		return failed(outcome, fmt.Errorf("fetch highlights: %w", err))
	}
	if !highlights.HasContent() {
		if i.verbose {
			log.Printf("Perlego import: book %s has no highlights, skipping", book.BookID)
		}
		outcome.Status = entities.OutcomeSkippedNoData
		return outcome
	}

	meta, err := i.source.FetchMetadata(ctx, token, book.BookID)
	if err != nil {
		return failed(outcome, fmt.Errorf("fetch metadata: %w", err))
	}
	outcome.Title = meta.MainTitle

	aggregated := Aggregate(highlights.Records())
	doc := exporters.Compose(meta, aggregated.Highlights, aggregated.Notes)
	path := storage.DocumentPath(state.folder, doc.Title)

	if !state.collectionReady {
		if err := storage.EnsureCollection(ctx, i.store, state.folder); err != nil {
			return failed(outcome, fmt.Errorf("create folder %s: %w", state.folder, err))
		}
		state.collectionReady = true
	}

	if previous, ok := state.written[path]; ok {
		log.Printf("Perlego import: warning - books %s and %s share the title %q, %s is overwritten",
			previous, book.BookID, doc.Title, path)
	}

	if err := i.store.Write(ctx, path, doc.Body); err != nil {
		return failed(outcome, fmt.Errorf("write %s: %w", path, err))
	}
	state.written[path] = book.BookID

	outcome.Status = entities.OutcomeImported
	outcome.Path = path
	return outcome
}

func failed(outcome entities.ImportOutcome, err error) entities.ImportOutcome {
	log.Printf("Perlego import: warning - book %s failed: %v", outcome.BookID, err)
	outcome.Status = entities.OutcomeFailed
	outcome.Reason = err.Error()
	return outcome
}

func (i *Importer) startRecord(summary entities.RunSummary, trigger entities.ImportTrigger) *entities.ImportRun {
	if i.recorder == nil {
		return nil
	}
	run, err := i.recorder.StartRun(summary.RunID, trigger, summary.StartedAt)
	if err != nil {
		log.Printf("Perlego import: failed to record run start: %v", err)
		return nil
	}
	return run
}

func (i *Importer) finishRecord(run *entities.ImportRun, summary entities.RunSummary) {
	if i.auditor != nil {
		i.auditor.LogImport(summary)
	}
	if i.recorder == nil || run == nil {
		return
	}
	if err := i.recorder.FinishRun(run.ID, summary); err != nil {
		log.Printf("Perlego import: failed to record run result: %v", err)
	}
}
