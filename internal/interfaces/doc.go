// Package interfaces holds compile-time checks for the interfaces used
// across the application.
//
// Consumers declare the small interfaces they need next to the code that
// uses them:
//
//   - importers.BookSource: the Perlego API (perlego.Client)
//   - storage.DocumentStore: where documents are written (storage.Vault, storage.Memory)
//   - importers.RunRecorder: run history (database/runs.Repository)
//   - notify.Reporter: import notices (notify.Logger, notify.Status, notify.Audit)
//   - scheduler.Runner: one import run (importers.Importer)
//   - tasks.Syncer: what the import queue calls (scheduler.PerlegoSyncScheduler)
//   - http.SettingsStore, http.SyncScheduler, http.ImportQueue, http.RunStore,
//     http.AuditLog: the HTTP API's dependencies
//
// # Adding a New Document Store
//
// Implement storage.DocumentStore, add a check to checks.go and pass the
// store to importers.NewImporter in entrypoint.go:
//
//	var _ storage.DocumentStore = (*WebDAVStore)(nil)
//
// # Compile-Time Interface Checks
//
// Every implementation gets a check so a missing method fails the build
// rather than a wiring step at runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
package interfaces
