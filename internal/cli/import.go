package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/database/runs"
	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/importers"
	"github.com/mrlokans/perlego-sync/internal/notify"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
	"github.com/mrlokans/perlego-sync/internal/storage"
)

// ImportCommand runs a single Perlego import from the command line
type ImportCommand struct {
	Token        string
	VaultDir     string
	Folder       string
	DatabasePath string
	APIURL       string
	Timeout      time.Duration
	Verbose      bool
	DryRun       bool

	security config.Security
	source   importers.BookSource
	out      io.Writer
}

func NewImportCommand() *ImportCommand {
	return &ImportCommand{out: os.Stdout}
}

func (cmd *ImportCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	cmd.security = cfg.Security

	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.Token, "token", "", "Perlego bearer token (default: stored token or PERLEGO_TOKEN)")
	fs.StringVar(&cmd.VaultDir, "vault", cfg.Vault.Dir, "Vault directory the documents are written into (default: VAULT_DIR)")
	fs.StringVar(&cmd.Folder, "folder", "", "Folder inside the vault (default: stored folder, PERLEGO_FOLDER or \"Perlego\")")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database holding settings and run history")
	fs.StringVar(&cmd.APIURL, "api", cfg.Perlego.APIURL, "Perlego API base URL")
	fs.DurationVar(&cmd.Timeout, "timeout", cfg.Perlego.HTTPTimeout, "Per-request HTTP timeout, 0 for none")
	fs.BoolVar(&cmd.Verbose, "verbose", cfg.Log.Verbose, "Print every book outcome")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Fetch and compose documents without writing them")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import Perlego highlights into markdown documents, one per book.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import into an Obsidian vault:\n")
		fmt.Fprintf(os.Stderr, "  %s import -vault ~/Obsidian/Notes\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Preview which documents would be written:\n")
		fmt.Fprintf(os.Stderr, "  %s import -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.VaultDir == "" && !cmd.DryRun {
		return fmt.Errorf("required flag -vault not provided (or set VAULT_DIR)")
	}
	if cmd.Folder != "" {
		folder, err := settingsstore.ValidateFolder(cmd.Folder)
		if err != nil {
			return err
		}
		cmd.Folder = folder
	}

	return nil
}

func (cmd *ImportCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cmd.run(ctx)
}

func (cmd *ImportCommand) run(ctx context.Context) error {
	fmt.Fprintln(cmd.out, "Perlego Import")
	fmt.Fprintln(cmd.out, "==============")

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "DRY RUN MODE - No documents will be written")
		fmt.Fprintln(cmd.out)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	settings := openSettings(db, cmd.security)

	token := cmd.Token
	if token == "" {
		token, err = settings.GetToken()
		if err != nil {
			return err
		}
	}
	if token == "" {
		return fmt.Errorf("%w: pass -token, run set-token or set %s", perlego.ErrMissingToken, settingsstore.EnvPerlegoToken)
	}

	folder := cmd.Folder
	if folder == "" {
		folder = settings.GetFolder()
	}

	var store storage.DocumentStore
	var preview *storage.Memory
	if cmd.DryRun {
		preview = storage.NewMemory()
		store = preview
	} else {
		absVault, err := filepath.Abs(cmd.VaultDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for vault: %w", err)
		}
		vault, err := storage.NewVault(absVault)
		if err != nil {
			return err
		}
		if err := vault.CheckWritable(); err != nil {
			return err
		}
		store = vault
		fmt.Fprintf(cmd.out, "Vault: %s\n", absVault)
	}
	fmt.Fprintf(cmd.out, "Folder: %s\n\n", folder)

	source := cmd.source
	if source == nil {
		source = perlego.NewClient(perlego.WithBaseURL(cmd.APIURL), perlego.WithTimeout(cmd.Timeout))
	}

	importer := importers.NewImporter(source, store, folder)
	importer.SetReporter(notify.Logger{})
	importer.SetVerbose(cmd.Verbose)
	if !cmd.DryRun {
		importer.SetRecorder(runs.NewRepository(db.DB))
	}

	summary, err := importer.ImportAll(ctx, token, entities.ImportTriggerCLI)
	cmd.printSummary(summary, preview)
	if err != nil {
		return err
	}

	if cmd.DryRun {
		fmt.Fprintln(cmd.out, "\nDry run complete. Use without -dry-run to import.")
		return nil
	}
	fmt.Fprintln(cmd.out, "\nImport complete!")
	return nil
}

func (cmd *ImportCommand) printSummary(summary entities.RunSummary, preview *storage.Memory) {
	if cmd.Verbose && len(summary.Outcomes) > 0 {
		fmt.Fprintln(cmd.out, "\n=== Books ===")
		for _, outcome := range summary.Outcomes {
			switch outcome.Status {
			case entities.OutcomeImported:
				fmt.Fprintf(cmd.out, "  [OK] %s -> %s\n", outcome.Title, outcome.Path)
			case entities.OutcomeSkippedNoData:
				fmt.Fprintf(cmd.out, "  [SKIP] book %s has no highlights\n", outcome.BookID)
			case entities.OutcomeFailed:
				fmt.Fprintf(cmd.out, "  [ERROR] book %s: %s\n", outcome.BookID, outcome.Reason)
			}
		}
	}

	if preview != nil && len(preview.Paths()) > 0 {
		fmt.Fprintln(cmd.out, "\n=== Documents that would be written ===")
		for _, p := range preview.Paths() {
			fmt.Fprintf(cmd.out, "  %s\n", p)
		}
	}

	fmt.Fprintln(cmd.out, "\n=== Import Summary ===")
	if summary.Aborted() {
		fmt.Fprintf(cmd.out, "Aborted: %v\n", summary.Err)
	}
	fmt.Fprintf(cmd.out, "Imported: %d\n", summary.Imported)
	fmt.Fprintf(cmd.out, "Skipped (no highlights): %d\n", summary.Skipped)
	fmt.Fprintf(cmd.out, "Failed: %d\n", summary.Failed)
}

// openSettings builds a settings store. Without a usable cipher the store
// still serves environment values and unencrypted settings.
func openSettings(db *database.Database, security config.Security) *settingsstore.SettingsStore {
	cipher, err := settingsstore.ResolveCipher(db, security)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: token encryption unavailable: %v\n", err)
		return settingsstore.New(db, nil)
	}
	return settingsstore.New(db, cipher)
}
