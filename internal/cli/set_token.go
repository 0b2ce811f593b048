package cli

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

// SetTokenCommand stores the Perlego token encrypted in the local database
type SetTokenCommand struct {
	Token        string
	DatabasePath string
	Clear        bool

	security config.Security
	in       io.Reader
	out      io.Writer
}

func NewSetTokenCommand() *SetTokenCommand {
	return &SetTokenCommand{in: os.Stdin, out: os.Stdout}
}

func (cmd *SetTokenCommand) ParseFlags(args []string) error {
	cfg := config.NewConfig()
	cmd.security = cfg.Security

	fs := flag.NewFlagSet("set-token", flag.ExitOnError)

	fs.StringVar(&cmd.Token, "token", "", "Perlego bearer token; read from stdin when omitted")
	fs.StringVar(&cmd.DatabasePath, "db", cfg.Database.Path, "Path to the local database")
	fs.BoolVar(&cmd.Clear, "clear", false, "Remove the stored token")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s set-token [-token <token>] [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Store the Perlego token encrypted in the local database.\n")
		fmt.Fprintf(os.Stderr, "The encryption key comes from TOKEN_ENCRYPTION_KEY, TOKEN_PASSPHRASE\n")
		fmt.Fprintf(os.Stderr, "or a key file (TOKEN_KEY_FILE, default ~/%s).\n\n", settingsstore.DefaultKeyFileName)
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echo \"$TOKEN\" | %s set-token\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s set-token -clear\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SetTokenCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cmd.Clear {
		if err := settingsstore.New(db, nil).ClearToken(); err != nil {
			return fmt.Errorf("failed to clear token: %w", err)
		}
		fmt.Fprintln(cmd.out, "Stored Perlego token removed")
		return nil
	}

	token := cmd.Token
	if token == "" {
		fmt.Fprint(cmd.out, "Perlego token: ")
		line, err := bufio.NewReader(cmd.in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token = strings.TrimSpace(line)
		fmt.Fprintln(cmd.out)
	}

	cipher, err := settingsstore.ResolveCipher(db, cmd.security)
	if err != nil {
		return fmt.Errorf("failed to set up token encryption: %w", err)
	}

	if err := settingsstore.New(db, cipher).SetToken(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Fprintf(cmd.out, "Perlego token stored in %s\n", absDBPath)
	return nil
}
