package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/perlego-sync/internal/config"
	"github.com/mrlokans/perlego-sync/internal/database"
	"github.com/mrlokans/perlego-sync/internal/database/runs"
	"github.com/mrlokans/perlego-sync/internal/entities"
	"github.com/mrlokans/perlego-sync/internal/perlego"
	"github.com/mrlokans/perlego-sync/internal/settingsstore"
)

type fakeAPI struct {
	mu     sync.Mutex
	tokens []string
}

func (f *fakeAPI) lastToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tokens) == 0 {
		return ""
	}
	return f.tokens[len(f.tokens)-1]
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.tokens = append(api.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/book-activity/books":
			w.Write([]byte(`{"data":[{"bookId":1},{"bookId":"2"}]}`))
		case "/ugc/v2/packaged-highlights":
			if r.URL.Query().Get("book_id") == "2" {
				w.Write([]byte(`{"success":false,"data":null}`))
				return
			}
			w.Write([]byte(`{"success":true,"data":{"results":[{"highlighted_text":"First highlight","notes":[{"text":"a note"}]}]}}`))
		case "/catalogue-service/v1/book":
			w.Write([]byte(`{"data":{"results":[{"title":{"mainTitle":"My Book","subtitle":"A Subtitle"},"contributors":[{"name":"Jane Doe","type":"author"}]}]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return api, server
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		settingsstore.EnvPerlegoToken,
		settingsstore.EnvPerlegoFolder,
		"VAULT_DIR",
		"OBSIDIAN_VAULT_DIR",
		"DATABASE_PATH",
		"PERLEGO_API_URL",
		"TOKEN_ENCRYPTION_KEY",
		"TOKEN_PASSPHRASE",
	} {
		t.Setenv(k, "")
	}
}

func newTestImportCommand(t *testing.T, apiURL string) (*ImportCommand, *bytes.Buffer) {
	t.Helper()
	clearEnv(t)
	dir := t.TempDir()
	vault := filepath.Join(dir, "vault")
	require.NoError(t, os.Mkdir(vault, 0755))

	out := &bytes.Buffer{}
	return &ImportCommand{
		VaultDir:     vault,
		DatabasePath: filepath.Join(dir, "perlego-sync.db"),
		APIURL:       apiURL,
		security:     config.Security{KeyFilePath: filepath.Join(dir, "token.key")},
		out:          out,
	}, out
}

func TestImportCommand_WritesDocuments(t *testing.T) {
	api, server := newFakeAPI(t)
	cmd, out := newTestImportCommand(t, server.URL)
	cmd.Token = "flag-token"
	cmd.Verbose = true

	require.NoError(t, cmd.run(context.Background()))

	content, err := os.ReadFile(filepath.Join(cmd.VaultDir, "Perlego", "My Book.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "First highlight")
	assert.Contains(t, string(content), "a note")
	assert.Equal(t, "flag-token", api.lastToken())

	assert.Contains(t, out.String(), "Imported: 1")
	assert.Contains(t, out.String(), "Skipped (no highlights): 1")
	assert.Contains(t, out.String(), "[SKIP] book 2")

	db, err := database.NewDatabase(cmd.DatabasePath)
	require.NoError(t, err)
	defer db.Close()
	history, err := runs.NewRepository(db.DB).ListRuns(10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entities.ImportTriggerCLI, history[0].Trigger)
	assert.Equal(t, 1, history[0].Imported)
}

func TestImportCommand_CustomFolder(t *testing.T) {
	_, server := newFakeAPI(t)
	cmd, _ := newTestImportCommand(t, server.URL)
	cmd.Token = "flag-token"
	cmd.Folder = "Reading/Perlego"

	require.NoError(t, cmd.run(context.Background()))

	assert.FileExists(t, filepath.Join(cmd.VaultDir, "Reading", "Perlego", "My Book.md"))
}

func TestImportCommand_DryRun(t *testing.T) {
	_, server := newFakeAPI(t)
	cmd, out := newTestImportCommand(t, server.URL)
	cmd.Token = "flag-token"
	cmd.DryRun = true

	require.NoError(t, cmd.run(context.Background()))

	assert.Contains(t, out.String(), "Perlego/My Book.md")
	assert.NoDirExists(t, filepath.Join(cmd.VaultDir, "Perlego"))
}

func TestImportCommand_MissingToken(t *testing.T) {
	_, server := newFakeAPI(t)
	cmd, _ := newTestImportCommand(t, server.URL)

	err := cmd.run(context.Background())

	assert.ErrorIs(t, err, perlego.ErrMissingToken)
}

func TestImportCommand_UsesStoredToken(t *testing.T) {
	api, server := newFakeAPI(t)
	cmd, _ := newTestImportCommand(t, server.URL)

	setToken := &SetTokenCommand{
		Token:        "stored-token",
		DatabasePath: cmd.DatabasePath,
		security:     cmd.security,
		out:          &bytes.Buffer{},
	}
	require.NoError(t, setToken.Run())

	require.NoError(t, cmd.run(context.Background()))
	assert.Equal(t, "stored-token", api.lastToken())
}

func TestImportCommand_EnvironmentToken(t *testing.T) {
	api, server := newFakeAPI(t)
	cmd, _ := newTestImportCommand(t, server.URL)
	t.Setenv(settingsstore.EnvPerlegoToken, "env-token")

	require.NoError(t, cmd.run(context.Background()))
	assert.Equal(t, "env-token", api.lastToken())
}

func TestImportCommand_AbortsOnInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	cmd, out := newTestImportCommand(t, server.URL)
	cmd.Token = "bad-token"

	err := cmd.run(context.Background())

	assert.ErrorIs(t, err, perlego.ErrInvalidToken)
	assert.Contains(t, out.String(), "Aborted")
	assert.NoDirExists(t, filepath.Join(cmd.VaultDir, "Perlego"))
}

func TestImportCommand_ParseFlags(t *testing.T) {
	t.Run("vault is required", func(t *testing.T) {
		clearEnv(t)
		err := NewImportCommand().ParseFlags(nil)
		assert.Error(t, err)
	})

	t.Run("dry run needs no vault", func(t *testing.T) {
		clearEnv(t)
		cmd := NewImportCommand()
		require.NoError(t, cmd.ParseFlags([]string{"-dry-run", "-token", "abc"}))
		assert.True(t, cmd.DryRun)
		assert.Equal(t, "abc", cmd.Token)
		assert.Equal(t, config.DefaultDatabasePath, cmd.DatabasePath)
		assert.Equal(t, config.DefaultAPIURL, cmd.APIURL)
	})

	t.Run("vault from environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("VAULT_DIR", "/tmp/vault")
		cmd := NewImportCommand()
		require.NoError(t, cmd.ParseFlags(nil))
		assert.Equal(t, "/tmp/vault", cmd.VaultDir)
	})

	t.Run("folder is validated", func(t *testing.T) {
		clearEnv(t)
		err := NewImportCommand().ParseFlags([]string{"-vault", "/tmp", "-folder", "../outside"})
		assert.ErrorIs(t, err, settingsstore.ErrInvalidFolder)
	})
}

func TestSetTokenCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "perlego-sync.db")
	security := config.Security{KeyFilePath: filepath.Join(dir, "token.key")}

	cmd := &SetTokenCommand{
		DatabasePath: dbPath,
		security:     security,
		in:           strings.NewReader("  token-from-stdin\n"),
		out:          &bytes.Buffer{},
	}
	require.NoError(t, cmd.Run())

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)
	cipher, err := settingsstore.ResolveCipher(db, security)
	require.NoError(t, err)
	token, err := settingsstore.New(db, cipher).GetToken()
	require.NoError(t, err)
	assert.Equal(t, "token-from-stdin", token)

	stored, err := db.GetSetting(entities.SettingKeyPerlegoToken)
	require.NoError(t, err)
	assert.NotContains(t, stored.Value, "token-from-stdin")
	require.NoError(t, db.Close())

	clearCmd := &SetTokenCommand{DatabasePath: dbPath, Clear: true, security: security, out: &bytes.Buffer{}}
	require.NoError(t, clearCmd.Run())

	db, err = database.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	assert.False(t, settingsstore.New(db, cipher).HasToken())
}

func TestSetTokenCommand_EmptyToken(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cmd := &SetTokenCommand{
		DatabasePath: filepath.Join(dir, "perlego-sync.db"),
		security:     config.Security{KeyFilePath: filepath.Join(dir, "token.key")},
		in:           strings.NewReader("\n"),
		out:          &bytes.Buffer{},
	}

	assert.ErrorIs(t, cmd.Run(), settingsstore.ErrEmptyToken)
}
