package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathOutsideVault is returned for paths that would escape the vault root
var ErrPathOutsideVault = errors.New("path escapes vault root")

// Vault is a DocumentStore backed by a local directory, typically an
// Obsidian vault.
type Vault struct {
	Root string
}

// NewVault creates a vault rooted at dir. The directory must exist.
func NewVault(dir string) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("vault directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", dir)
	}
	return &Vault{Root: dir}, nil
}

func (v *Vault) resolve(p string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideVault, p)
	}
	return filepath.Join(v.Root, clean), nil
}

func (v *Vault) Exists(_ context.Context, p string) (bool, error) {
	full, err := v.resolve(p)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (v *Vault) CreateCollection(_ context.Context, p string) error {
	full, err := v.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", p, err)
	}
	return nil
}

// Write overwrites the document. Content is written to a temporary file
// in the same folder and renamed into place.
func (v *Vault) Write(_ context.Context, p string, content string) error {
	full, err := v.resolve(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".perlego-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", p, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", p, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		return fmt.Errorf("failed to replace %s: %w", p, err)
	}
	return nil
}

// CheckWritable verifies the vault root accepts new files by creating
// and removing a marker file.
func (v *Vault) CheckWritable() error {
	marker := filepath.Join(v.Root, ".perlego-sync")
	f, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("vault directory %s is not writable: %w", v.Root, err)
	}
	f.Close()
	return os.Remove(marker)
}
