package storage

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DocumentExtension is appended to every document key
const DocumentExtension = ".md"

const maxNameLength = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Runs of whitespace collapse into one space
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// SanitizeName turns a book title into a safe file name.
// Path separators and characters rejected by common filesystems are
// removed, whitespace is collapsed and leading dots are stripped so a
// title can never address a parent or hidden file.
func SanitizeName(title string) string {
	name := whitespaceRuns.ReplaceAllString(title, " ")
	name = invalidNameChars.ReplaceAllString(name, "")
	name = whitespaceRuns.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, ".")
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > maxNameLength {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:maxNameLength]))
	}

	if name == "" {
		name = "Untitled"
	}
	return name
}

// DocumentPath derives the storage key of a document from its title:
// <folder>/<sanitized title>.md. Two books with the same title map to
// the same key.
func DocumentPath(folder, title string) string {
	return path.Join(folder, SanitizeName(title)+DocumentExtension)
}
