package entities

// BookReference identifies a book the user has interacted with on Perlego.
// It only lives for the duration of one import run.
type BookReference struct {
	BookID string `json:"bookId"`
}

// HighlightRecord is one highlighted passage with the notes attached to it.
type HighlightRecord struct {
	HighlightedText string
	Notes           []string
}

// BookMetadata is the catalogue information used to render a document.
// An empty Subtitle means the book has none.
type BookMetadata struct {
	MainTitle     string
	Subtitle      string
	CoverImageURL string
	Authors       []string
}

// FullTitle joins the main title and subtitle with "; ", omitting the
// separator when there is no subtitle.
func (m BookMetadata) FullTitle() string {
	if m.Subtitle == "" {
		return m.MainTitle
	}
	return m.MainTitle + "; " + m.Subtitle
}

// ImportedDocument is the rendered markdown for a single book.
// Title is the main title and is used to derive the storage key.
type ImportedDocument struct {
	Title string
	Body  string
}
