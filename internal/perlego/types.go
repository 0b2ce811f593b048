package perlego

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrlokans/perlego-sync/internal/entities"
)

// bookID accepts both numeric and string identifiers from the API.
type bookID string

func (id *bookID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = bookID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("bookId is neither string nor number: %s", string(data))
	}
	*id = bookID(n.String())
	return nil
}

// BookListResponse is the payload of /book-activity/books.
// Data is nil when the field is missing or null.
type BookListResponse struct {
	Data *[]BookEntry `json:"data"`
}

type BookEntry struct {
	BookID bookID `json:"bookId"`
}

// References converts the payload into book references, dropping entries without an id.
func (r BookListResponse) References() []entities.BookReference {
	if r.Data == nil {
		return nil
	}
	refs := make([]entities.BookReference, 0, len(*r.Data))
	for _, b := range *r.Data {
		if b.BookID == "" {
			continue
		}
		refs = append(refs, entities.BookReference{BookID: string(b.BookID)})
	}
	return refs
}

// HighlightsResponse is the payload of /ugc/v2/packaged-highlights
type HighlightsResponse struct {
	Success bool            `json:"success"`
	Data    *HighlightsData `json:"data"`
}

type HighlightsData struct {
	Results []HighlightData `json:"results"`
}

type HighlightData struct {
	HighlightedText string     `json:"highlighted_text"`
	Notes           []NoteData `json:"notes"`
}

type NoteData struct {
	Text string `json:"text"`
}

// HasContent reports whether the book has highlight data.
// success=false or a null data payload means there is nothing to import.
func (r *HighlightsResponse) HasContent() bool {
	return r != nil && r.Success && r.Data != nil
}

// Records returns the highlight records in response order.
func (r *HighlightsResponse) Records() []entities.HighlightRecord {
	if !r.HasContent() {
		return nil
	}
	records := make([]entities.HighlightRecord, 0, len(r.Data.Results))
	for _, h := range r.Data.Results {
		notes := make([]string, 0, len(h.Notes))
		for _, n := range h.Notes {
			notes = append(notes, n.Text)
		}
		records = append(records, entities.HighlightRecord{
			HighlightedText: h.HighlightedText,
			Notes:           notes,
		})
	}
	return records
}

// MetadataResponse is the payload of /catalogue-service/v1/book
type MetadataResponse struct {
	Data *struct {
		Results []CatalogueBook `json:"results"`
	} `json:"data"`
}

type CatalogueBook struct {
	Title struct {
		MainTitle string `json:"mainTitle"`
		Subtitle  string `json:"subtitle"`
	} `json:"title"`
	ImageLinks struct {
		CoverThumbnail string `json:"coverThumbnail"`
	} `json:"imageLinks"`
	Contributors []Contributor `json:"contributors"`
}

type Contributor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

const contributorTypeAuthor = "author"

// Metadata converts the first catalogue result into BookMetadata.
func (r MetadataResponse) Metadata() (entities.BookMetadata, error) {
	if r.Data == nil || len(r.Data.Results) == 0 {
		return entities.BookMetadata{}, ErrMetadataNotFound
	}
	book := r.Data.Results[0]

	var authors []string
	for _, c := range book.Contributors {
		if strings.EqualFold(c.Type, contributorTypeAuthor) && c.Name != "" {
			authors = append(authors, c.Name)
		}
	}

	return entities.BookMetadata{
		MainTitle:     book.Title.MainTitle,
		Subtitle:      strings.TrimSpace(book.Title.Subtitle),
		CoverImageURL: book.ImageLinks.CoverThumbnail,
		Authors:       authors,
	}, nil
}
