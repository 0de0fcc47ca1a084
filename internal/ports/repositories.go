package ports

import (
	"github.com/cosmiclibrary/core/internal/domain/entities"
)

// DocumentStore is the single owner of the persisted library document.
//
// Reads never fail: a missing or unreadable document is replaced by the
// default document. Write errors are only returned when the store runs in
// strict mode; otherwise they are logged and the write is lost.
type DocumentStore interface {
	// Read loads the whole document.
	Read() *entities.Document
	// Write replaces the whole document.
	Write(doc *entities.Document) error
	// Update runs fn against a fresh snapshot and writes the result while
	// holding the store's writer lock. Returning an error from fn skips the write.
	Update(fn func(doc *entities.Document) error) error

	GetBooks() []entities.Book
	SaveBooks(books []entities.Book) error
	GetSettings() entities.Settings
	SaveSettings(settings entities.Settings) error
}
