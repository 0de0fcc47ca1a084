package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every domain error unwraps to exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

// Error is a domain error with a human-readable message and a kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError creates a domain error of the given kind
func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Common errors
var (
	ErrBookFieldsRequired  = &Error{Kind: ErrValidation, Message: "title, author and genre are required"}
	ErrBookIDRequired      = &Error{Kind: ErrValidation, Message: "ID is required"}
	ErrInvalidBookID       = &Error{Kind: ErrValidation, Message: "invalid ID format"}
	ErrBookNotFound        = &Error{Kind: ErrNotFound, Message: "book not found"}
	ErrCredentialsRequired = &Error{Kind: ErrValidation, Message: "username and password are required"}
	ErrUsernameRequired    = &Error{Kind: ErrValidation, Message: "username is required"}
	ErrReservedUsername    = &Error{Kind: ErrConflict, Message: "user already exists in configuration"}
	ErrUserAlreadyExists   = &Error{Kind: ErrConflict, Message: "user already exists"}
	ErrWrongPassword       = &Error{Kind: ErrUnauthorized, Message: "wrong password"}
	ErrUserNotFound        = &Error{Kind: ErrUnauthorized, Message: "user not found"}
	ErrBookIDsExhausted    = &Error{Kind: ErrConflict, Message: "no book ID available"}
)

// Defaults applied when a book is created without the optional fields.
const (
	DefaultBookDescription = ""
	DefaultBookCover       = "https://via.placeholder.com/150"
	DefaultBookAddedBy     = "unknown"
	DefaultBackgroundType  = "default"
	BackgroundURLPrefix    = "/backgrounds/"
)

// CredentialSource tells where a successful login was matched.
type CredentialSource string

const (
	CredentialSourceEnv      CredentialSource = "env"
	CredentialSourceDatabase CredentialSource = "database"
)

// Document is the single persisted unit: everything the library stores.
type Document struct {
	Users    []User   `json:"users"`
	Books    []Book   `json:"books"`
	Settings Settings `json:"settings"`
}

// User is a persisted registration
type User struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	CreatedAt int64  `json:"created_at"` // epoch millis

	// RawCreatedAt holds a stored timestamp that is not an integer, written back verbatim.
	RawCreatedAt json.RawMessage `json:"-"`
}

// Book is a catalog entry. ID is unique within a Document.
type Book struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Genre       string `json:"genre"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
	AddedBy     string `json:"addedBy"`

	// RawID holds a stored ID that is not an integer. Such a book keeps its
	// ID verbatim on disk, never matches a lookup and counts as 0 for max.
	RawID json.RawMessage `json:"-"`
}

// HasID reports whether the book carries the given integer ID.
func (b Book) HasID(id int) bool {
	return b.RawID == nil && b.ID == id
}

// Settings is the global display configuration. Saves replace it whole.
type Settings struct {
	Background     *string `json:"background"`
	BackgroundType string  `json:"backgroundType"`
}

// Credential is a configuration-sourced username/password pair. Never persisted.
type Credential struct {
	Username string
	Password string
}

// Background describes a selectable background image.
type Background struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DirectoryEntry is one row of the merged user listing.
type DirectoryEntry struct {
	Username  string           `json:"username"`
	Source    CredentialSource `json:"source"`
	CreatedAt *int64           `json:"created_at,omitempty"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		Background:     nil,
		BackgroundType: DefaultBackgroundType,
	}
}

// DefaultDocument returns an empty document with default settings.
func DefaultDocument() *Document {
	return &Document{
		Users:    []User{},
		Books:    []Book{},
		Settings: DefaultSettings(),
	}
}

// Normalize replaces nil sections with empty ones so users and books always
// serialize as arrays.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Books == nil {
		d.Books = []Book{}
	}
}

// MaxBookID returns the largest integer book ID, or 0 for an empty catalog.
func MaxBookID(books []Book) int {
	maxID := 0
	for _, book := range books {
		if book.RawID == nil && book.ID > maxID {
			maxID = book.ID
		}
	}
	return maxID
}

// HasBookID reports whether any book carries the given ID.
func HasBookID(books []Book, id int) bool {
	for _, book := range books {
		if book.HasID(id) {
			return true
		}
	}
	return false
}

// FindUser returns the persisted user with the given username.
func (d *Document) FindUser(username string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].Username == username {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
