package ports

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"github.com/cosmiclibrary/core/internal/domain/entities"
)

// BookService interface for catalog operations
type BookService interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	AddBook(ctx context.Context, req AddBookRequest) (*AddBookResponse, error)
	DeleteBook(ctx context.Context, id string) error
}

// SettingsService interface for the display settings
type SettingsService interface {
	GetSettings(ctx context.Context) (*SettingsResponse, error)
	SaveSettings(ctx context.Context, req SaveSettingsRequest) (*entities.Settings, error)
}

// AuthService interface for registration and login
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	ListUsers(ctx context.Context) ([]entities.DirectoryEntry, error)
	IsAdmin(ctx context.Context, username string) (bool, error)
}

// BookIDInput is a client-supplied book ID. It accepts a JSON number or a
// JSON string; null leaves it empty.
type BookIDInput string

// UnmarshalJSON implements json.Unmarshaler
func (b *BookIDInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = BookIDInput(s)
		return nil
	}

	// Anything else is kept verbatim and judged by Int.
	*b = BookIDInput(data)
	return nil
}

// IsSet reports whether the client sent an ID at all
func (b BookIDInput) IsSet() bool {
	return b != ""
}

// Int parses the ID as a 32-bit decimal integer. Fractions, exponents and
// out-of-range values are rejected so the caller falls back to max+1.
func (b BookIDInput) Int() (int, bool) {
	id, err := strconv.ParseInt(string(b), 10, 32)
	if err != nil {
		return 0, false
	}

	return int(id), true
}

// Request/Response types

// AddBookRequest carries a new catalog entry. Nil optional fields get defaults.
type AddBookRequest struct {
	Title       string      `json:"title" validate:"notblank"`
	Author      string      `json:"author" validate:"notblank"`
	Genre       string      `json:"genre" validate:"notblank"`
	ID          BookIDInput `json:"id"`
	Description *string     `json:"description"`
	Cover       *string     `json:"cover"`
	AddedBy     *string     `json:"added_by"`
}

type AddBookResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id"`
}

// SaveSettingsRequest replaces the settings record
type SaveSettingsRequest struct {
	Background     *string `json:"background"`
	BackgroundType *string `json:"backgroundType"`
}

type SettingsResponse struct {
	Settings             entities.Settings     `json:"settings"`
	AvailableBackgrounds []entities.Background `json:"availableBackgrounds"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

type LoginResponse struct {
	Message  string                    `json:"message"`
	Username string                    `json:"username"`
	Source   entities.CredentialSource `json:"source"`
}
