package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// BookService handles catalog operations
type BookService struct {
	store  ports.DocumentStore
	logger *logger.Logger
}

// NewBookService creates a new book service
func NewBookService(store ports.DocumentStore, logger *logger.Logger) *BookService {
	return &BookService{
		store:  store,
		logger: logger,
	}
}

// ListBooks returns every book in insertion order
func (s *BookService) ListBooks(ctx context.Context) ([]entities.Book, error) {
	return s.store.GetBooks(), nil
}

// AddBook validates and appends a book, assigning an ID when none usable was given.
func (s *BookService) AddBook(ctx context.Context, req ports.AddBookRequest) (*ports.AddBookResponse, error) {
	if entities.IsBlank(req.Title) || entities.IsBlank(req.Author) || entities.IsBlank(req.Genre) {
		return nil, entities.ErrBookFieldsRequired
	}

	var book entities.Book
	err := s.store.Update(func(doc *entities.Document) error {
		id, err := resolveBookID(doc.Books, req.ID)
		if err != nil {
			return err
		}

		book = entities.Book{
			ID:          id,
			Title:       req.Title,
			Author:      req.Author,
			Genre:       req.Genre,
			Description: valueOr(req.Description, entities.DefaultBookDescription),
			Cover:       valueOr(req.Cover, entities.DefaultBookCover),
			AddedBy:     valueOr(req.AddedBy, entities.DefaultBookAddedBy),
		}
		doc.Books = append(doc.Books, book)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add book: %w", err)
	}

	s.logger.Infow("Book added", "book_id", book.ID, "title", book.Title, "added_by", book.AddedBy)

	return &ports.AddBookResponse{Message: "Book added", ID: book.ID}, nil
}

// DeleteBook removes the book with the given ID
func (s *BookService) DeleteBook(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return entities.ErrBookIDRequired
	}

	bookID, err := strconv.Atoi(id)
	if err != nil {
		return entities.ErrInvalidBookID
	}

	err = s.store.Update(func(doc *entities.Document) error {
		for i, book := range doc.Books {
			if book.HasID(bookID) {
				doc.Books = append(doc.Books[:i], doc.Books[i+1:]...)
				return nil
			}
		}
		return entities.ErrBookNotFound
	})
	if err != nil {
		return fmt.Errorf("failed to delete book %d: %w", bookID, err)
	}

	s.logger.Infow("Book deleted", "book_id", bookID)

	return nil
}

// resolveBookID returns the requested ID when it is an integer not yet taken,
// or max+1 when no usable ID was supplied. Stored IDs may exceed the range
// accepted from clients, so max+1 can run out.
func resolveBookID(books []entities.Book, requested ports.BookIDInput) (int, error) {
	if requested.IsSet() {
		if id, ok := requested.Int(); ok {
			if entities.HasBookID(books, id) {
				return 0, entities.NewError(entities.ErrConflict, "book with ID %d already exists", id)
			}
			return id, nil
		}
	}

	maxID := entities.MaxBookID(books)
	if maxID == math.MaxInt {
		return 0, entities.ErrBookIDsExhausted
	}

	return maxID + 1, nil
}

func valueOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
