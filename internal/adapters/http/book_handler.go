package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cosmiclibrary/core/internal/domain/entities"
	"github.com/cosmiclibrary/core/internal/infrastructure/logger"
	"github.com/cosmiclibrary/core/internal/ports"
)

// BookHandler handles catalog requests
type BookHandler struct {
	bookService ports.BookService
	logger      *logger.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService ports.BookService, logger *logger.Logger) *BookHandler {
	return &BookHandler{
		bookService: bookService,
		logger:      logger,
	}
}

// ListBooks godoc
// @Summary List books
// @Description List every book in the catalog in insertion order
// @Tags books
// @Produce json
// @Success 200 {array} entities.Book
// @Router /books [get]
func (h *BookHandler) ListBooks(c echo.Context) error {
	books, err := h.bookService.ListBooks(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List books failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, books)
}

// AddBook godoc
// @Summary Add a book
// @Description Add a book to the catalog. The ID is assigned when omitted or unparsable.
// @Tags books
// @Accept json
// @Produce json
// @Param request body ports.AddBookRequest true "Book data"
// @Success 200 {object} ports.AddBookResponse
// @Failure 400 {object} ErrorResponse
// @Router /books [post]
func (h *BookHandler) AddBook(c echo.Context) error {
	var req ports.AddBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return toHTTPError(entities.ErrBookFieldsRequired)
	}

	response, err := h.bookService.AddBook(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Add book failed", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, response)
}

// DeleteBook godoc
// @Summary Delete a book
// @Description Delete the book with the given ID
// @Tags books
// @Produce json
// @Param id query string true "Book ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /books [delete]
func (h *BookHandler) DeleteBook(c echo.Context) error {
	id := c.QueryParam("id")

	if err := h.bookService.DeleteBook(c.Request().Context(), id); err != nil {
		h.logger.Warnw("Delete book failed", "error", err, "book_id", id)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Book deleted"})
}
