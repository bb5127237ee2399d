package handlers

import (
	"errors"
	"strconv"

	"biblio-circulate/internal/core/domain"
	"biblio-circulate/internal/core/services"
	"biblio-circulate/internal/pkg/pagination"
	"biblio-circulate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// parseIDParam reads a numeric path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// Create adds a book to the catalog
// @Summary Create book
// @Description Add a book to the catalog (Librarian only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if input.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if input.TotalCopies < 0 {
		return response.BadRequest(c, "Total copies cannot be negative")
	}

	book, err := h.bookService.Create(c.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return response.Conflict(c, "A book with this ISBN already exists")
		}
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// List lists the catalog
// @Summary List books
// @Description List books with optional search
// @Tags Books
// @Produce json
// @Param q query string false "Search in title/author"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), c.Query("q"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	return response.Success(c, "Books", pagination.NewResponse(books, params, total))
}

// Get gets a book by ID
// @Summary Get book
// @Description Get a single book
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), id)
	if err != nil {
		return response.NotFound(c, "Book not found")
	}

	return response.Success(c, "Book", fiber.Map{
		"book": book,
	})
}

// Update changes catalog fields
// @Summary Update book
// @Description Update catalog fields of a book (Librarian only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.UpdateBookInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var input services.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), id, &input)
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to update book")
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book,
	})
}

// AdjustStockRequest represents a stock adjustment
type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

// AdjustStock moves the configured stock of a book
// @Summary Adjust stock
// @Description Change the configured number of copies (Librarian only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body AdjustStockRequest true "Delta"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id}/stock [patch]
func (h *BookHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Delta == 0 {
		return response.BadRequest(c, "Delta must be non-zero")
	}

	book, err := h.bookService.AdjustStock(c.Context(), id, req.Delta)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return response.Conflict(c, "Cannot shrink stock below the copies currently out")
		}
		return response.InternalServerError(c, "Failed to adjust stock")
	}

	return response.Success(c, "Stock adjusted successfully", fiber.Map{
		"book": book,
	})
}

// Delete removes a book
// @Summary Delete book
// @Description Remove a book from the catalog (Librarian only)
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to delete book")
	}

	return response.Success(c, "Book deleted successfully", nil)
}
