package services

import (
	"context"
	"errors"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/adapters/persistence/repositories"
	"biblio-circulate/internal/core/domain"

	"gorm.io/gorm"
)

// BookService handles catalog management. It sets the configured stock only;
// the available counter is owned by the loan state machine.
type BookService struct {
	bookRepo repositories.BookRepository
}

// NewBookService creates a new book service
func NewBookService(bookRepo repositories.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Category    string `json:"category"`
	TotalCopies int    `json:"total_copies"`
}

// Create adds a book to the catalog with all copies available
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	book := &models.Book{
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		Category:    input.Category,
		TotalCopies: input.TotalCopies,
		Copies:      input.TotalCopies,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateEntry
		}
		return nil, err
	}

	return book, nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

// List lists books with optional search
func (s *BookService) List(ctx context.Context, query string, offset, limit int) ([]*models.Book, int64, error) {
	return s.bookRepo.List(ctx, query, offset, limit)
}

// UpdateBookInput represents update book input
type UpdateBookInput struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	ISBN     string `json:"isbn,omitempty"`
	Category string `json:"category,omitempty"`
}

// Update changes catalog fields of a book
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}

	if input.Title != "" {
		book.Title = input.Title
	}
	if input.Author != "" {
		book.Author = input.Author
	}
	if input.ISBN != "" {
		book.ISBN = input.ISBN
	}
	if input.Category != "" {
		book.Category = input.Category
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	return s.bookRepo.GetByID(ctx, id)
}

// AdjustStock moves the configured stock by delta. Shrinking below the
// number of copies currently out is refused.
func (s *BookService) AdjustStock(ctx context.Context, id uint, delta int) (*models.Book, error) {
	if err := s.bookRepo.AdjustTotalCopies(ctx, id, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return s.bookRepo.GetByID(ctx, id)
}

// Delete removes a book from the catalog
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.bookRepo.GetByID(ctx, id); err != nil {
		return domain.ErrBookNotFound
	}
	return s.bookRepo.Delete(ctx, id)
}
