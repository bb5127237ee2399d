package services

import (
	"context"
	"testing"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestBookCreate_AllCopiesStartAvailable(t *testing.T) {
	bookRepo := new(MockBookRepo)
	svc := NewBookService(bookRepo)
	ctx := context.Background()

	bookRepo.On("Create", ctx, mock.AnythingOfType("*models.Book")).Return(nil)

	book, err := svc.Create(ctx, &CreateBookInput{
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		ISBN:        "978-0134190440",
		TotalCopies: 3,
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 3, book.Copies)
}

func TestBookCreate_DuplicateISBN(t *testing.T) {
	bookRepo := new(MockBookRepo)
	svc := NewBookService(bookRepo)
	ctx := context.Background()

	bookRepo.On("Create", ctx, mock.AnythingOfType("*models.Book")).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(ctx, &CreateBookInput{Title: "Dup", ISBN: "978-0134190440"})

	assert.ErrorIs(t, err, domain.ErrDuplicateEntry)
}

func TestBookAdjustStock_ShrinkBelowOutstandingRefused(t *testing.T) {
	bookRepo := new(MockBookRepo)
	svc := NewBookService(bookRepo)
	ctx := context.Background()

	// The conditional update matches no row when the shrink would leave the
	// available counter negative
	bookRepo.On("AdjustTotalCopies", ctx, uint(5), -3).Return(gorm.ErrRecordNotFound)

	_, err := svc.AdjustStock(ctx, 5, -3)

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestBookAdjustStock_Success(t *testing.T) {
	bookRepo := new(MockBookRepo)
	svc := NewBookService(bookRepo)
	ctx := context.Background()

	bookRepo.On("AdjustTotalCopies", ctx, uint(5), 2).Return(nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(&models.Book{ID: 5, TotalCopies: 5, Copies: 4}, nil)

	book, err := svc.AdjustStock(ctx, 5, 2)

	assert.NoError(t, err)
	assert.Equal(t, 5, book.TotalCopies)
}
