package repositories

import (
	"context"

	"biblio-circulate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// bookRepository handles catalog and inventory data access
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetByID gets a book by ID
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// List lists books with optional title/author search and pagination
func (r *bookRepository) List(ctx context.Context, query string, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	tx := r.db.WithContext(ctx).Model(&models.Book{})
	if query != "" {
		like := "%" + query + "%"
		tx = tx.Where("title LIKE ? OR author LIKE ?", like, like)
	}

	tx.Count(&total)

	err := tx.
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// Update updates catalog fields of a book (title, author, isbn, category).
// Copy counters are not touched here.
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Model(book).
		Select("title", "author", "isbn", "category").
		Updates(book).Error
}

// AdjustTotalCopies moves the configured stock by delta, shifting the
// available counter by the same amount so borrowed copies stay accounted for.
// Shrinking below the number of copies currently out fails.
func (r *bookRepository) AdjustTotalCopies(ctx context.Context, id uint, delta int) error {
	result := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ? AND total_copies + ? >= 0 AND copies + ? >= 0", id, delta, delta).
		Updates(map[string]interface{}{
			"total_copies": gorm.Expr("total_copies + ?", delta),
			"copies":       gorm.Expr("copies + ?", delta),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a book
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// Reserve decrements the available counter only if a copy exists, as one
// conditional write. Two borrowers racing for the last copy resolve here:
// exactly one update matches the copies > 0 guard.
func (r *bookRepository) Reserve(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ? AND copies > 0", id).
		UpdateColumn("copies", gorm.Expr("copies - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Release increments the available counter unconditionally
func (r *bookRepository) Release(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Book{}).
		Where("id = ?", id).
		UpdateColumn("copies", gorm.Expr("copies + 1")).Error
}
