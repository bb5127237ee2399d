package repositories

import (
	"context"
	"errors"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// loanRepository handles loan data access
type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create inserts a new loan. The unique index on active_key makes a second
// concurrent active loan for the same user fail with gorm.ErrDuplicatedKey.
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetActiveByUser returns the user's PENDING or BORROWED loan, nil if none
func (r *loanRepository) GetActiveByUser(ctx context.Context, userID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{"PENDING", "BORROWED"}).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// GetBorrowedByUserAndBook returns the user's BORROWED loan for a book, nil if none
func (r *loanRepository) GetBorrowedByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, "BORROWED").
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// LatestRejection returns the most recent REJECTED loan for (user, book), nil if none
func (r *loanRepository) LatestRejection(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, "REJECTED").
		Order("rejected_at DESC").
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// MarkBorrowed transitions PENDING → BORROWED. The status guard in the WHERE
// clause makes two concurrent approvals resolve to one winner.
func (r *loanRepository) MarkBorrowed(ctx context.Context, loanID, approverID uint, borrowedAt, dueDate time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, "PENDING").
		Updates(map[string]interface{}{
			"status":      "BORROWED",
			"approved_by": approverID,
			"approved_at": borrowedAt,
			"borrowed_at": borrowedAt,
			"due_date":    dueDate,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkRejected transitions PENDING → REJECTED and frees the active slot
func (r *loanRepository) MarkRejected(ctx context.Context, loanID uint, reason string, rejectedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, "PENDING").
		Updates(map[string]interface{}{
			"status":           "REJECTED",
			"rejection_reason": reason,
			"rejected_at":      rejectedAt,
			"active_key":       nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkReturned transitions BORROWED → RETURNED, freezes the fine value and
// frees the active slot, all in one conditional write.
func (r *loanRepository) MarkReturned(ctx context.Context, loanID uint, fine int64, returnedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", loanID, "BORROWED").
		Updates(map[string]interface{}{
			"status":      "RETURNED",
			"returned_at": returnedAt,
			"fine":        fine,
			"active_key":  nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser lists a borrower's loans, newest first
func (r *loanRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	r.db.WithContext(ctx).Model(&models.Loan{}).Where("user_id = ?", userID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// List lists loans with optional status filter
func (r *loanRepository) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	tx := r.db.WithContext(ctx).Model(&models.Loan{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}

	tx.Count(&total)

	err := tx.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// CountBorrowedByBook counts BORROWED loans for a book
func (r *loanRepository) CountBorrowedByBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("book_id = ? AND status = ?", bookID, "BORROWED").
		Count(&count).Error
	return count, err
}

// ListOverdue lists BORROWED loans whose due date has passed
func (r *loanRepository) ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", "BORROWED", now).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}
