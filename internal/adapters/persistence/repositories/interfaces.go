package repositories

import (
	"context"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// BookRepository defines catalog + inventory ledger access.
//
// Reserve and Release are the only two operations that move the available
// copy counter in response to loan transitions; catalog editing goes through
// Update/AdjustTotalCopies and never touches the loan-driven counter directly.
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	List(ctx context.Context, query string, offset, limit int) ([]*models.Book, int64, error)
	Update(ctx context.Context, book *models.Book) error
	AdjustTotalCopies(ctx context.Context, id uint, delta int) error
	Delete(ctx context.Context, id uint) error

	// Reserve atomically decrements the available counter; returns false when
	// no copy was available at the instant of the conditional update.
	Reserve(ctx context.Context, id uint) (bool, error)
	// Release increments the available counter. No upper bound is enforced.
	Release(ctx context.Context, id uint) error
}

// LoanRepository defines loan lifecycle persistence.
//
// The Mark* methods are compare-and-swap transitions: they apply the whole
// multi-field update in a single conditional write keyed on the current
// status and report whether this caller won the transition.
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetActiveByUser(ctx context.Context, userID uint) (*models.Loan, error)
	GetBorrowedByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Loan, error)
	LatestRejection(ctx context.Context, userID, bookID uint) (*models.Loan, error)

	MarkBorrowed(ctx context.Context, loanID, approverID uint, borrowedAt, dueDate time.Time) (bool, error)
	MarkRejected(ctx context.Context, loanID uint, reason string, rejectedAt time.Time) (bool, error)
	MarkReturned(ctx context.Context, loanID uint, fine int64, returnedAt time.Time) (bool, error)

	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error)
	List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error)
	CountBorrowedByBook(ctx context.Context, bookID uint) (int64, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error)
}

// PaymentRepository defines settlement persistence.
//
// MarkCompleted/MarkFailed are the idempotency gate for provider callbacks:
// only the caller that flips PENDING wins, replays see zero rows affected.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error)
	MarkCompleted(ctx context.Context, txRef string, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, txRef string) (bool, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error)
	SumCompleted(ctx context.Context) (int64, error)
}

// NotificationRepository defines in-app notification records
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ExistsForSweep(ctx context.Context, loanID uint, sweepDate time.Time) (bool, error)
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error)
}
