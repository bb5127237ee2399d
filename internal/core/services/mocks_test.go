package services

import (
	"context"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}
func (m *MockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockBookRepo
type MockBookRepo struct {
	mock.Mock
}

func (m *MockBookRepo) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}
func (m *MockBookRepo) List(ctx context.Context, query string, offset, limit int) ([]*models.Book, int64, error) {
	args := m.Called(ctx, query, offset, limit)
	return args.Get(0).([]*models.Book), args.Get(1).(int64), args.Error(2)
}
func (m *MockBookRepo) Update(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}
func (m *MockBookRepo) AdjustTotalCopies(ctx context.Context, id uint, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}
func (m *MockBookRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBookRepo) Reserve(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookRepo) Release(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoanRepo
type MockLoanRepo struct {
	mock.Mock
}

func (m *MockLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}
func (m *MockLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetActiveByUser(ctx context.Context, userID uint) (*models.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}
func (m *MockLoanRepo) GetBorrowedByUserAndBook(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}
func (m *MockLoanRepo) LatestRejection(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}
func (m *MockLoanRepo) MarkBorrowed(ctx context.Context, loanID, approverID uint, borrowedAt, dueDate time.Time) (bool, error) {
	args := m.Called(ctx, loanID, approverID, borrowedAt, dueDate)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) MarkRejected(ctx context.Context, loanID uint, reason string, rejectedAt time.Time) (bool, error) {
	args := m.Called(ctx, loanID, reason, rejectedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) MarkReturned(ctx context.Context, loanID uint, fine int64, returnedAt time.Time) (bool, error) {
	args := m.Called(ctx, loanID, fine, returnedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoanRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]*models.Loan), args.Get(1).(int64), args.Error(2)
}
func (m *MockLoanRepo) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	args := m.Called(ctx, status, offset, limit)
	return args.Get(0).([]*models.Loan), args.Get(1).(int64), args.Error(2)
}
func (m *MockLoanRepo) CountBorrowedByBook(ctx context.Context, bookID uint) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockLoanRepo) ListOverdue(ctx context.Context, now time.Time) ([]*models.Loan, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	args := m.Called(ctx, txRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}
func (m *MockPaymentRepo) MarkCompleted(ctx context.Context, txRef string, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, txRef, completedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) MarkFailed(ctx context.Context, txRef string) (bool, error) {
	args := m.Called(ctx, txRef)
	return args.Bool(0), args.Error(1)
}
func (m *MockPaymentRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]*models.Payment), args.Get(1).(int64), args.Error(2)
}
func (m *MockPaymentRepo) SumCompleted(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) InitializeCheckout(ctx context.Context, txRef string, amount int64, fullName, email string) (string, error) {
	args := m.Called(ctx, txRef, amount, fullName, email)
	return args.String(0), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) ExistsForSweep(ctx context.Context, loanID uint, sweepDate time.Time) (bool, error) {
	args := m.Called(ctx, loanID, sweepDate)
	return args.Bool(0), args.Error(1)
}
func (m *MockNotificationRepo) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]*models.Notification), args.Get(1).(int64), args.Error(2)
}
