package services

import (
	"context"
	"testing"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newLoanServiceForTest() (*LoanService, *MockLoanRepo, *MockBookRepo, *MockUserRepo) {
	loanRepo := new(MockLoanRepo)
	bookRepo := new(MockBookRepo)
	userRepo := new(MockUserRepo)
	svc := NewLoanService(loanRepo, bookRepo, userRepo, DefaultCirculationPolicy())
	return svc, loanRepo, bookRepo, userRepo
}

func testUser(id uint) *models.User {
	return &models.User{
		ID:       id,
		Username: "somsri",
		Email:    "somsri@example.org",
		FullName: "Somsri T.",
		Role:     "STUDENT",
		IsActive: true,
	}
}

func testBook(id uint) *models.Book {
	return &models.Book{
		ID:          id,
		Title:       "The Go Programming Language",
		Author:      "Donovan & Kernighan",
		TotalCopies: 3,
		Copies:      2,
	}
}

func TestRequestLoan_Success(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	loanRepo.On("LatestRejection", ctx, uint(1), uint(5)).Return(nil, nil)
	loanRepo.On("Create", ctx, mock.AnythingOfType("*models.Loan")).Return(nil)

	loan, err := svc.RequestLoan(ctx, 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, string(domain.LoanStatusPending), loan.Status)
	assert.NotNil(t, loan.ActiveKey)
	assert.Equal(t, "1", *loan.ActiveKey)
	assert.Equal(t, "The Go Programming Language", loan.BookTitle)
	loanRepo.AssertExpectations(t)
	// A pending request must never touch inventory
	bookRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestRequestLoan_ActiveLoanBlocks(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(&models.Loan{ID: 9, Status: "BORROWED"}, nil)

	_, err := svc.RequestLoan(ctx, 1, 5)

	assert.ErrorIs(t, err, domain.ErrActiveLoan)
	loanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRequestLoan_DuplicateKeyRaceMapsToActiveLoan(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	loanRepo.On("LatestRejection", ctx, uint(1), uint(5)).Return(nil, nil)
	loanRepo.On("Create", ctx, mock.AnythingOfType("*models.Loan")).Return(gorm.ErrDuplicatedKey)

	_, err := svc.RequestLoan(ctx, 1, 5)

	assert.ErrorIs(t, err, domain.ErrActiveLoan)
}

func TestRequestLoan_RejectionCooldown(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	rejectedAt := time.Now().Add(-2 * time.Hour)
	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	loanRepo.On("LatestRejection", ctx, uint(1), uint(5)).Return(&models.Loan{
		ID: 3, Status: "REJECTED", RejectedAt: &rejectedAt,
	}, nil)

	_, err := svc.RequestLoan(ctx, 1, 5)

	assert.ErrorIs(t, err, domain.ErrCooldown)
}

func TestRequestLoan_CooldownExpired(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	rejectedAt := time.Now().Add(-25 * time.Hour)
	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	loanRepo.On("LatestRejection", ctx, uint(1), uint(5)).Return(&models.Loan{
		ID: 3, Status: "REJECTED", RejectedAt: &rejectedAt,
	}, nil)
	loanRepo.On("Create", ctx, mock.AnythingOfType("*models.Loan")).Return(nil)

	_, err := svc.RequestLoan(ctx, 1, 5)

	assert.NoError(t, err)
}

func TestApproveLoan_Success(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	pending := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "PENDING"}
	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "BORROWED"}

	loanRepo.On("GetByID", ctx, uint(7)).Return(pending, nil).Once()
	bookRepo.On("Reserve", ctx, uint(5)).Return(true, nil)
	loanRepo.On("MarkBorrowed", ctx, uint(7), uint(2), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(true, nil)
	loanRepo.On("GetByID", ctx, uint(7)).Return(borrowed, nil).Once()

	loan, err := svc.ApproveLoan(ctx, 7, 2)

	assert.NoError(t, err)
	assert.Equal(t, "BORROWED", loan.Status)
	bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestApproveLoan_OutOfStockLeavesLoanPending(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	pending := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "PENDING"}
	loanRepo.On("GetByID", ctx, uint(7)).Return(pending, nil)
	bookRepo.On("Reserve", ctx, uint(5)).Return(false, nil)

	_, err := svc.ApproveLoan(ctx, 7, 2)

	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	loanRepo.AssertNotCalled(t, "MarkBorrowed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestApproveLoan_LostRaceReleasesCopy(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	pending := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "PENDING"}
	loanRepo.On("GetByID", ctx, uint(7)).Return(pending, nil)
	bookRepo.On("Reserve", ctx, uint(5)).Return(true, nil)
	loanRepo.On("MarkBorrowed", ctx, uint(7), uint(2), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(false, nil)
	bookRepo.On("Release", ctx, uint(5)).Return(nil)

	_, err := svc.ApproveLoan(ctx, 7, 2)

	assert.ErrorIs(t, err, domain.ErrConflict)
	bookRepo.AssertCalled(t, "Release", ctx, uint(5))
}

func TestApproveLoan_NotPending(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	loanRepo.On("GetByID", ctx, uint(7)).Return(&models.Loan{ID: 7, Status: "BORROWED"}, nil)

	_, err := svc.ApproveLoan(ctx, 7, 2)

	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	bookRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestRejectLoan_Success(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	pending := &models.Loan{ID: 7, Status: "PENDING"}
	rejected := &models.Loan{ID: 7, Status: "REJECTED", RejectionReason: "damaged copy hold"}

	loanRepo.On("GetByID", ctx, uint(7)).Return(pending, nil).Once()
	loanRepo.On("MarkRejected", ctx, uint(7), "damaged copy hold", mock.AnythingOfType("time.Time")).Return(true, nil)
	loanRepo.On("GetByID", ctx, uint(7)).Return(rejected, nil).Once()

	loan, err := svc.RejectLoan(ctx, 7, 2, "damaged copy hold")

	assert.NoError(t, err)
	assert.Equal(t, "REJECTED", loan.Status)
	// Rejecting a pending request never moves inventory
	bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestDirectBorrow_ActiveSlotRaceReleasesCopy(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	bookRepo.On("Reserve", ctx, uint(5)).Return(true, nil)
	loanRepo.On("Create", ctx, mock.AnythingOfType("*models.Loan")).Return(gorm.ErrDuplicatedKey)
	bookRepo.On("Release", ctx, uint(5)).Return(nil)

	_, err := svc.DirectBorrow(ctx, 1, 5, 2)

	assert.ErrorIs(t, err, domain.ErrActiveLoan)
	bookRepo.AssertCalled(t, "Release", ctx, uint(5))
}

func TestDirectBorrow_Success(t *testing.T) {
	svc, loanRepo, bookRepo, userRepo := newLoanServiceForTest()
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(1)).Return(testUser(1), nil)
	bookRepo.On("GetByID", ctx, uint(5)).Return(testBook(5), nil)
	loanRepo.On("GetActiveByUser", ctx, uint(1)).Return(nil, nil)
	bookRepo.On("Reserve", ctx, uint(5)).Return(true, nil)
	loanRepo.On("Create", ctx, mock.AnythingOfType("*models.Loan")).Return(nil)

	loan, err := svc.DirectBorrow(ctx, 1, 5, 2)

	assert.NoError(t, err)
	assert.Equal(t, "BORROWED", loan.Status)
	assert.NotNil(t, loan.DueDate)
	assert.NotNil(t, loan.BorrowedAt)
	assert.Equal(t, uint(2), *loan.ApprovedBy)
}

func TestReturnLoan_NoFineSuccess(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, UserType: "STUDENT", Status: "BORROWED", DueDate: &due}
	returned := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "RETURNED"}

	loanRepo.On("GetBorrowedByUserAndBook", ctx, uint(1), uint(5)).Return(borrowed, nil)
	loanRepo.On("MarkReturned", ctx, uint(7), int64(0), mock.AnythingOfType("time.Time")).Return(true, nil)
	bookRepo.On("Release", ctx, uint(5)).Return(nil)
	loanRepo.On("GetByID", ctx, uint(7)).Return(returned, nil)

	out, err := svc.ReturnLoan(ctx, 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Fine)
	assert.Equal(t, "RETURNED", out.Loan.Status)
	bookRepo.AssertCalled(t, "Release", ctx, uint(5))
}

func TestReturnLoan_WithinGraceStillFree(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	// One day late as a student falls inside the grace period
	due := time.Now().Add(-20 * time.Hour)
	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, UserType: "STUDENT", Status: "BORROWED", DueDate: &due}
	returned := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "RETURNED"}

	loanRepo.On("GetBorrowedByUserAndBook", ctx, uint(1), uint(5)).Return(borrowed, nil)
	loanRepo.On("MarkReturned", ctx, uint(7), int64(0), mock.AnythingOfType("time.Time")).Return(true, nil)
	bookRepo.On("Release", ctx, uint(5)).Return(nil)
	loanRepo.On("GetByID", ctx, uint(7)).Return(returned, nil)

	out, err := svc.ReturnLoan(ctx, 1, 5)

	assert.NoError(t, err)
	assert.Equal(t, 1, out.DaysLate)
	assert.Equal(t, int64(0), out.Fine)
}

func TestReturnLoan_FineOutstandingBlocksReturn(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()

	due := time.Now().Add(-5 * 24 * time.Hour)
	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, UserType: "STUDENT", Status: "BORROWED", DueDate: &due}

	loanRepo.On("GetBorrowedByUserAndBook", ctx, uint(1), uint(5)).Return(borrowed, nil)

	_, err := svc.ReturnLoan(ctx, 1, 5)

	assert.ErrorIs(t, err, domain.ErrFineOutstanding)
	loanRepo.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestReturnLoan_NoBorrowedLoan(t *testing.T) {
	svc, loanRepo, _, _ := newLoanServiceForTest()
	ctx := context.Background()

	loanRepo.On("GetBorrowedByUserAndBook", ctx, uint(1), uint(5)).Return(nil, nil)

	_, err := svc.ReturnLoan(ctx, 1, 5)

	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestSettleReturn_ClosesLoanAndReleasesCopy(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()
	now := time.Now()

	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "BORROWED"}
	loanRepo.On("GetByID", ctx, uint(7)).Return(borrowed, nil)
	loanRepo.On("MarkReturned", ctx, uint(7), int64(0), now).Return(true, nil)
	bookRepo.On("Release", ctx, uint(5)).Return(nil)

	err := svc.SettleReturn(ctx, 7, now)

	assert.NoError(t, err)
	bookRepo.AssertCalled(t, "Release", ctx, uint(5))
}

func TestSettleReturn_LostTransitionIsConflict(t *testing.T) {
	svc, loanRepo, bookRepo, _ := newLoanServiceForTest()
	ctx := context.Background()
	now := time.Now()

	borrowed := &models.Loan{ID: 7, UserID: 1, BookID: 5, Status: "BORROWED"}
	loanRepo.On("GetByID", ctx, uint(7)).Return(borrowed, nil)
	loanRepo.On("MarkReturned", ctx, uint(7), int64(0), now).Return(false, nil)

	err := svc.SettleReturn(ctx, 7, now)

	assert.ErrorIs(t, err, domain.ErrConflict)
	// Losing the transition means someone else already released the copy
	bookRepo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}
