package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/adapters/persistence/repositories"
	"biblio-circulate/internal/core/domain"

	"gorm.io/gorm"
)

// CirculationPolicy holds the loan lifecycle knobs
type CirculationPolicy struct {
	LoanDays       int
	RejectCooldown time.Duration
	Fine           FinePolicy
}

// DefaultCirculationPolicy returns the current library policy
func DefaultCirculationPolicy() CirculationPolicy {
	return CirculationPolicy{
		LoanDays:       7,
		RejectCooldown: 24 * time.Hour,
		Fine:           DefaultFinePolicy(),
	}
}

// LoanService drives the loan state machine. It is the only writer of the
// book copy counter: Reserve on a transition into BORROWED, Release on a
// transition into RETURNED, never on PENDING.
type LoanService struct {
	loanRepo repositories.LoanRepository
	bookRepo repositories.BookRepository
	userRepo repositories.UserRepository
	policy   CirculationPolicy
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo repositories.LoanRepository,
	bookRepo repositories.BookRepository,
	userRepo repositories.UserRepository,
	policy CirculationPolicy,
) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		bookRepo: bookRepo,
		userRepo: userRepo,
		policy:   policy,
	}
}

// activeKey is the value held in the unique active_key column while a loan
// occupies the borrower's single active slot
func activeKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// RequestLoan creates a PENDING loan for a borrower. A pending request holds
// no copy; inventory moves only at approval.
func (s *LoanService) RequestLoan(ctx context.Context, userID, bookID uint) (*models.Loan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}

	active, err := s.loanRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrActiveLoan
	}

	now := time.Now()

	rejection, err := s.loanRepo.LatestRejection(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if rejection != nil && rejection.RejectedAt != nil &&
		now.Sub(*rejection.RejectedAt) < s.policy.RejectCooldown {
		return nil, domain.ErrCooldown
	}

	key := activeKey(userID)
	loan := &models.Loan{
		UserID:      user.ID,
		UserName:    user.FullName,
		UserType:    user.Role,
		BookID:      book.ID,
		BookTitle:   book.Title,
		Status:      string(domain.LoanStatusPending),
		ActiveKey:   &key,
		RequestedAt: now,
		Fine:        0,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		// Lost the unique-index race on active_key: someone else got this
		// user's active slot between the check and the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrActiveLoan
		}
		return nil, err
	}

	return loan, nil
}

// ApproveLoan activates a PENDING loan: reserves a copy, then flips the loan
// to BORROWED with approval metadata and a due date in one conditional write.
// When the reservation fails nothing has changed and the loan stays PENDING.
func (s *LoanService) ApproveLoan(ctx context.Context, loanID, approverID uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != string(domain.LoanStatusPending) {
		return nil, domain.ErrInvalidStatus
	}

	reserved, err := s.bookRepo.Reserve(ctx, loan.BookID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, domain.ErrOutOfStock
	}

	now := time.Now()
	dueDate := now.Add(time.Duration(s.policy.LoanDays) * 24 * time.Hour)

	won, err := s.loanRepo.MarkBorrowed(ctx, loanID, approverID, now, dueDate)
	if err != nil {
		// Give the copy back before surfacing the failure
		if relErr := s.bookRepo.Release(ctx, loan.BookID); relErr != nil {
			log.Printf("⚠️ Failed to release copy for book %d after approve error: %v", loan.BookID, relErr)
		}
		return nil, err
	}
	if !won {
		// Another librarian approved (or rejected) this request first
		if relErr := s.bookRepo.Release(ctx, loan.BookID); relErr != nil {
			log.Printf("⚠️ Failed to release copy for book %d after lost approval race: %v", loan.BookID, relErr)
		}
		return nil, domain.ErrConflict
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

// RejectLoan rejects a PENDING loan with a reason. No inventory effect; the
// rejection timestamp starts the request cooldown for this (user, book) pair.
func (s *LoanService) RejectLoan(ctx context.Context, loanID, librarianID uint, reason string) (*models.Loan, error) {
	if _, err := s.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, domain.ErrLoanNotFound
	}

	won, err := s.loanRepo.MarkRejected(ctx, loanID, reason, time.Now())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrInvalidStatus
	}

	return s.loanRepo.GetByID(ctx, loanID)
}

// DirectBorrow creates a BORROWED loan at the front desk, skipping the
// request flow. Reservation happens first; the loan insert compensates by
// releasing the copy when the borrower's active slot turns out to be taken.
func (s *LoanService) DirectBorrow(ctx context.Context, userID, bookID, librarianID uint) (*models.Loan, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, domain.ErrBookNotFound
	}

	active, err := s.loanRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrActiveLoan
	}

	reserved, err := s.bookRepo.Reserve(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, domain.ErrOutOfStock
	}

	now := time.Now()
	dueDate := now.Add(time.Duration(s.policy.LoanDays) * 24 * time.Hour)
	key := activeKey(userID)

	loan := &models.Loan{
		UserID:      user.ID,
		UserName:    user.FullName,
		UserType:    user.Role,
		BookID:      book.ID,
		BookTitle:   book.Title,
		Status:      string(domain.LoanStatusBorrowed),
		ActiveKey:   &key,
		RequestedAt: now,
		ApprovedBy:  &librarianID,
		ApprovedAt:  &now,
		BorrowedAt:  &now,
		DueDate:     &dueDate,
		Fine:        0,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		if relErr := s.bookRepo.Release(ctx, bookID); relErr != nil {
			log.Printf("⚠️ Failed to release copy for book %d after direct-borrow error: %v", bookID, relErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrActiveLoan
		}
		return nil, err
	}

	return loan, nil
}

// ReturnOutput reports the outcome of a return
type ReturnOutput struct {
	Loan     *models.Loan `json:"loan"`
	Fine     int64        `json:"fine"`
	DaysLate int          `json:"days_late"`
}

// ReturnLoan closes a BORROWED loan when nothing is owed. A loan carrying a
// fine must go through payment settlement instead.
func (s *LoanService) ReturnLoan(ctx context.Context, userID, bookID uint) (*ReturnOutput, error) {
	loan, err := s.loanRepo.GetBorrowedByUserAndBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}

	now := time.Now()
	fine := s.policy.Fine.Fine(*loan.DueDate, domain.Role(loan.UserType), now)
	if fine > 0 {
		return nil, domain.ErrFineOutstanding
	}

	won, err := s.loanRepo.MarkReturned(ctx, loan.ID, 0, now)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, domain.ErrConflict
	}

	if err := s.bookRepo.Release(ctx, loan.BookID); err != nil {
		return nil, err
	}

	closed, err := s.loanRepo.GetByID(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	return &ReturnOutput{
		Loan:     closed,
		Fine:     0,
		DaysLate: DaysLate(*loan.DueDate, now),
	}, nil
}

// SettleReturn is the settlement-driven terminal transition: it closes a
// BORROWED loan with the fine zeroed (the receipt lives on the payment row)
// and releases the copy. Called by the payment service only after the
// payment-status gate has been won.
func (s *LoanService) SettleReturn(ctx context.Context, loanID uint, now time.Time) error {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return domain.ErrLoanNotFound
	}

	won, err := s.loanRepo.MarkReturned(ctx, loanID, 0, now)
	if err != nil {
		return err
	}
	if !won {
		return domain.ErrConflict
	}

	return s.bookRepo.Release(ctx, loan.BookID)
}

// GetLoan gets a loan by ID
func (s *LoanService) GetLoan(ctx context.Context, loanID uint) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// ListByUser lists a borrower's loan history
func (s *LoanService) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.ListByUser(ctx, userID, offset, limit)
}

// List lists loans with an optional status filter (librarian view)
func (s *LoanService) List(ctx context.Context, status string, offset, limit int) ([]*models.Loan, int64, error) {
	return s.loanRepo.List(ctx, status, offset, limit)
}
