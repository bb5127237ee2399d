package services

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/adapters/persistence/repositories"
	"biblio-circulate/internal/core/domain"

	"github.com/google/uuid"
)

// walletPhonePattern validates the mobile-money number used by the instant
// settlement path
var walletPhonePattern = regexp.MustCompile(`^0[79]\d{8}$`)

// GatewayClient initializes a hosted checkout with the external payment
// provider and returns the redirect URL
type GatewayClient interface {
	InitializeCheckout(ctx context.Context, txRef string, amount int64, fullName, email string) (string, error)
}

// PaymentService drives fine settlement. It never mutates loans directly:
// the loan service performs the terminal return transition, and only after
// this service has won the payment-status gate.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	loanRepo    repositories.LoanRepository
	userRepo    repositories.UserRepository
	loanService *LoanService
	gateway     GatewayClient
	fine        FinePolicy
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	loanRepo repositories.LoanRepository,
	userRepo repositories.UserRepository,
	loanService *LoanService,
	gateway GatewayClient,
	fine FinePolicy,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
		userRepo:    userRepo,
		loanService: loanService,
		gateway:     gateway,
		fine:        fine,
	}
}

// QuoteOutput reports what a borrower currently owes
type QuoteOutput struct {
	LoanID     uint   `json:"loan_id"`
	BookTitle  string `json:"book_title"`
	Fine       int64  `json:"fine"`
	DaysLate   int    `json:"days_late"`
	NothingDue bool   `json:"nothing_due"`
}

// Quote computes the fine on the user's active loan at this instant
func (s *PaymentService) Quote(ctx context.Context, userID uint) (*QuoteOutput, error) {
	loan, err := s.loanRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if loan == nil || loan.Status != string(domain.LoanStatusBorrowed) {
		return nil, domain.ErrNoActiveLoan
	}

	now := time.Now()
	fine := s.fine.Fine(*loan.DueDate, domain.Role(loan.UserType), now)

	return &QuoteOutput{
		LoanID:     loan.ID,
		BookTitle:  loan.BookTitle,
		Fine:       fine,
		DaysLate:   DaysLate(*loan.DueDate, now),
		NothingDue: fine == 0,
	}, nil
}

// SettleInput carries a settlement request
type SettleInput struct {
	LoanID      uint
	Amount      int64
	Method      domain.PaymentMethod
	PhoneNumber string
}

// SettleOutput reports a settlement attempt
type SettleOutput struct {
	TxRef       string `json:"tx_ref"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	CheckoutURL string `json:"checkout_url,omitempty"`
}

// Settle clears the fine on a borrowed loan. The wallet method settles
// immediately; the gateway method creates a pending payment and hands back a
// provider redirect, with the actual loan mutation deferred to Verify.
//
// The fine is recomputed at this call's instant and compared against the
// submitted amount so a borrower can never pay yesterday's quote.
func (s *PaymentService) Settle(ctx context.Context, userID uint, input *SettleInput) (*SettleOutput, error) {
	loan, err := s.loanRepo.GetByID(ctx, input.LoanID)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if loan.Status != string(domain.LoanStatusBorrowed) {
		return nil, domain.ErrInvalidStatus
	}

	now := time.Now()
	fine := s.fine.Fine(*loan.DueDate, domain.Role(loan.UserType), now)
	if fine == 0 {
		return nil, domain.ErrNothingDue
	}
	if input.Amount != fine {
		return nil, domain.ErrStaleQuote
	}

	switch input.Method {
	case domain.PaymentMethodWallet:
		return s.settleWallet(ctx, loan, input, now)
	case domain.PaymentMethodGateway:
		return s.settleGateway(ctx, loan, input)
	default:
		return nil, domain.ErrInvalidInput
	}
}

// settleWallet performs the instant settlement path: pending payment row,
// settlement-driven return, then the completed flip. A failed loan mutation
// leaves the payment FAILED and all three records consistent.
func (s *PaymentService) settleWallet(ctx context.Context, loan *models.Loan, input *SettleInput, now time.Time) (*SettleOutput, error) {
	if !walletPhonePattern.MatchString(input.PhoneNumber) {
		return nil, domain.ErrInvalidPhone
	}

	txRef := uuid.New().String()
	payment := &models.Payment{
		TxRef:       txRef,
		UserID:      loan.UserID,
		UserName:    loan.UserName,
		LoanID:      loan.ID,
		Amount:      input.Amount,
		Method:      string(domain.PaymentMethodWallet),
		PhoneNumber: input.PhoneNumber,
		Status:      string(domain.PaymentStatusPending),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	if err := s.loanService.SettleReturn(ctx, loan.ID, now); err != nil {
		if _, failErr := s.paymentRepo.MarkFailed(ctx, txRef); failErr != nil {
			log.Printf("⚠️ Failed to fail payment %s after settle error: %v", txRef, failErr)
		}
		return nil, err
	}

	if _, err := s.paymentRepo.MarkCompleted(ctx, txRef, now); err != nil {
		return nil, err
	}

	log.Printf("💰 Wallet settlement completed: loan %d, amount %d (tx %s)", loan.ID, input.Amount, txRef)

	return &SettleOutput{
		TxRef:  txRef,
		Status: string(domain.PaymentStatusCompleted),
		Amount: input.Amount,
	}, nil
}

// settleGateway creates the pending payment and the provider checkout; the
// loan stays BORROWED until the provider callback reaches Verify.
func (s *PaymentService) settleGateway(ctx context.Context, loan *models.Loan, input *SettleInput) (*SettleOutput, error) {
	user, err := s.userRepo.GetByID(ctx, loan.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	txRef := uuid.New().String()
	checkoutURL, err := s.gateway.InitializeCheckout(ctx, txRef, input.Amount, user.FullName, user.Email)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TxRef:       txRef,
		UserID:      loan.UserID,
		UserName:    loan.UserName,
		LoanID:      loan.ID,
		Amount:      input.Amount,
		Method:      string(domain.PaymentMethodGateway),
		CheckoutURL: checkoutURL,
		Status:      string(domain.PaymentStatusPending),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &SettleOutput{
		TxRef:       txRef,
		Status:      string(domain.PaymentStatusPending),
		Amount:      input.Amount,
		CheckoutURL: checkoutURL,
	}, nil
}

// VerifyOutput reports whether a callback was applied
type VerifyOutput struct {
	TxRef   string `json:"tx_ref"`
	Applied bool   `json:"applied"`
}

// Verify is the idempotent provider callback entry point. The conditional
// PENDING → COMPLETED update decides exactly one winner, so a replayed
// callback for the same transaction reference is a no-op: inventory moves by
// one, not two.
func (s *PaymentService) Verify(ctx context.Context, txRef, providerStatus string) (*VerifyOutput, error) {
	payment, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}

	if providerStatus != "success" {
		if _, err := s.paymentRepo.MarkFailed(ctx, txRef); err != nil {
			return nil, err
		}
		return &VerifyOutput{TxRef: txRef, Applied: false}, nil
	}

	now := time.Now()
	won, err := s.paymentRepo.MarkCompleted(ctx, txRef, now)
	if err != nil {
		return nil, err
	}
	if !won {
		// Already COMPLETED or FAILED. Usually a replayed delivery, but an
		// earlier winner may have died between completing the payment and
		// closing the loan; the retry finishes that close.
		return s.repairCompleted(ctx, txRef, now)
	}

	if err := s.loanService.SettleReturn(ctx, payment.LoanID, now); err != nil {
		log.Printf("⚠️ Payment %s completed but loan %d close failed, provider retry will repair: %v", txRef, payment.LoanID, err)
		return nil, err
	}

	log.Printf("💰 Gateway settlement verified: loan %d, amount %d (tx %s)", payment.LoanID, payment.Amount, txRef)

	return &VerifyOutput{TxRef: txRef, Applied: true}, nil
}

// repairCompleted handles a callback that lost the payment-status gate. When
// the payment is COMPLETED but its loan is still BORROWED, a previous winner
// failed mid-close and this delivery must finish the return; every other
// combination is a plain replay and answers applied=false.
func (s *PaymentService) repairCompleted(ctx context.Context, txRef string, now time.Time) (*VerifyOutput, error) {
	payment, err := s.paymentRepo.GetByTxRef(ctx, txRef)
	if err != nil {
		return nil, domain.ErrPaymentNotFound
	}
	if payment.Status != string(domain.PaymentStatusCompleted) {
		return &VerifyOutput{TxRef: txRef, Applied: false}, nil
	}

	loan, err := s.loanRepo.GetByID(ctx, payment.LoanID)
	if err != nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != string(domain.LoanStatusBorrowed) {
		return &VerifyOutput{TxRef: txRef, Applied: false}, nil
	}

	if err := s.loanService.SettleReturn(ctx, payment.LoanID, now); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another caller closed the loan between the check and the transition
			return &VerifyOutput{TxRef: txRef, Applied: false}, nil
		}
		return nil, err
	}

	log.Printf("💰 Repaired settlement for loan %d after earlier close failure (tx %s)", payment.LoanID, txRef)

	return &VerifyOutput{TxRef: txRef, Applied: true}, nil
}

// ListByUser lists a user's settlement attempts
func (s *PaymentService) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error) {
	return s.paymentRepo.ListByUser(ctx, userID, offset, limit)
}
