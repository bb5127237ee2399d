package handlers

import (
	"errors"

	"biblio-circulate/internal/core/domain"
	"biblio-circulate/internal/core/services"
	"biblio-circulate/internal/pkg/pagination"
	"biblio-circulate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan lifecycle endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// RequestLoanRequest represents a borrow request
type RequestLoanRequest struct {
	BookID uint `json:"book_id"`
}

// Request creates a pending loan request
// @Summary Request loan
// @Description Request to borrow a book; waits for librarian approval
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RequestLoanRequest true "Book to borrow"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /loans/request [post]
func (h *LoanHandler) Request(c *fiber.Ctx) error {
	var req RequestLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	userID, _ := c.Locals("userID").(uint)

	loan, err := h.loanService.RequestLoan(c.Context(), userID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrActiveLoan):
			return response.Conflict(c, "You already have an active loan")
		case errors.Is(err, domain.ErrCooldown):
			return response.TooManyRequests(c, "A rejected request for this book is still cooling down")
		default:
			return response.InternalServerError(c, "Failed to request loan")
		}
	}

	return response.Created(c, "Loan requested successfully", fiber.Map{
		"loan": loan,
	})
}

// Approve approves a pending loan request
// @Summary Approve loan
// @Description Approve a pending request, reserving a copy (Librarian only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/approve [post]
func (h *LoanHandler) Approve(c *fiber.Ctx) error {
	loanID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	librarianID, _ := c.Locals("userID").(uint)

	loan, err := h.loanService.ApproveLoan(c.Context(), loanID, librarianID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidStatus):
			return response.Conflict(c, "Loan is not pending")
		case errors.Is(err, domain.ErrOutOfStock):
			return response.Conflict(c, "No copies available")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Loan was updated by someone else")
		default:
			return response.InternalServerError(c, "Failed to approve loan")
		}
	}

	return response.Success(c, "Loan approved successfully", fiber.Map{
		"loan": loan,
	})
}

// RejectLoanRequest represents a rejection
type RejectLoanRequest struct {
	Reason string `json:"reason"`
}

// Reject rejects a pending loan request
// @Summary Reject loan
// @Description Reject a pending request with a reason (Librarian only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body RejectLoanRequest true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/{id}/reject [post]
func (h *LoanHandler) Reject(c *fiber.Ctx) error {
	loanID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var req RejectLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Reason == "" {
		return response.BadRequest(c, "Rejection reason is required")
	}

	librarianID, _ := c.Locals("userID").(uint)

	loan, err := h.loanService.RejectLoan(c.Context(), loanID, librarianID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrInvalidStatus):
			return response.Conflict(c, "Loan is not pending")
		default:
			return response.InternalServerError(c, "Failed to reject loan")
		}
	}

	return response.Success(c, "Loan rejected", fiber.Map{
		"loan": loan,
	})
}

// DirectBorrowRequest represents a front-desk loan
type DirectBorrowRequest struct {
	UserID uint `json:"user_id"`
	BookID uint `json:"book_id"`
}

// DirectBorrow creates a loan at the front desk, skipping the request flow
// @Summary Direct borrow
// @Description Lend a book directly at the front desk (Librarian only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body DirectBorrowRequest true "Borrower and book"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/direct [post]
func (h *LoanHandler) DirectBorrow(c *fiber.Ctx) error {
	var req DirectBorrowRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 || req.BookID == 0 {
		return response.BadRequest(c, "User ID and book ID are required")
	}

	librarianID, _ := c.Locals("userID").(uint)

	loan, err := h.loanService.DirectBorrow(c.Context(), req.UserID, req.BookID, librarianID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrActiveLoan):
			return response.Conflict(c, "User already has an active loan")
		case errors.Is(err, domain.ErrOutOfStock):
			return response.Conflict(c, "No copies available")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	return response.Created(c, "Book lent successfully", fiber.Map{
		"loan": loan,
	})
}

// ReturnLoanRequest represents a return
type ReturnLoanRequest struct {
	UserID uint `json:"user_id,omitempty"`
	BookID uint `json:"book_id"`
}

// Return closes a borrowed loan with no outstanding fine
// @Summary Return loan
// @Description Return a borrowed book; fined loans must settle via payment
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ReturnLoanRequest true "Book to return"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /loans/return [post]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	var req ReturnLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	// Librarians may return on behalf of a borrower
	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)
	if req.UserID != 0 && (role == "LIBRARIAN" || role == "ADMIN") {
		userID = req.UserID
	}

	out, err := h.loanService.ReturnLoan(c.Context(), userID, req.BookID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "No borrowed loan for this book")
		case errors.Is(err, domain.ErrFineOutstanding):
			return response.Conflict(c, "Loan has an outstanding fine; settle it via payment")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Loan was updated by someone else")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Book returned successfully", out)
}

// MyLoans lists the authenticated borrower's loan history
// @Summary My loans
// @Description List the authenticated borrower's loans
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /loans/me [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.ListByUser(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans", pagination.NewResponse(loans, params, total))
}

// List lists loans with an optional status filter
// @Summary List loans
// @Description List loans, optionally filtered by status (Librarian only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(PENDING, BORROWED, RETURNED, REJECTED)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	loans, total, err := h.loanService.List(c.Context(), c.Query("status"), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans", pagination.NewResponse(loans, params, total))
}

// Get gets a loan by ID
// @Summary Get loan
// @Description Get a single loan (Librarian only)
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	loanID, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetLoan(c.Context(), loanID)
	if err != nil {
		return response.NotFound(c, "Loan not found")
	}

	return response.Success(c, "Loan", fiber.Map{
		"loan": loan,
	})
}
