package handlers

import (
	"errors"

	"biblio-circulate/internal/core/domain"
	"biblio-circulate/internal/core/services"
	"biblio-circulate/internal/pkg/pagination"
	"biblio-circulate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles fine settlement endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Quote returns the fine currently owed on the borrower's active loan
// @Summary Quote fine
// @Description Compute the fine owed on the active loan right now
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/quote [get]
func (h *PaymentHandler) Quote(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	quote, err := h.paymentService.Quote(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNoActiveLoan) {
			return response.NotFound(c, "No borrowed loan to quote")
		}
		return response.InternalServerError(c, "Failed to quote fine")
	}

	return response.Success(c, "Fine quote", quote)
}

// SettleRequest represents a settlement request
type SettleRequest struct {
	LoanID      uint   `json:"loan_id"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// Settle pays the fine on a borrowed loan
// @Summary Settle fine
// @Description Pay the fine via wallet (instant) or gateway checkout
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SettleRequest true "Settlement data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /payments/settle [post]
func (h *PaymentHandler) Settle(c *fiber.Ctx) error {
	var req SettleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.LoanID == 0 {
		return response.BadRequest(c, "Loan ID is required")
	}
	if req.Amount <= 0 {
		return response.BadRequest(c, "Amount must be positive")
	}

	method := domain.PaymentMethod(req.Method)
	if method != domain.PaymentMethodWallet && method != domain.PaymentMethodGateway {
		return response.BadRequest(c, "Method must be WALLET or GATEWAY")
	}

	userID, _ := c.Locals("userID").(uint)

	out, err := h.paymentService.Settle(c.Context(), userID, &services.SettleInput{
		LoanID:      req.LoanID,
		Amount:      req.Amount,
		Method:      method,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You can only settle your own loan")
		case errors.Is(err, domain.ErrInvalidStatus):
			return response.Conflict(c, "Loan is not borrowed")
		case errors.Is(err, domain.ErrNothingDue):
			return response.BadRequest(c, "Nothing is due on this loan")
		case errors.Is(err, domain.ErrStaleQuote):
			return response.Conflict(c, "Quoted amount is no longer current, request a new quote")
		case errors.Is(err, domain.ErrInvalidPhone):
			return response.BadRequest(c, "Invalid wallet phone number")
		default:
			return response.InternalServerError(c, "Failed to settle fine")
		}
	}

	return response.Success(c, "Settlement processed", out)
}

// Verify handles the payment provider callback
// @Summary Verify settlement
// @Description Provider callback; applies the settlement exactly once
// @Tags Payments
// @Produce json
// @Param tx_ref query string true "Transaction reference"
// @Param status query string true "Provider status"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/verify [get]
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		return response.BadRequest(c, "Transaction reference is required")
	}

	out, err := h.paymentService.Verify(c.Context(), txRef, c.Query("status"))
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return response.NotFound(c, "Payment not found")
		}
		return response.InternalServerError(c, "Failed to verify payment")
	}

	return response.Success(c, "Verification processed", out)
}

// MyPayments lists the authenticated user's settlement attempts
// @Summary My payments
// @Description List the authenticated user's payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /payments/me [get]
func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	params := pagination.GetParams(c)

	payments, total, err := h.paymentService.ListByUser(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list payments")
	}

	return response.Success(c, "Payments", pagination.NewResponse(payments, params, total))
}
