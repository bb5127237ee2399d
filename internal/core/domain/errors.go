package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Circulation errors
var (
	ErrLoanNotFound    = errors.New("loan not found")
	ErrBookNotFound    = errors.New("book not found")
	ErrConflict        = errors.New("loan guard violated")
	ErrActiveLoan      = errors.New("user already has an active loan")
	ErrOutOfStock      = errors.New("no copies available")
	ErrCooldown        = errors.New("a rejected request for this book is still cooling down")
	ErrInvalidStatus   = errors.New("invalid loan status for this transition")
	ErrFineOutstanding = errors.New("loan has an outstanding fine")
)

// Settlement errors
var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNoActiveLoan    = errors.New("no active loan to quote")
	ErrNothingDue      = errors.New("nothing due on the active loan")
	ErrInvalidPhone    = errors.New("phone number does not match wallet format")
	ErrStaleQuote      = errors.New("settlement amount no longer matches the computed fine")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")
)
