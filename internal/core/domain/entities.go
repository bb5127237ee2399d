package domain

// Role represents user role in the system
type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleTeacher   Role = "TEACHER"
	RoleLibrarian Role = "LIBRARIAN"
	RoleAdmin     Role = "ADMIN"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "PENDING"
	LoanStatusBorrowed LoanStatus = "BORROWED"
	LoanStatusReturned LoanStatus = "RETURNED"
	LoanStatusRejected LoanStatus = "REJECTED"
)

// PaymentStatus represents the state of a settlement attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// PaymentMethod represents how a fine is settled
type PaymentMethod string

const (
	// PaymentMethodWallet settles instantly against a mobile-money number
	PaymentMethodWallet PaymentMethod = "WALLET"
	// PaymentMethodGateway redirects to an external provider; settlement
	// lands later through the verify callback
	PaymentMethodGateway PaymentMethod = "GATEWAY"
)
