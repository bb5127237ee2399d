package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users
// ============================================================

// User represents users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Role      string         `gorm:"size:20;default:'STUDENT'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ============================================================
// Catalog
// ============================================================

// Book represents books table. TotalCopies is the configured stock set by
// catalog editing; Copies is the available counter owned by the loan engine.
type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null;index" json:"title"`
	Author      string         `gorm:"size:100" json:"author"`
	ISBN        string         `gorm:"size:20;uniqueIndex" json:"isbn"`
	Category    string         `gorm:"size:50" json:"category"`
	TotalCopies int            `gorm:"not null;default:0" json:"total_copies"`
	Copies      int            `gorm:"not null;default:0" json:"copies"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ============================================================
// Loans
// ============================================================

// Loan represents loans table, one row per borrow lifecycle instance.
//
// UserName and BookTitle are denormalized at creation time and never re-synced
// (a loan shows the title as it was at loan time). UserType snapshots the
// borrower role so a later role change never alters an in-flight loan's grace
// period.
//
// ActiveKey holds the user ID while Status is PENDING or BORROWED and is NULL
// otherwise; the unique index on it is what enforces "at most one active loan
// per user" under concurrent inserts.
type Loan struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	UserName        string     `gorm:"size:100;not null" json:"user_name"`
	UserType        string     `gorm:"size:20;not null" json:"user_type"`
	BookID          uint       `gorm:"index;not null" json:"book_id"`
	BookTitle       string     `gorm:"size:200;not null" json:"book_title"`
	Status          string     `gorm:"size:20;not null;index" json:"status"`
	ActiveKey       *string    `gorm:"uniqueIndex;size:32" json:"-"`
	RequestedAt     time.Time  `gorm:"not null" json:"requested_at"`
	ApprovedBy      *uint      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	BorrowedAt      *time.Time `json:"borrowed_at,omitempty"`
	DueDate         *time.Time `gorm:"index" json:"due_date,omitempty"`
	ReturnedAt      *time.Time `json:"returned_at,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason string     `gorm:"size:255" json:"rejection_reason,omitempty"`
	Fine            int64      `gorm:"not null;default:0" json:"fine"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// ============================================================
// Payments
// ============================================================

// Payment represents payments table, one row per settlement attempt
type Payment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	TxRef       string     `gorm:"uniqueIndex;size:64;not null" json:"tx_ref"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	UserName    string     `gorm:"size:100;not null" json:"user_name"`
	LoanID      uint       `gorm:"index;not null" json:"loan_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Method      string     `gorm:"size:20;not null" json:"method"`
	PhoneNumber string     `gorm:"size:20" json:"phone_number,omitempty"`
	CheckoutURL string     `gorm:"size:512" json:"checkout_url,omitempty"`
	Status      string     `gorm:"size:20;not null;index" json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// ============================================================
// Notifications (in-app records only, no delivery)
// ============================================================

// Notification represents notifications table, written by the overdue sweep
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	LoanID    uint      `gorm:"index;not null" json:"loan_id"`
	Message   string    `gorm:"size:255;not null" json:"message"`
	SweepDate time.Time `gorm:"index;not null" json:"sweep_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Book{},
		&Loan{},
		&Payment{},
		&Notification{},
	)
}
