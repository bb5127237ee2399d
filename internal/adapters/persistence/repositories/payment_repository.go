package repositories

import (
	"context"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository handles payment data access
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment row
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByTxRef gets a payment by transaction reference
func (r *paymentRepository) GetByTxRef(ctx context.Context, txRef string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MarkCompleted transitions PENDING → COMPLETED. A replayed callback for the
// same tx_ref matches zero rows and reports false, making verification a
// no-op under at-least-once delivery.
func (r *paymentRepository) MarkCompleted(ctx context.Context, txRef string, completedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, "PENDING").
		Updates(map[string]interface{}{
			"status":       "COMPLETED",
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed transitions PENDING → FAILED
func (r *paymentRepository) MarkFailed(ctx context.Context, txRef string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("tx_ref = ? AND status = ?", txRef, "PENDING").
		Update("status", "FAILED")
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByUser lists a user's payments, newest first
func (r *paymentRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	r.db.WithContext(ctx).Model(&models.Payment{}).Where("user_id = ?", userID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payments).Error

	return payments, total, err
}

// SumCompleted sums the amounts of all completed payments
func (r *paymentRepository) SumCompleted(ctx context.Context) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", "COMPLETED").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// notificationRepository handles in-app notification records
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create creates a notification record
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ExistsForSweep checks whether a loan already got a record for a sweep day
func (r *notificationRepository) ExistsForSweep(ctx context.Context, loanID uint, sweepDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("loan_id = ? AND sweep_date = ?", loanID, sweepDate).
		Count(&count).Error
	return count > 0, err
}

// ListByUser lists a user's notification records, newest first
func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var notes []*models.Notification
	var total int64

	r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notes).Error

	return notes, total, err
}
