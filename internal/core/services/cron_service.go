package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/adapters/persistence/repositories"
	"biblio-circulate/internal/core/domain"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs the daily overdue sweep. It writes in-app notification
// records only; nothing here delivers messages or mutates loan state.
type CronService struct {
	cron     *cron.Cron
	loanRepo repositories.LoanRepository
	noteRepo repositories.NotificationRepository
	fine     FinePolicy
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB, fine FinePolicy) *CronService {
	return &CronService{
		cron:     cron.New(),
		loanRepo: repositories.NewLoanRepository(db),
		noteRepo: repositories.NewNotificationRepository(db),
		fine:     fine,
	}
}

// Start schedules the overdue sweep (08:30 daily)
func (s *CronService) Start() {
	_, err := s.cron.AddFunc("30 8 * * *", func() {
		if err := s.SweepOverdue(context.Background(), time.Now()); err != nil {
			log.Printf("❌ Overdue sweep failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("❌ Failed to schedule overdue sweep: %v", err)
		return
	}

	s.cron.Start()
	log.Println("⏰ Cron service started (overdue sweep daily at 08:30)")
}

// Stop stops the cron scheduler
func (s *CronService) Stop() {
	s.cron.Stop()
	log.Println("⏰ Cron service stopped")
}

// SweepOverdue records one notification per overdue loan per day
func (s *CronService) SweepOverdue(ctx context.Context, now time.Time) error {
	sweepDate := now.Truncate(24 * time.Hour)

	loans, err := s.loanRepo.ListOverdue(ctx, now)
	if err != nil {
		return err
	}

	created := 0
	for _, loan := range loans {
		exists, err := s.noteRepo.ExistsForSweep(ctx, loan.ID, sweepDate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		days := DaysLate(*loan.DueDate, now)
		fine := s.fine.Fine(*loan.DueDate, domain.Role(loan.UserType), now)

		note := &models.Notification{
			UserID:    loan.UserID,
			LoanID:    loan.ID,
			Message:   fmt.Sprintf("\"%s\" is %d day(s) overdue. Current fine: %d", loan.BookTitle, days, fine),
			SweepDate: sweepDate,
		}
		if err := s.noteRepo.Create(ctx, note); err != nil {
			return err
		}
		created++
	}

	log.Printf("✅ Overdue sweep done: %d overdue loans, %d new notifications", len(loans), created)
	return nil
}

// ListByUser lists a user's overdue notices
func (s *CronService) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	return s.noteRepo.ListByUser(ctx, userID, offset, limit)
}
