package services

import (
	"context"
	"time"

	"biblio-circulate/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ReportService aggregates loan history for the dashboard. Read-only:
// nothing in this service mutates a row.
type ReportService struct {
	db *gorm.DB
}

// NewReportService creates a new report service
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// StatusCount is one slice of the loan status breakdown
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TopTitle is one entry of the most-borrowed ranking
type TopTitle struct {
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	Loans     int64  `json:"loans"`
}

// Dashboard is the aggregate reporting payload
type Dashboard struct {
	TotalBooks     int64          `json:"total_books"`
	TotalUsers     int64          `json:"total_users"`
	LoansByStatus  []StatusCount  `json:"loans_by_status"`
	OverdueLoans   int64          `json:"overdue_loans"`
	FinesCollected int64          `json:"fines_collected"`
	TopTitles      []TopTitle     `json:"top_titles"`
	RecentLoans    []*models.Loan `json:"recent_loans"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// GetDashboard builds the reporting aggregate
func (s *ReportService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	now := time.Now()
	dash := &Dashboard{GeneratedAt: now}

	if err := s.db.WithContext(ctx).Model(&models.Book{}).Count(&dash.TotalBooks).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&dash.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Loan{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&dash.LoansByStatus).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ? AND due_date < ?", "BORROWED", now).
		Count(&dash.OverdueLoans).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", "COMPLETED").
		Select("COALESCE(SUM(amount), 0)").
		Scan(&dash.FinesCollected).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Loan{}).
		Select("book_id, book_title, COUNT(*) as loans").
		Where("status IN ?", []string{"BORROWED", "RETURNED"}).
		Group("book_id, book_title").
		Order("loans DESC").
		Limit(5).
		Scan(&dash.TopTitles).Error; err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(10).
		Find(&dash.RecentLoans).Error; err != nil {
		return nil, err
	}

	return dash, nil
}
