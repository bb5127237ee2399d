package config

import (
	"log"

	"biblio-circulate/internal/adapters/persistence/models"
	"biblio-circulate/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding. Runs once at startup so that every
// collection exists before the first write path touches it.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedLibrarian(); err != nil {
		log.Printf("⚠️ Librarian seeder skipped: %v", err)
	}
	if err := s.seedBooks(); err != nil {
		log.Printf("⚠️ Book seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@library.example.org",
		Password: hashedPassword,
		FullName: "System Administrator",
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Println("🔑 Default admin user created (username: admin)")
	return nil
}

// seedLibrarian seeds a default librarian account for development
func (s *Seeder) seedLibrarian() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "LIBRARIAN").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("librarian123")
	if err != nil {
		return err
	}

	librarian := &models.User{
		Username: "librarian",
		Email:    "librarian@library.example.org",
		Password: hashedPassword,
		FullName: "Front Desk Librarian",
		Role:     "LIBRARIAN",
		IsActive: true,
	}

	return s.db.Create(librarian).Error
}

// seedBooks seeds a starter catalog when the books table is empty
func (s *Seeder) seedBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil
	}

	books := []models.Book{
		{Title: "The Go Programming Language", Author: "Donovan & Kernighan", ISBN: "9780134190440", Category: "Programming", TotalCopies: 3, Copies: 3},
		{Title: "Clean Architecture", Author: "Robert C. Martin", ISBN: "9780134494166", Category: "Software", TotalCopies: 2, Copies: 2},
		{Title: "Introduction to Algorithms", Author: "Cormen et al.", ISBN: "9780262033848", Category: "Computer Science", TotalCopies: 1, Copies: 1},
	}

	if err := s.db.Create(&books).Error; err != nil {
		return err
	}

	log.Printf("📚 Seeded %d starter books", len(books))
	return nil
}
