// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"

	"gighub/internal/database"
	"gighub/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a private in-memory SQLite database with the full schema.
// It holds a single connection, so concurrent callers are serialized the way
// row locks would serialize them on postgres.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given external id and a derived email.
func CreateUser(t testing.TB, db *gorm.DB, externalID string) *models.User {
	t.Helper()
	u := &models.User{
		ExternalID:  externalID,
		Email:       externalID + "@example.com",
		DisplayName: "User " + externalID,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", externalID, err)
	}
	return u
}

// CreatePost inserts an ACTIVE post owned by ownerID.
func CreatePost(t testing.TB, db *gorm.DB, ownerID, title string, tags ...string) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:      ownerID,
		Title:       title,
		Description: "Description of " + title,
		Location:    "Hanoi",
		Tags:        tags,
		BudgetFrom:  100,
		BudgetTo:    200,
		JobType:     models.JobTypeDevelopWebsite,
		WorkType:    models.WorkTypePartTime,
		WorkingForm: models.WorkingFormRemote,
		PayForm:     models.PayFormMonth,
		ServiceType: models.ServiceTypeBuildMobileApp,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return p
}
