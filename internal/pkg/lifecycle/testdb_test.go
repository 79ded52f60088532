package lifecycle

import (
	"fmt"
	"testing"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mkravets/ArtPeak/app/models"
	"github.com/mkravets/ArtPeak/internal/pkg/env"
)

// resolveTestDB connects to the test database, migrates the schema and
// empties the tables. Skips the test when no MySQL endpoint is reachable,
// like the Redis-backed queue tests do.
func resolveTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		env.GetEnv("TEST_DB_USER", "root"),
		env.GetEnv("TEST_DB_PASSWORD", ""),
		env.GetEnv("TEST_DB_HOST", "127.0.0.1"),
		env.GetEnv("TEST_DB_PORT", "3306"),
		env.GetEnv("TEST_DB_NAME", "artpeak_test"),
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Skipf("Skipping database-dependent test: no reachable MySQL endpoint (%v)", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Artwork{},
		&models.Tag{},
		&models.ArtworkTag{},
		&models.Reaction{},
		&models.Comment{},
		&models.PendingArtwork{},
		&models.DeletedArtwork{},
		&models.UserBlock{},
		&models.Appeal{},
		&models.Complaint{},
		&models.ViewedReaction{},
		&models.ActiveMessage{},
		&models.NotificationMessage{},
		&models.SessionState{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	// Children before parents so foreign keys never get in the way.
	for _, table := range []interface{}{
		&models.SessionState{},
		&models.NotificationMessage{},
		&models.ActiveMessage{},
		&models.ViewedReaction{},
		&models.Complaint{},
		&models.Appeal{},
		&models.UserBlock{},
		&models.DeletedArtwork{},
		&models.PendingArtwork{},
		&models.Comment{},
		&models.Reaction{},
		&models.ArtworkTag{},
		&models.Tag{},
		&models.Artwork{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			t.Fatalf("failed to reset test table: %v", err)
		}
	}
	return db
}
