package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/manara-platform/manara-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TeacherProfile{},
		&models.Subject{},
		&models.TeacherAssignment{},
		&models.Subscription{},
		&models.TeacherChoice{},
		&models.Notification{},
		&models.MaterialRecord{},
	))
	return db
}
