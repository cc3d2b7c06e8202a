package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
)

func setupCleanupEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("UPLOAD_DIR", dir)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.PDF{},
	))
	config.DB = db

	return dir
}

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestCleanupOrphanFiles(t *testing.T) {
	dir := setupCleanupEnv(t)

	// File mồ côi cũ: phải bị xóa
	writeAgedFile(t, dir, "moicoi.pdf", 2*time.Hour)

	// File cũ nhưng có bản ghi pdfs: phải giữ lại
	writeAgedFile(t, dir, "codata.pdf", 2*time.Hour)
	require.NoError(t, config.DB.Create(&models.PDF{
		ID:       uuid.New(),
		Title:    "Tài liệu",
		FileName: "codata.pdf",
	}).Error)

	// File mồ côi nhưng mới (upload có thể đang chạy): phải giữ lại
	writeAgedFile(t, dir, "moi.pdf", time.Minute)

	CleanupOrphanFiles()

	_, err := os.Stat(filepath.Join(dir, "moicoi.pdf"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dir, "codata.pdf"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "moi.pdf"))
	require.NoError(t, err)
}

func TestCleanupSkipsNonLocalDriver(t *testing.T) {
	dir := setupCleanupEnv(t)
	t.Setenv("STORAGE_DRIVER", "supabase")

	writeAgedFile(t, dir, "moicoi.pdf", 2*time.Hour)

	CleanupOrphanFiles()

	_, err := os.Stat(filepath.Join(dir, "moicoi.pdf"))
	require.NoError(t, err)
}
