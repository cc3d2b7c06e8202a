package utils

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
)

// Ghi file và ghi metadata là 2 bước không atomic (file trước, DB sau).
// Crash giữa chừng để lại file mồ côi trong content store.
// CleanupOrphanFiles quét UPLOAD_DIR và xóa các file không có bản ghi pdfs
// tương ứng, chỉ xét file cũ hơn 1 giờ để tránh đụng upload đang chạy.
func CleanupOrphanFiles() {
	if StorageDriver() != "local" {
		return
	}

	db := config.DB
	dir := UploadDir()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Lỗi đọc thư mục upload: %v", err)
		}
		return
	}

	cutoff := time.Now().Add(-1 * time.Hour)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		var count int64
		if err := db.Model(&models.PDF{}).Where("file_name = ?", entry.Name()).Count(&count).Error; err != nil {
			log.Printf("Lỗi truy vấn pdfs khi cleanup: %v", err)
			continue
		}
		if count > 0 {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			log.Printf("Lỗi xóa file mồ côi %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	if removed > 0 {
		log.Printf("Đã xóa %d file mồ côi trong content store", removed)
	}
}

// StartCleanupJob chạy cleanup job định kỳ
func StartCleanupJob() {
	// Chạy cleanup ngay lần đầu khi khởi động
	log.Println("Đang chạy cleanup lần đầu...")
	CleanupOrphanFiles()

	// Thiết lập ticker để chạy mỗi 6 giờ
	ticker := time.NewTicker(6 * time.Hour)

	go func() {
		defer ticker.Stop()
		for range ticker.C {
			log.Println("Cleanup job được kích hoạt...")
			CleanupOrphanFiles()
		}
	}()

	log.Println("Cleanup job đã được khởi động (chạy mỗi 6 giờ)")
}
