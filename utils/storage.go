package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// Content store cho file PDF. Driver chọn qua env STORAGE_DRIVER:
//   - "local" (mặc định): lưu trên đĩa trong UPLOAD_DIR
//   - "supabase": lưu trên Supabase Storage, bucket "uploads", path pdfs/<objectName>

const supabaseBucket = "uploads"

func StorageDriver() string {
	if d := os.Getenv("STORAGE_DRIVER"); d == "supabase" {
		return "supabase"
	}
	return "local"
}

func UploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return filepath.Join("uploads", "pdfs")
}

// SaveFile lưu file upload vào content store dưới tên objectName
func SaveFile(fileHeader *multipart.FileHeader, objectName string) error {
	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	if StorageDriver() == "supabase" {
		return saveToSupabase(src, fileHeader, objectName)
	}
	return saveToDisk(src, objectName)
}

// ReadFile đọc toàn bộ nội dung file từ content store
func ReadFile(objectName string) ([]byte, error) {
	if StorageDriver() == "supabase" {
		supabaseURL := os.Getenv("SUPABASE_URL")
		supabaseKey := os.Getenv("SUPABASE_KEY")
		storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)
		return storageClient.DownloadFile(supabaseBucket, "pdfs/"+objectName)
	}

	path := filepath.Join(UploadDir(), objectName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileMissing
		}
		return nil, err
	}
	return data, nil
}

// ErrFileMissing: metadata còn nhưng file đã mất khỏi content store
var ErrFileMissing = errors.New("file không tồn tại trong content store")

// DeleteFile xóa file khỏi content store. File không tồn tại không coi là lỗi.
func DeleteFile(objectName string) error {
	if StorageDriver() == "supabase" {
		return deleteFromSupabase(objectName)
	}

	path := filepath.Join(UploadDir(), objectName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func saveToDisk(src multipart.File, objectName string) error {
	dir := UploadDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	dst, err := os.Create(filepath.Join(dir, objectName))
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func saveToSupabase(src multipart.File, fileHeader *multipart.FileHeader, objectName string) error {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")

	storageClient := storage.NewClient(supabaseURL+"/storage/v1", supabaseKey, nil)

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	options := storage.FileOptions{
		ContentType: &contentType,
	}

	_, err := storageClient.UploadFile(supabaseBucket, "pdfs/"+objectName, &buf, options)
	return err
}

// deleteFromSupabase gọi thẳng API Storage để xóa object.
// Yêu cầu SUPABASE_URL và SUPABASE_KEY (key có quyền xóa) đã set trong ENV.
func deleteFromSupabase(objectName string) error {
	supabaseURL := os.Getenv("SUPABASE_URL")
	supabaseKey := os.Getenv("SUPABASE_KEY")
	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("SUPABASE_URL hoặc SUPABASE_KEY chưa cấu hình")
	}

	deleteURL := fmt.Sprintf("%s/storage/v1/object/%s/pdfs/%s",
		strings.TrimRight(supabaseURL, "/"), supabaseBucket, objectName)

	req, err := http.NewRequest("DELETE", deleteURL, nil)
	if err != nil {
		return err
	}
	// Supabase expects Authorization: Bearer <SERVICE_KEY> and apikey header
	req.Header.Set("Authorization", "Bearer "+supabaseKey)
	req.Header.Set("apikey", supabaseKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	// Supabase trả 200 hoặc 204 khi xóa thành công
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("xóa file Supabase thất bại: status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
