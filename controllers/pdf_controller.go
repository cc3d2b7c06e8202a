package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
	"github.com/vnkhanh/rbac-pdf-backend/utils"
	"github.com/vnkhanh/rbac-pdf-backend/ws"
)

// POST /api/pdf/upload (yêu cầu CREATE)
func UploadPDF(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userIDStr := c.GetString("user_id")

	// Convert user_id từ string -> uuid.UUID
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id không hợp lệ"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tiêu đề bắt buộc"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không có file đính kèm"})
		return
	}
	if file.Size > 20*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File vượt quá 20MB"})
		return
	}
	if ext := strings.ToLower(filepath.Ext(file.Filename)); ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chỉ chấp nhận file PDF"})
		return
	}

	// File phải là PDF đọc được, không chỉ đúng phần mở rộng
	pageCount, err := utils.ValidatePDF(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pdfID := uuid.New()
	objectName := fmt.Sprintf("%s_%s.pdf", pdfID.String(), slug.Make(title))

	// Ghi file trước, metadata sau. Hai bước không atomic: crash giữa chừng
	// để lại file mồ côi, cleanup job sẽ thu dọn.
	if err := utils.SaveFile(file, objectName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi lưu file", "details": err.Error()})
		return
	}

	pdf := models.PDF{
		ID:         pdfID,
		Title:      title,
		FileName:   objectName,
		FileSize:   file.Size,
		PageCount:  pageCount,
		UploadedBy: &uid,
	}
	if err := db.Create(&pdf).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không lưu được tài liệu", "details": err.Error()})
		return
	}

	ws.BroadcastPDFListChanged()

	// Load lại kèm uploader để trả JSON về cho client
	db.Preload("Uploader.Roles").First(&pdf, "id = ?", pdf.ID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Tải lên thành công",
		"pdf":     pdf.ToResponse(),
	})
}

// GET /api/pdf/ (yêu cầu READ)
func ListPDFs(c *gin.Context) {
	query := config.DB.Model(&models.PDF{}).Preload("Uploader.Roles")

	// tìm kiếm theo tiêu đề
	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var pdfs []models.PDF
	if err := query.Order("created_at DESC").Find(&pdfs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách tài liệu"})
		return
	}

	result := make([]models.PDFResponse, 0, len(pdfs))
	for i := range pdfs {
		result = append(result, pdfs[i].ToResponse())
	}
	c.JSON(http.StatusOK, result)
}

// GET /api/pdf/:id (yêu cầu READ)
func GetPDF(c *gin.Context) {
	id := c.Param("id")
	var pdf models.PDF
	if err := config.DB.Preload("Uploader.Roles").First(&pdf, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}
	c.JSON(http.StatusOK, pdf.ToResponse())
}

// PUT /api/pdf/:id (yêu cầu UPDATE) - chỉ sửa tiêu đề, nhận form field
// giống handler upload
func UpdatePDF(c *gin.Context) {
	id := c.Param("id")
	pdfID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tiêu đề bắt buộc"})
		return
	}

	var pdf models.PDF
	if err := config.DB.First(&pdf, "id = ?", pdfID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	if err := config.DB.Model(&pdf).Update("title", title).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật tài liệu"})
		return
	}

	ws.BroadcastPDFListChanged()

	config.DB.Preload("Uploader.Roles").First(&pdf, "id = ?", pdfID)
	c.JSON(http.StatusOK, pdf.ToResponse())
}

// DELETE /api/pdf/:id (yêu cầu DELETE - theo bảng phân quyền chỉ super_admin có)
func DeletePDF(c *gin.Context) {
	id := c.Param("id")
	pdfID, err := uuid.Parse(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID không hợp lệ"})
		return
	}

	var pdf models.PDF
	if err := config.DB.First(&pdf, "id = ?", pdfID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	if err := config.DB.Delete(&models.PDF{}, "id = ?", pdfID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa tài liệu"})
		return
	}

	ws.BroadcastPDFListChanged()

	// Xóa metadata xong mới xóa file; nếu xóa file lỗi thì cleanup job xử lý sau
	if err := utils.DeleteFile(pdf.FileName); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Xóa thành công", "warning": "Chưa xóa được file, sẽ dọn sau"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa thành công"})
}

// GET /api/pdf/:id/download (yêu cầu READ)
func DownloadPDF(c *gin.Context) {
	id := c.Param("id")
	var pdf models.PDF
	if err := config.DB.First(&pdf, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy tài liệu"})
		return
	}

	data, err := utils.ReadFile(pdf.FileName)
	if err != nil {
		// Metadata còn nhưng file đã mất: báo lỗi rõ ràng, không im lặng bỏ qua
		c.JSON(http.StatusNotFound, gin.H{"error": "File không còn trong content store"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName))
	c.Data(http.StatusOK, "application/pdf", data)
}
