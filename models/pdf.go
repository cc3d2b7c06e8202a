package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PDF struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	FileName   string     `gorm:"size:255;not null" json:"file_name"` // tên object trong content store
	FileSize   int64      `json:"file_size"`                          // bytes
	PageCount  int        `json:"page_count"`
	UploadedBy *uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	Uploader   *User      `gorm:"foreignKey:UploadedBy;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// PDFResponse là dữ liệu trả về cho client, kèm thông tin người upload
type PDFResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	FileSize     int64     `json:"file_size"`
	PageCount    int       `json:"page_count"`
	UploaderName string    `json:"uploader_name"`
	UploaderRole string    `json:"uploader_role"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToResponse gắn tên và role người upload để hiển thị.
// Nếu user đã bị xóa thì dùng nhãn mặc định.
func (p *PDF) ToResponse() PDFResponse {
	name := "Không rõ"
	role := strings.ToUpper(RoleUser)
	if p.Uploader != nil {
		name = p.Uploader.Username
		role = strings.ToUpper(p.Uploader.PrimaryRole())
	}
	return PDFResponse{
		ID:           p.ID,
		Title:        p.Title,
		FileSize:     p.FileSize,
		PageCount:    p.PageCount,
		UploaderName: name,
		UploaderRole: role,
		CreatedAt:    p.CreatedAt,
	}
}
