package models

import "time"

// Tên role cố định của hệ thống
const (
	RoleUser       = "user"        // Người dùng thường (chỉ đọc)
	RoleAdmin      = "admin"       // Quản trị nội dung
	RoleSuperAdmin = "super_admin" // Quản trị hệ thống
)

// Tên permission cố định
const (
	PermRead   = "READ"
	PermCreate = "CREATE"
	PermUpdate = "UPDATE"
	PermDelete = "DELETE"
)

type Role struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Permissions []Permission `gorm:"many2many:role_permissions;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

type Permission struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// RolePermissionTable là bảng phân quyền cố định của hệ thống,
// không cho phép cấu hình qua API.
var RolePermissionTable = map[string][]string{
	RoleUser:       {PermRead},
	RoleAdmin:      {PermRead, PermCreate, PermUpdate},
	RoleSuperAdmin: {PermRead, PermCreate, PermUpdate, PermDelete},
}
