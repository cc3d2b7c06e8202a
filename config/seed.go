package config

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vnkhanh/rbac-pdf-backend/models"
)

// SeedRBAC tạo roles, permissions, bảng phân quyền cố định và các tài khoản demo.
// Chạy lại nhiều lần không tạo bản ghi trùng.
func SeedRBAC(db *gorm.DB) error {
	roleDescs := map[string]string{
		models.RoleUser:       "Người dùng thường",
		models.RoleAdmin:      "Quản trị nội dung",
		models.RoleSuperAdmin: "Quản trị hệ thống",
	}
	permDescs := map[string]string{
		models.PermRead:   "Xem và tải PDF",
		models.PermCreate: "Tải lên PDF",
		models.PermUpdate: "Sửa tiêu đề PDF",
		models.PermDelete: "Xóa PDF",
	}

	roles := map[string]*models.Role{}
	for name, desc := range roleDescs {
		role := &models.Role{}
		if err := db.Where("name = ?", name).First(role).Error; err != nil {
			role = &models.Role{Name: name, Description: desc}
			if err := db.Create(role).Error; err != nil {
				return err
			}
		}
		roles[name] = role
	}

	perms := map[string]*models.Permission{}
	for name, desc := range permDescs {
		perm := &models.Permission{}
		if err := db.Where("name = ?", name).First(perm).Error; err != nil {
			perm = &models.Permission{Name: name, Description: desc}
			if err := db.Create(perm).Error; err != nil {
				return err
			}
		}
		perms[name] = perm
	}

	// Gán permission cho role theo bảng cố định
	for roleName, permNames := range models.RolePermissionTable {
		role := roles[roleName]
		assigned := make([]models.Permission, 0, len(permNames))
		for _, pn := range permNames {
			assigned = append(assigned, *perms[pn])
		}
		if err := db.Model(role).Association("Permissions").Replace(assigned); err != nil {
			return err
		}
	}

	// Tài khoản demo cho môi trường dev
	demoUsers := []struct {
		Username string
		Email    string
		Password string
		Role     string
	}{
		{"user1", "user1@example.com", "user123", models.RoleUser},
		{"admin1", "admin1@example.com", "admin123", models.RoleAdmin},
		{"superadmin1", "superadmin1@example.com", "super123", models.RoleSuperAdmin},
	}

	for _, du := range demoUsers {
		var existing models.User
		if err := db.Where("username = ?", du.Username).First(&existing).Error; err == nil {
			continue
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(du.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user := models.User{
			ID:       uuid.New(),
			Username: du.Username,
			Email:    du.Email,
			Password: string(hashed),
			Roles:    []models.Role{*roles[du.Role]},
		}
		if err := db.Create(&user).Error; err != nil {
			return err
		}
	}

	log.Println("Seed RBAC hoàn tất: roles, permissions và demo users đã sẵn sàng")
	return nil
}
