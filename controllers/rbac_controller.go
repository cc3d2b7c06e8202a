package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
)

// Roles và permissions là dữ liệu cố định, chỉ cho xem.
// Không có endpoint tạo/sửa: bảng phân quyền chỉ đổi được bằng cách sửa code.

// GET /roles
func ListRoles(c *gin.Context) {
	var roles []models.Role
	if err := config.DB.Order("id").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách role"})
		return
	}
	c.JSON(http.StatusOK, roles)
}

// GET /permissions
func ListPermissions(c *gin.Context) {
	var perms []models.Permission
	if err := config.DB.Order("id").Find(&perms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách permission"})
		return
	}
	c.JSON(http.StatusOK, perms)
}
