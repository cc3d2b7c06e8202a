package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/rbac-pdf-backend/config"
)

// RequirePermission là cổng phân quyền duy nhất của backend: resolve tập
// permission hiệu lực của user qua user_roles -> role_permissions và kiểm tra
// permission yêu cầu. Frontend ẩn nút chỉ để hiển thị, không có giá trị bảo mật.
// Không có bypass theo role: super_admin có đủ quyền là nhờ bảng phân quyền.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
			c.Abort()
			return
		}

		var count int64
		err := config.DB.Table("permissions").
			Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
			Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
			Where("user_roles.user_id = ? AND permissions.name = ?", userID, permission).
			Count(&count).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi kiểm tra quyền"})
			c.Abort()
			return
		}

		if count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền thực hiện thao tác này"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRoles cho phép chỉ định nhiều vai trò được quyền truy cập.
// Role lấy từ DB chứ không tin role trong token (token có thể cũ sau khi đổi role).
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Không xác định được người dùng"})
			c.Abort()
			return
		}

		var roleNames []string
		err := config.DB.Table("roles").
			Joins("JOIN user_roles ON user_roles.role_id = roles.id").
			Where("user_roles.user_id = ?", userID).
			Pluck("roles.name", &roleNames).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi xử lý vai trò người dùng"})
			c.Abort()
			return
		}

		for _, role := range roleNames {
			for _, allowed := range allowedRoles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}

		// Nếu không khớp role nào
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Bạn không có quyền truy cập tài nguyên này",
		})
		c.Abort()
	}
}
