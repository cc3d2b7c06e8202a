package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
	"github.com/vnkhanh/rbac-pdf-backend/utils"
	"github.com/vnkhanh/rbac-pdf-backend/ws"
)

// GET /admin/users (chỉ super_admin)
func AdminListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Preload("Roles").Order("created_at").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách người dùng"})
		return
	}

	result := make([]gin.H, 0, len(users))
	for i := range users {
		result = append(result, gin.H{
			"id":       users[i].ID,
			"username": users[i].Username,
			"email":    users[i].Email,
			"roles":    users[i].RoleNames(),
		})
	}
	c.JSON(http.StatusOK, result)
}

// POST /admin/users/:id/set_role?role_name=... (chỉ super_admin)
// Đổi role theo kiểu last-write-wins: thay toàn bộ user_roles bằng role mới.
func AdminSetUserRole(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	roleName := c.Query("role_name")
	if roleName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu role_name"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	var role models.Role
	if err := db.Where("name = ?", roleName).First(&role).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Role không tồn tại"})
		return
	}

	if err := db.Model(&user).Association("Roles").Replace([]models.Role{role}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật role"})
		return
	}

	ws.BroadcastUserListChanged()

	// Gửi email thông báo (không chặn luồng)
	go func(email, username, roleName string) {
		subject := "Vai trò tài khoản của bạn đã thay đổi"
		body := `
		<h3>Xin chào ` + username + `,</h3>
		<p>Vai trò tài khoản của bạn trên hệ thống quản lý PDF đã được đổi thành <b>` + roleName + `</b>.</p>
		<p>Đăng nhập lại để nhận quyền mới.</p>
		<hr>
		<p><i>Đây là email tự động, vui lòng không trả lời.</i></p>
		`
		if err := utils.SendEmail(email, subject, body); err != nil {
			// In log lỗi, không ảnh hưởng đến API chính
			println("Lỗi gửi email:", err.Error())
		}
	}(user.Email, user.Username, role.Name)

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã đổi role của " + user.Username + " thành " + role.Name,
	})
}

// DELETE /admin/users/:id (chỉ super_admin)
// Không xóa PDF user đã upload: uploaded_by sẽ thành NULL và
// hiển thị bằng nhãn mặc định.
func AdminDeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	// Không cho tự xóa tài khoản của chính mình
	if id == c.GetString("user_id") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể tự xóa tài khoản của chính mình"})
		return
	}

	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Người dùng không tồn tại"})
		return
	}

	// Gỡ PDF khỏi user trước (tránh dangling FK), rồi xóa role mapping và user
	if err := db.Model(&models.PDF{}).Where("uploaded_by = ?", user.ID).Update("uploaded_by", nil).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gỡ tài liệu khỏi người dùng"})
		return
	}
	if err := db.Model(&user).Association("Roles").Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể gỡ role của người dùng"})
		return
	}
	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa người dùng"})
		return
	}

	ws.BroadcastUserListChanged()
	ws.BroadcastPDFListChanged()

	c.JSON(http.StatusOK, gin.H{"message": "Đã xóa người dùng " + user.Username})
}
