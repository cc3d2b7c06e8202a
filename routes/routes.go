package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/rbac-pdf-backend/controllers"
	"github.com/vnkhanh/rbac-pdf-backend/middleware"
	"github.com/vnkhanh/rbac-pdf-backend/models"
	"github.com/vnkhanh/rbac-pdf-backend/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	// Auth + user
	r.POST("/login", controllers.Login)
	r.POST("/login/google", controllers.GoogleLogin)
	r.POST("/users", controllers.Register)

	// Dữ liệu phân quyền cố định, chỉ đọc
	r.GET("/roles", middleware.AuthMiddleware(), controllers.ListRoles)
	r.GET("/permissions", middleware.AuthMiddleware(), controllers.ListPermissions)

	me := r.Group("/users/me")
	{
		me.Use(middleware.AuthMiddleware())
		me.GET("", controllers.Me)
		me.GET("/permissions", controllers.MyPermissions)
		me.POST("/password", controllers.ChangePassword)
	}

	// PDF CRUD: mỗi route gắn đúng permission theo bảng phân quyền
	pdf := r.Group("/api/pdf")
	{
		pdf.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db))
		pdf.GET("/", middleware.RequirePermission(models.PermRead), controllers.ListPDFs)
		pdf.POST("/upload", middleware.RequirePermission(models.PermCreate), controllers.UploadPDF)
		pdf.GET("/:id", middleware.RequirePermission(models.PermRead), controllers.GetPDF)
		pdf.PUT("/:id", middleware.RequirePermission(models.PermUpdate), controllers.UpdatePDF)
		pdf.DELETE("/:id", middleware.RequirePermission(models.PermDelete), controllers.DeletePDF)
		pdf.GET("/:id/download", middleware.RequirePermission(models.PermRead), controllers.DownloadPDF)
	}

	// Quản lý người dùng: chỉ super_admin
	admin := r.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.DBMiddleware(db), middleware.RequireRoles(models.RoleSuperAdmin))
		admin.GET("/users", controllers.AdminListUsers)
		admin.POST("/users/:id/set_role", controllers.AdminSetUserRole)
		admin.DELETE("/users/:id", controllers.AdminDeleteUser)
	}

	r.GET("/ws/status", ws.HandleStatusWebSocket)

	return r
}
