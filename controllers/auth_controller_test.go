package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/rbac-pdf-backend/config"
	"github.com/vnkhanh/rbac-pdf-backend/models"
	"github.com/vnkhanh/rbac-pdf-backend/utils"
)

func TestLoginSuccess(t *testing.T) {
	r := setupTestApp(t)

	token := login(t, r, "admin1", "admin123")
	require.NotEmpty(t, token)
}

// Sai mật khẩu và username không tồn tại phải trả về response giống hệt nhau
func TestLoginIndistinguishable(t *testing.T) {
	r := setupTestApp(t)

	wrongPass := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"username": "user1",
		"password": "sai-mật-khẩu",
	})
	unknownUser := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"username": "không-tồn-tại",
		"password": "user123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.JSONEq(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	r := setupTestApp(t)

	res := doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "newpass123",
	})
	require.Equal(t, http.StatusCreated, res.Code)

	body := decodeBody(t, res)
	user, _ := body["user"].(map[string]any)
	require.Equal(t, "newuser", user["username"])
	require.Equal(t, []any{"user"}, user["roles"])

	// Đăng nhập được ngay sau khi đăng ký
	login(t, r, "newuser", "newpass123")
}

func TestRegisterDuplicate(t *testing.T) {
	r := setupTestApp(t)

	res := doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"username": "user1",
		"email":    "khac@example.com",
		"password": "abc123",
	})
	require.Equal(t, http.StatusConflict, res.Code)

	res = doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"username": "usermoi",
		"email":    "user1@example.com",
		"password": "abc123",
	})
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := setupTestApp(t)

	// Email sai định dạng
	res := doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"username": "x",
		"email":    "không-phải-email",
		"password": "abc123",
	})
	require.Equal(t, http.StatusBadRequest, res.Code)

	// Mật khẩu quá ngắn
	res = doJSON(t, r, http.MethodPost, "/users", "", gin.H{
		"username": "x",
		"email":    "x@example.com",
		"password": "123",
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestMe(t *testing.T) {
	r := setupTestApp(t)
	token := login(t, r, "admin1", "admin123")

	res := doJSON(t, r, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, res.Code)

	body := decodeBody(t, res)
	require.Equal(t, "admin1", body["username"])
	require.Equal(t, []any{"admin"}, body["roles"])
}

// Tập permission hiệu lực của từng role phải khớp đúng bảng phân quyền cố định
func TestEffectivePermissionsMatchPolicyTable(t *testing.T) {
	r := setupTestApp(t)

	cases := []struct {
		username string
		password string
		expected []string
	}{
		{"user1", "user123", []string{models.PermRead}},
		{"admin1", "admin123", []string{models.PermRead, models.PermCreate, models.PermUpdate}},
		{"superadmin1", "super123", []string{models.PermRead, models.PermCreate, models.PermUpdate, models.PermDelete}},
	}

	for _, tc := range cases {
		token := login(t, r, tc.username, tc.password)
		res := doJSON(t, r, http.MethodGet, "/users/me/permissions", token, nil)
		require.Equal(t, http.StatusOK, res.Code)

		perms := decodeList(t, res)
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, p["name"].(string))
		}
		require.ElementsMatch(t, tc.expected, names, "role của %s", tc.username)
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	r := setupTestApp(t)

	res := doJSON(t, r, http.MethodGet, "/api/pdf/", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	r := setupTestApp(t)

	var user models.User
	require.NoError(t, config.DB.Where("username = ?", "user1").First(&user).Error)

	claims := &utils.Claims{
		UserID: user.ID.String(),
		Role:   models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	res := doJSON(t, r, http.MethodGet, "/api/pdf/", expired, nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMalformedTokenRejected(t *testing.T) {
	r := setupTestApp(t)

	res := doJSON(t, r, http.MethodGet, "/api/pdf/", "abc.def.ghi", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestChangePassword(t *testing.T) {
	r := setupTestApp(t)
	token := login(t, r, "user1", "user123")

	res := doJSON(t, r, http.MethodPost, "/users/me/password", token, gin.H{
		"old_password": "user123",
		"new_password": "mậtkhẩumới",
	})
	require.Equal(t, http.StatusOK, res.Code)

	// Mật khẩu cũ không còn dùng được
	bad := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
		"username": "user1",
		"password": "user123",
	})
	require.Equal(t, http.StatusUnauthorized, bad.Code)

	login(t, r, "user1", "mậtkhẩumới")
}

func TestChangePasswordWrongOld(t *testing.T) {
	r := setupTestApp(t)
	token := login(t, r, "user1", "user123")

	res := doJSON(t, r, http.MethodPost, "/users/me/password", token, gin.H{
		"old_password": "sai",
		"new_password": "mậtkhẩumới",
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)
}
