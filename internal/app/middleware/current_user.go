package middleware

import (
	"hostcompare/internal/app/role"

	"github.com/gin-gonic/gin"
)

// Ключи контекста gin, которые заполняет AuthMiddleware.
const (
	ctxUserID    = "userID"
	ctxUserRole  = "userRole"
	ctxToken     = "jwt"
	ctxExpiresAt = "jwtExpiresAt"
)

// CurrentUser - пользователь текущего запроса, извлечённый из JWT.
type CurrentUser struct {
	ID   uint
	Role role.Role
}

func (u CurrentUser) IsStaff() bool {
	return u.Role == role.Manager || u.Role == role.Admin
}

// GetUserFromContext извлекает пользователя из контекста
func GetUserFromContext(c *gin.Context) (CurrentUser, bool) {
	rawID, exists := c.Get(ctxUserID)
	if !exists {
		return CurrentUser{}, false
	}
	id, ok := rawID.(uint)
	if !ok || id == 0 {
		return CurrentUser{}, false
	}

	r, _ := c.Get(ctxUserRole)
	userRole, _ := r.(role.Role)

	return CurrentUser{ID: id, Role: userRole}, true
}

// setUser кладёт пользователя в контекст (используется и в тестах хендлеров).
func setUser(c *gin.Context, id uint, r role.Role) {
	c.Set(ctxUserID, id)
	c.Set(ctxUserRole, r)
}

// WithUser - middleware для тестов: подставляет пользователя без JWT.
func WithUser(id uint, r role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUser(c, id, r)
		c.Next()
	}
}
