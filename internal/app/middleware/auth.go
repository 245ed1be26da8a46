package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

// CookieName - HttpOnly cookie с JWT сессии.
const CookieName = "auth_token"

var errNoToken = errors.New("token missing")

// UserStore - источник актуальной роли пользователя.
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*ds.User, error)
}

type AuthMiddleware struct {
	RedisClient *redis.Client
	Users       UserStore
	Config      *config.Config
}

func NewAuthMiddleware(redisClient *redis.Client, users UserStore, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		RedisClient: redisClient,
		Users:       users,
		Config:      cfg,
	}
}

// TokenFromRequest достаёт JWT из заголовка Authorization или из cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// WithAuthCheck middleware для проверки авторизации с ролями
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		claims, jwtStr, err := am.authenticate(gCtx)
		if err != nil {
			if !errors.Is(err, errNoToken) {
				logrus.WithError(err).Debug("auth rejected")
			}
			abort(gCtx, http.StatusUnauthorized, "unauthorized")
			return
		}

		// Роль в токене могла устареть: смотрим текущую в БД
		user, err := am.Users.GetUserByID(gCtx.Request.Context(), claims.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			abort(gCtx, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err != nil {
			logrus.WithError(err).Error("failed to load user for auth check")
			abort(gCtx, http.StatusInternalServerError, "internal server error")
			return
		}

		if len(assignedRoles) > 0 && !hasRequiredRole(user.Role, assignedRoles) {
			abort(gCtx, http.StatusForbidden, "forbidden")
			return
		}

		// Сохраняем данные пользователя в контексте для последующего использования
		setUser(gCtx, user.ID, user.Role)
		gCtx.Set(ctxToken, jwtStr)
		gCtx.Set(ctxExpiresAt, time.Unix(claims.ExpiresAt, 0))

		gCtx.Next()
	}
}

// WithOptionalAuth заполняет пользователя, если токен валиден, но не требует его.
func (am *AuthMiddleware) WithOptionalAuth() gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		if claims, _, err := am.authenticate(gCtx); err == nil {
			setUser(gCtx, claims.UserID, claims.Role)
		}
		gCtx.Next()
	}
}

func (am *AuthMiddleware) authenticate(gCtx *gin.Context) (*ds.JWTClaims, string, error) {
	jwtStr := TokenFromRequest(gCtx)
	if jwtStr == "" {
		return nil, "", errNoToken
	}

	// Проверяем токен в blacklist Redis
	listed, err := am.RedisClient.IsBlacklisted(gCtx.Request.Context(), jwtStr)
	if err != nil {
		return nil, "", err
	}
	if listed {
		return nil, "", errors.New("token revoked")
	}

	// Парсим и проверяем JWT токен
	claims, err := ParseToken(am.Config.JWT, jwtStr)
	if err != nil {
		return nil, "", err
	}
	return claims, jwtStr, nil
}

// ParseToken парсит и валидирует JWT токен
func ParseToken(cfg config.JWTConfig, tokenString string) (*ds.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != cfg.SigningMethod.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.Token), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// TokenFromContext возвращает JWT текущего запроса и момент его истечения.
func TokenFromContext(c *gin.Context) (string, time.Time, bool) {
	token := c.GetString(ctxToken)
	if token == "" {
		return "", time.Time{}, false
	}
	exp, _ := c.Get(ctxExpiresAt)
	expiresAt, _ := exp.(time.Time)
	return token, expiresAt, true
}

// hasRequiredRole проверяет, есть ли у пользователя необходимая роль
func hasRequiredRole(userRole role.Role, requiredRoles []role.Role) bool {
	for _, requiredRole := range requiredRoles {
		if userRole == requiredRole {
			return true
		}
	}
	return false
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: msg})
}
