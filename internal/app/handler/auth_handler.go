package handler

import (
	"errors"
	"net/http"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "hostcompare"

type AuthHandler struct {
	Repository  *repository.Repository
	RedisClient *redis.Client
	Config      *config.Config
}

func NewAuthHandler(r *repository.Repository, redisClient *redis.Client, config *config.Config) *AuthHandler {
	return &AuthHandler{
		Repository:  r,
		RedisClient: redisClient,
		Config:      config,
	}
}

// IssueToken подписывает JWT для пользователя.
func (h *AuthHandler) IssueToken(user *ds.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(h.Config.JWT.SigningMethod, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(h.Config.JWT.ExpiresIn).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    tokenIssuer,
		},
		UserID: user.ID,
		Role:   user.Role,
	})
	return token.SignedString([]byte(h.Config.JWT.Token))
}

// startSession выдаёт токен и ставит HttpOnly cookie.
func (h *AuthHandler) startSession(ctx *gin.Context, user *ds.User) (dto.LoginResponse, error) {
	accessToken, err := h.IssueToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	maxAge := int(h.Config.JWT.ExpiresIn.Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.CookieName, accessToken, maxAge, "/", "", h.Config.JWT.CookieSecure, true)

	return dto.LoginResponse{
		Token:     accessToken,
		TokenType: "Bearer",
		ExpiresIn: maxAge,
		User:      userResponse(user),
	}, nil
}

// RegisterUser регистрация нового пользователя
// @Summary Регистрация пользователя
// @Description Создаёт посетителя (роль user) и сразу открывает сессию
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные для регистрации"
// @Success 201 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) RegisterUser(ctx *gin.Context) {
	var request dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		handleError(ctx, err)
		return
	}

	user := ds.User{
		Email:    request.Email,
		FullName: request.FullName,
		Password: string(hashedPassword),
		Role:     role.User,
	}
	if err := h.Repository.CreateUser(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			errorResponse(ctx, http.StatusConflict, "user with this email already exists")
			return
		}
		handleError(ctx, err)
		return
	}

	resp, err := h.startSession(ctx, &user)
	if err != nil {
		handleError(ctx, err)
		return
	}
	logrus.Infof("user %d registered", user.ID)
	ctx.JSON(http.StatusCreated, resp)
}

// LoginUser аутентификация пользователя
// @Summary Вход в систему
// @Description Возвращает JWT и ставит cookie auth_token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Данные для входа"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) LoginUser(ctx *gin.Context) {
	var request dto.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := h.Repository.GetUserByEmail(ctx.Request.Context(), request.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		handleError(ctx, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)) != nil {
		errorResponse(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}

	resp, err := h.startSession(ctx, user)
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// LogoutUser выход пользователя из системы
// @Summary Выход из системы
// @Description Токен попадает в blacklist до истечения срока, cookie сбрасывается
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) LogoutUser(ctx *gin.Context) {
	token, expiresAt, ok := middleware.TokenFromContext(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.RedisClient.WriteJWTToBlacklist(ctx.Request.Context(), token, time.Until(expiresAt)); err != nil {
		handleError(ctx, err)
		return
	}

	ctx.SetCookie(middleware.CookieName, "", -1, "/", "", h.Config.JWT.CookieSecure, true)
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Сессия завершена"})
}

// GetUserProfile профиль текущего пользователя
// @Summary Профиль
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetUserProfile(ctx *gin.Context) {
	current, ok := middleware.GetUserFromContext(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.Repository.GetUserByID(ctx.Request.Context(), current.ID)
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userResponse(user))
}

// UpdateProfile обновление профиля
// @Summary Изменение профиля
// @Description Меняет имя и/или пароль текущего пользователя
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Новые данные"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	current, ok := middleware.GetUserFromContext(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}
	var request dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}

	var passwordHash *string
	if request.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
		if err != nil {
			handleError(ctx, err)
			return
		}
		s := string(hashed)
		passwordHash = &s
	}

	reqCtx := ctx.Request.Context()
	if err := h.Repository.UpdateUser(reqCtx, current.ID, request.FullName, passwordHash); err != nil {
		handleError(ctx, err)
		return
	}
	user, err := h.Repository.GetUserByID(reqCtx, current.ID)
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userResponse(user))
}
