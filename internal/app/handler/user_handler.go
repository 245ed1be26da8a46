package handler

import (
	"net/http"

	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ Пользователи (только администратор) ============

// GetUsers список пользователей
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param query query string false "Поиск по email или имени"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.UserResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/users [get]
func (h *APIHandler) GetUsers(c *gin.Context) {
	p := listParams(c)
	users, total, err := h.Repository.ListUsers(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, pageOf(items, total, p))
}

// GetUser пользователь по ID
// @Summary Получение пользователя
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/users/{id} [get]
func (h *APIHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.Repository.GetUserByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// UpdateUserRole меняет роль пользователя
// @Summary Изменение роли
// @Description Администратор не может понизить сам себя
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body dto.UpdateRoleRequest true "Новая роль"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users/{id}/role [put]
func (h *APIHandler) UpdateUserRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	newRole, ok := role.Parse(req.Role)
	if !ok {
		errorResponse(c, http.StatusBadRequest, "invalid role")
		return
	}

	current, _ := middleware.GetUserFromContext(c)
	if current.ID == id && newRole != role.Admin {
		errorResponse(c, http.StatusConflict, "cannot demote yourself")
		return
	}

	ctx := c.Request.Context()
	if err := h.Repository.UpdateUserRole(ctx, id, newRole); err != nil {
		handleError(c, err)
		return
	}
	user, err := h.Repository.GetUserByID(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	logrus.Infof("user %d role set to %s by %d", id, newRole, current.ID)
	c.JSON(http.StatusOK, userResponse(user))
}

// DeleteUser удаляет пользователя
// @Summary Удаление пользователя
// @Description Отзывы пользователя остаются без автора; удалить себя нельзя
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *APIHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	current, _ := middleware.GetUserFromContext(c)
	if current.ID == id {
		errorResponse(c, http.StatusConflict, "cannot delete yourself")
		return
	}

	if err := h.Repository.DeleteUser(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Пользователь удалён"})
}

// ============ Миграция MySQL -> PostgreSQL ============

// StartMigration запускает перенос данных в фоне
// @Summary Запуск миграции
// @Description Повторный запуск во время работы возвращает 409
// @Tags Migration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartMigrationRequest false "Флаги запуска"
// @Success 202 {object} migration.Status
// @Failure 409 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/admin/migration/start [post]
func (h *APIHandler) StartMigration(c *gin.Context) {
	if h.Migration == nil {
		errorResponse(c, http.StatusServiceUnavailable, "migration is not configured")
		return
	}
	var req dto.StartMigrationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	st, err := h.Migration.Start(c.Request.Context(), migration.Options{
		DryRun:     req.DryRun,
		SkipImages: req.SkipImages,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, st)
}

// GetMigrationStatus текущий статус миграции
// @Summary Статус миграции
// @Tags Migration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} migration.Status
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/admin/migration/status [get]
func (h *APIHandler) GetMigrationStatus(c *gin.Context) {
	if h.Migration == nil {
		errorResponse(c, http.StatusServiceUnavailable, "migration is not configured")
		return
	}
	st, err := h.Migration.Status()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
