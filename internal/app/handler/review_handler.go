package handler

import (
	"errors"
	"io"
	"net/http"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/metrics"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН ОТЗЫВЫ (модерация) ============

// GetReviews список отзывов для модерации
// @Summary Список отзывов
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | approved | rejected"
// @Param hosting_id query int false "Фильтр по хостингу"
// @Param query query string false "Поиск по имени автора"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.ReviewResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/reviews [get]
func (h *APIHandler) GetReviews(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", ds.ReviewPending, ds.ReviewApproved, ds.ReviewRejected:
	default:
		errorResponse(c, http.StatusBadRequest, "invalid status")
		return
	}
	hostingID, ok := optionalUintQuery(c, "hosting_id")
	if !ok {
		return
	}
	p := listParams(c)

	reviews, total, err := h.Repository.ListReviews(c.Request.Context(), repository.ReviewFilter{
		ListParams: p,
		Status:     status,
		HostingID:  hostingID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(reviewResponses(reviews), total, p))
}

// GetReview отзыв по ID
// @Summary Получение отзыва
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Success 200 {object} dto.ReviewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/reviews/{id} [get]
func (h *APIHandler) GetReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	review, err := h.Repository.GetReview(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviewResponse(review))
}

// UpdateReview правка отзыва модератором
// @Summary Изменение отзыва
// @Description Статус модерации не меняется; рейтинг хостинга пересчитывается
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Param request body dto.UpdateReviewRequest true "Текст и оценка"
// @Success 200 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/reviews/{id} [put]
func (h *APIHandler) UpdateReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	review, err := h.Repository.GetReview(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	review.AuthorName = req.AuthorName
	review.Rating = req.Rating
	review.Pros = req.Pros
	review.Cons = req.Cons
	review.Content = req.Content

	if err := h.Repository.SaveReview(ctx, review); err != nil {
		handleError(c, err)
		return
	}
	if review.Hosting != nil {
		h.invalidateHosting(ctx, review.Hosting.Slug)
	}
	c.JSON(http.StatusOK, reviewResponse(review))
}

// DeleteReview удаляет отзыв
// @Summary Удаление отзыва
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/reviews/{id} [delete]
func (h *APIHandler) DeleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	review, err := h.Repository.GetReview(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.Repository.DeleteReview(ctx, id); err != nil {
		handleError(c, err)
		return
	}
	if review.Hosting != nil {
		h.invalidateHosting(ctx, review.Hosting.Slug)
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Отзыв удалён"})
}

// ApproveReview одобряет отзыв
// @Summary Одобрение отзыва
// @Description Только из статуса pending; автору уходит письмо о публикации
// @Tags Reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Success 200 {object} dto.ReviewResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reviews/{id}/approve [put]
func (h *APIHandler) ApproveReview(c *gin.Context) {
	h.moderate(c, ds.ReviewApproved)
}

// RejectReview отклоняет отзыв
// @Summary Отклонение отзыва
// @Description Только из статуса pending; причина (необязательная) уходит автору письмом
// @Tags Reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID отзыва"
// @Param request body dto.RejectReviewRequest false "Причина"
// @Success 200 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reviews/{id}/reject [put]
func (h *APIHandler) RejectReview(c *gin.Context) {
	h.moderate(c, ds.ReviewRejected)
}

func (h *APIHandler) moderate(c *gin.Context, status string) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	moderator, ok := middleware.GetUserFromContext(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req dto.RejectReviewRequest
	if status == ds.ReviewRejected {
		// тело необязательно
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			bindError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	review, err := h.Repository.ModerateReview(ctx, id, moderator.ID, status, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	metrics.ObserveModeration(status)
	logrus.Infof("review %d %s by user %d", review.ID, status, moderator.ID)

	if review.Hosting != nil {
		h.invalidateHosting(ctx, review.Hosting.Slug)
	}
	if h.Notifier != nil {
		if status == ds.ReviewApproved {
			h.Notifier.ReviewApproved(ctx, review)
		} else {
			h.Notifier.ReviewRejected(ctx, review)
		}
	}

	c.JSON(http.StatusOK, reviewResponse(review))
}
