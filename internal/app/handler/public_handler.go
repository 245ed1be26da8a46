package handler

import (
	"net/http"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ Публичный API сайта ============

// GetPublicHostings список опубликованных хостингов
// @Summary Каталог хостингов
// @Tags Public
// @Produce json
// @Param query query string false "Поиск по названию"
// @Param sort query string false "rating | name"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.HostingResponse]
// @Router /api/public/hostings [get]
func (h *APIHandler) GetPublicHostings(c *gin.Context) {
	p := listParams(c)
	sort := c.Query("sort")
	if sort != "name" {
		sort = "rating"
	}

	hostings, total, err := h.Repository.ListHostings(c.Request.Context(), repository.HostingFilter{
		ListParams:    p,
		PublishedOnly: true,
		Sort:          sort,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(h.hostingResponses(hostings), total, p))
}

// publishedHosting ищет опубликованный хостинг по :slug; при ошибке уже ответил.
func (h *APIHandler) publishedHosting(c *gin.Context) (*ds.Hosting, bool) {
	hosting, err := h.Repository.GetHostingBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return hosting, true
}

// GetPublicHosting карточка хостинга
// @Summary Карточка хостинга
// @Description Ответ кешируется в Redis
// @Tags Public
// @Produce json
// @Param slug path string true "Slug хостинга"
// @Success 200 {object} dto.HostingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/public/hostings/{slug} [get]
func (h *APIHandler) GetPublicHosting(c *gin.Context) {
	ctx := c.Request.Context()
	key := redis.HostingCacheKey(c.Param("slug"))

	var cached dto.HostingResponse
	if h.cacheGet(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	hosting, ok := h.publishedHosting(c)
	if !ok {
		return
	}
	resp := h.hostingResponse(hosting)
	h.cacheSet(ctx, key, resp)

	c.JSON(http.StatusOK, resp)
}

// GetPublicHostingTariffs активные тарифы хостинга
// @Summary Тарифы хостинга
// @Tags Public
// @Produce json
// @Param slug path string true "Slug хостинга"
// @Success 200 {array} dto.TariffResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/public/hostings/{slug}/tariffs [get]
func (h *APIHandler) GetPublicHostingTariffs(c *gin.Context) {
	hosting, ok := h.publishedHosting(c)
	if !ok {
		return
	}
	tariffs, err := h.Repository.ActiveTariffsByHosting(c.Request.Context(), hosting.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariffResponses(tariffs))
}

// GetPublicHostingReviews одобренные отзывы о хостинге
// @Summary Отзывы о хостинге
// @Tags Public
// @Produce json
// @Param slug path string true "Slug хостинга"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.PublicReviewResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/public/hostings/{slug}/reviews [get]
func (h *APIHandler) GetPublicHostingReviews(c *gin.Context) {
	hosting, ok := h.publishedHosting(c)
	if !ok {
		return
	}
	p := listParams(c)
	p.Query = ""

	reviews, total, err := h.Repository.ListReviews(c.Request.Context(), repository.ReviewFilter{
		ListParams: p,
		Status:     ds.ReviewApproved,
		HostingID:  &hosting.ID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(publicReviewResponses(reviews), total, p))
}

// CreatePublicReview оставляет отзыв о хостинге
// @Summary Новый отзыв
// @Description Отзыв попадает на модерацию (pending); модераторам уходит письмо
// @Tags Public
// @Accept json
// @Produce json
// @Param slug path string true "Slug хостинга"
// @Param request body dto.CreateReviewRequest true "Отзыв"
// @Success 201 {object} dto.ReviewResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /api/public/hostings/{slug}/reviews [post]
func (h *APIHandler) CreatePublicReview(c *gin.Context) {
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	hosting, ok := h.publishedHosting(c)
	if !ok {
		return
	}

	review := ds.Review{
		HostingID:   hosting.ID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Rating:      req.Rating,
		Pros:        req.Pros,
		Cons:        req.Cons,
		Content:     req.Content,
	}
	if user, ok := middleware.GetUserFromContext(c); ok {
		review.UserID = &user.ID
	}

	ctx := c.Request.Context()
	if err := h.Repository.CreateReview(ctx, &review); err != nil {
		handleError(c, err)
		return
	}
	review.Hosting = hosting
	logrus.Infof("review %d submitted for hosting %s", review.ID, hosting.Slug)

	if h.Notifier != nil {
		staff, err := h.Repository.StaffEmails(ctx)
		if err != nil {
			logrus.WithError(err).Warn("failed to load staff emails")
		} else {
			h.Notifier.ReviewSubmitted(ctx, staff, &review)
		}
	}

	c.JSON(http.StatusCreated, reviewResponse(&review))
}

// GetPublicCategoryProducts активные продукты категории
// @Summary Продукты категории
// @Tags Public
// @Produce json
// @Param slug path string true "Slug категории"
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.ProductResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/public/categories/{slug}/products [get]
func (h *APIHandler) GetPublicCategoryProducts(c *gin.Context) {
	ctx := c.Request.Context()
	category, err := h.Repository.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		handleError(c, err)
		return
	}
	p := listParams(c)

	products, total, err := h.Repository.ListProducts(ctx, repository.ProductFilter{
		ListParams: p,
		CategoryID: &category.ID,
		ActiveOnly: true,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(h.productResponses(products), total, p))
}

// ============ Сравнения тарифов ============

// ShareComparison сохраняет сравнение и возвращает короткую ссылку
// @Summary Поделиться сравнением
// @Description Для одного и того же набора тарифов возвращается одна и та же ссылка
// @Tags Public
// @Accept json
// @Produce json
// @Param request body dto.ShareComparisonRequest true "ID тарифов (2-10)"
// @Success 201 {object} dto.ShareComparisonResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/public/comparisons [post]
func (h *APIHandler) ShareComparison(c *gin.Context) {
	var req dto.ShareComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	comparison, err := h.Repository.ShareComparison(c.Request.Context(), req.TariffIDs, repository.NewComparisonID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ShareComparisonResponse{
		ID:  comparison.ID,
		URL: h.siteURL() + "/compare/" + comparison.ID,
	})
}

// GetComparison сохранённое сравнение
// @Summary Получение сравнения
// @Tags Public
// @Produce json
// @Param id path string true "Короткий ID"
// @Success 200 {object} dto.ComparisonResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/public/comparisons/{id} [get]
func (h *APIHandler) GetComparison(c *gin.Context) {
	comparison, err := h.Repository.GetComparison(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ComparisonResponse{
		ID:        comparison.ID,
		CreatedAt: comparison.CreatedAt,
		Tariffs:   tariffResponses(comparison.Tariffs),
	})
}

func (h *APIHandler) siteURL() string {
	if h.Config == nil {
		return ""
	}
	return h.Config.SiteURL
}
