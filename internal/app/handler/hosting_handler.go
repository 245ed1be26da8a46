package handler

import (
	"net/http"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН ХОСТИНГИ ============

// GetHostings получает список хостингов для CRM
// @Summary Список хостингов
// @Description Возвращает все хостинги, включая неопубликованные
// @Tags Hostings
// @Produce json
// @Security BearerAuth
// @Param query query string false "Поиск по названию"
// @Param holding_id query int false "Фильтр по холдингу"
// @Param sort query string false "rating | name | created"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.HostingResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/hostings [get]
func (h *APIHandler) GetHostings(c *gin.Context) {
	holdingID, ok := optionalUintQuery(c, "holding_id")
	if !ok {
		return
	}
	p := listParams(c)

	hostings, total, err := h.Repository.ListHostings(c.Request.Context(), repository.HostingFilter{
		ListParams: p,
		HoldingID:  holdingID,
		Sort:       c.Query("sort"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageOf(h.hostingResponses(hostings), total, p))
}

// GetHosting получает хостинг по ID
// @Summary Получение хостинга
// @Tags Hostings
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID хостинга"
// @Success 200 {object} dto.HostingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/hostings/{id} [get]
func (h *APIHandler) GetHosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	hosting, err := h.Repository.GetHostingByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.hostingResponse(hosting))
}

// CreateHosting создает хостинг
// @Summary Создание хостинга
// @Description Slug строится из названия, если не передан
// @Tags Hostings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.HostingRequest true "Данные хостинга"
// @Success 201 {object} dto.HostingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/hostings [post]
func (h *APIHandler) CreateHosting(c *gin.Context) {
	var req dto.HostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	hosting := ds.Hosting{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		HoldingID:   req.HoldingID,
		IsPublished: req.IsPublished,
	}
	if err := h.Repository.CreateHosting(c.Request.Context(), &hosting); err != nil {
		handleError(c, err)
		return
	}

	created, err := h.Repository.GetHostingByID(c.Request.Context(), hosting.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	logrus.Infof("hosting %d (%s) created", created.ID, created.Slug)
	c.JSON(http.StatusCreated, h.hostingResponse(created))
}

// UpdateHosting изменяет хостинг
// @Summary Изменение хостинга
// @Tags Hostings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID хостинга"
// @Param request body dto.HostingRequest true "Данные хостинга"
// @Success 200 {object} dto.HostingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/hostings/{id} [put]
func (h *APIHandler) UpdateHosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.HostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	hosting, err := h.Repository.GetHostingByID(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	oldSlug := hosting.Slug

	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}
	hosting.Name = req.Name
	hosting.Slug = slug
	hosting.Description = req.Description
	hosting.WebsiteURL = req.WebsiteURL
	hosting.HoldingID = req.HoldingID
	hosting.Holding = nil
	hosting.IsPublished = req.IsPublished

	if err := h.Repository.SaveHosting(ctx, hosting); err != nil {
		handleError(c, err)
		return
	}
	h.invalidateHosting(ctx, oldSlug, hosting.Slug)

	updated, err := h.Repository.GetHostingByID(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.hostingResponse(updated))
}

// DeleteHosting удаляет хостинг
// @Summary Удаление хостинга
// @Description Удаляет хостинг и его логотип. Хостинг с тарифами или отзывами удалить нельзя (409)
// @Tags Hostings
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID хостинга"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/hostings/{id} [delete]
func (h *APIHandler) DeleteHosting(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	hosting, err := h.Repository.GetHostingByID(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.Repository.DeleteHosting(ctx, id); err != nil {
		handleError(c, err)
		return
	}
	h.deleteObject(ctx, hosting.LogoURL)
	h.invalidateHosting(ctx, hosting.Slug)

	logrus.Infof("hosting %d (%s) deleted", hosting.ID, hosting.Slug)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Хостинг удалён"})
}

// UploadHostingLogo загружает логотип хостинга
// @Summary Загрузка логотипа
// @Description Загружает картинку в MinIO и удаляет предыдущий логотип
// @Tags Hostings
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID хостинга"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.ImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/hostings/{id}/logo [post]
func (h *APIHandler) UploadHostingLogo(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if h.Files == nil {
		handleError(c, ErrStorageDisabled)
		return
	}

	ctx := c.Request.Context()
	hosting, err := h.Repository.GetHostingByID(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	name, err := h.Files.UploadFile(ctx, storage.KindLogo, data, filename)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.Repository.SetHostingLogo(ctx, id, &name); err != nil {
		h.deleteObject(ctx, &name)
		handleError(c, err)
		return
	}

	// Удаляем старый логотип только после успешной записи нового
	h.deleteObject(ctx, hosting.LogoURL)
	h.invalidateHosting(ctx, hosting.Slug)

	c.JSON(http.StatusOK, dto.ImageResponse{ObjectName: name, URL: h.Files.FileURL(name)})
}

// ============ Холдинги ============

// GetHoldings список холдингов
// @Summary Список холдингов
// @Tags Holdings
// @Produce json
// @Security BearerAuth
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.HoldingResponse]
// @Router /api/holdings [get]
func (h *APIHandler) GetHoldings(c *gin.Context) {
	p := listParams(c)
	holdings, total, err := h.Repository.ListHoldings(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	items := make([]dto.HoldingResponse, 0, len(holdings))
	for i := range holdings {
		items = append(items, *holdingResponse(&holdings[i]))
	}
	c.JSON(http.StatusOK, pageOf(items, total, p))
}

// GetHolding холдинг по ID
// @Summary Получение холдинга
// @Tags Holdings
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID холдинга"
// @Success 200 {object} dto.HoldingResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/holdings/{id} [get]
func (h *APIHandler) GetHolding(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	holding, err := h.Repository.GetHolding(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdingResponse(holding))
}

// CreateHolding создает холдинг
// @Summary Создание холдинга
// @Tags Holdings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.HoldingRequest true "Данные холдинга"
// @Success 201 {object} dto.HoldingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/holdings [post]
func (h *APIHandler) CreateHolding(c *gin.Context) {
	var req dto.HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	holding := ds.Holding{Name: req.Name, Slug: slug}
	if err := h.Repository.CreateHolding(c.Request.Context(), &holding); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holdingResponse(&holding))
}

// UpdateHolding изменяет холдинг
// @Summary Изменение холдинга
// @Tags Holdings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID холдинга"
// @Param request body dto.HoldingRequest true "Данные холдинга"
// @Success 200 {object} dto.HoldingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/holdings/{id} [put]
func (h *APIHandler) UpdateHolding(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.HoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	holding, err := h.Repository.GetHolding(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}
	holding.Name = req.Name
	holding.Slug = slug

	ctx := c.Request.Context()
	if err := h.Repository.SaveHolding(ctx, holding); err != nil {
		handleError(c, err)
		return
	}

	// карточки хостингов в кеше содержат холдинг
	slugs, err := h.Repository.HostingSlugsByHolding(ctx, holding.ID)
	if err != nil {
		logrus.WithError(err).Warnf("failed to list hostings of holding %d", holding.ID)
	}
	h.invalidateHosting(ctx, slugs...)

	c.JSON(http.StatusOK, holdingResponse(holding))
}

// DeleteHolding удаляет холдинг
// @Summary Удаление холдинга
// @Description Запрещено, пока к холдингу привязаны хостинги
// @Tags Holdings
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID холдинга"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/holdings/{id} [delete]
func (h *APIHandler) DeleteHolding(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteHolding(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Холдинг удалён"})
}

// ============ Города ============

// GetCities список городов
// @Summary Список городов
// @Tags Cities
// @Produce json
// @Security BearerAuth
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.CityResponse]
// @Router /api/cities [get]
func (h *APIHandler) GetCities(c *gin.Context) {
	p := listParams(c)
	cities, total, err := h.Repository.ListCities(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}

	items := make([]dto.CityResponse, 0, len(cities))
	for i := range cities {
		items = append(items, *cityResponse(&cities[i]))
	}
	c.JSON(http.StatusOK, pageOf(items, total, p))
}

// GetCity город по ID
// @Summary Получение города
// @Tags Cities
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID города"
// @Success 200 {object} dto.CityResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/cities/{id} [get]
func (h *APIHandler) GetCity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	city, err := h.Repository.GetCity(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cityResponse(city))
}

// CreateCity создает город
// @Summary Создание города
// @Tags Cities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CityRequest true "Данные города"
// @Success 201 {object} dto.CityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/cities [post]
func (h *APIHandler) CreateCity(c *gin.Context) {
	var req dto.CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	city := ds.City{Name: req.Name, Slug: slug, Region: req.Region}
	if err := h.Repository.CreateCity(c.Request.Context(), &city); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cityResponse(&city))
}

// UpdateCity изменяет город
// @Summary Изменение города
// @Tags Cities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID города"
// @Param request body dto.CityRequest true "Данные города"
// @Success 200 {object} dto.CityResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/cities/{id} [put]
func (h *APIHandler) UpdateCity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	city, err := h.Repository.GetCity(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}
	city.Name = req.Name
	city.Slug = slug
	city.Region = req.Region

	if err := h.Repository.SaveCity(c.Request.Context(), city); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cityResponse(city))
}

// DeleteCity удаляет город
// @Summary Удаление города
// @Description Дилеры города остаются без города
// @Tags Cities
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID города"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/cities/{id} [delete]
func (h *APIHandler) DeleteCity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteCity(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Город удалён"})
}
