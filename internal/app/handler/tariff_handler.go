package handler

import (
	"net/http"
	"strconv"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/repository"

	"github.com/gin-gonic/gin"
)

// ============ ДОМЕН ТАРИФЫ ============

// GetTariffs список тарифов
// @Summary Список тарифов
// @Tags Tariffs
// @Produce json
// @Security BearerAuth
// @Param hosting_id query int false "Фильтр по хостингу"
// @Param active query bool false "Только активные"
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.TariffResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/tariffs [get]
func (h *APIHandler) GetTariffs(c *gin.Context) {
	hostingID, ok := optionalUintQuery(c, "hosting_id")
	if !ok {
		return
	}
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	p := listParams(c)

	tariffs, total, err := h.Repository.ListTariffs(c.Request.Context(), repository.TariffFilter{
		ListParams: p,
		HostingID:  hostingID,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(tariffResponses(tariffs), total, p))
}

// GetTariff тариф по ID
// @Summary Получение тарифа
// @Tags Tariffs
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID тарифа"
// @Success 200 {object} dto.TariffResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tariffs/{id} [get]
func (h *APIHandler) GetTariff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tariff, err := h.Repository.GetTariff(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariffResponse(tariff))
}

// tariffRefs проверяет ключи справочников из запроса.
func tariffRefs(c *gin.Context, refs map[string][]uint) (repository.TariffRefs, bool) {
	for key := range refs {
		if _, ok := ds.LookupReferenceKind(key); !ok {
			errorResponse(c, http.StatusBadRequest, "unknown reference kind: "+key)
			return nil, false
		}
	}
	return repository.TariffRefs(refs), true
}

func applyTariffRequest(t *ds.Tariff, req dto.TariffRequest) {
	t.HostingID = req.HostingID
	t.Name = req.Name
	t.Price = req.Price
	t.Period = req.Period
	if t.Period == "" {
		t.Period = ds.PeriodMonth
	}
	t.DiskGB = req.DiskGB
	t.BandwidthGB = req.BandwidthGB
	t.Websites = req.Websites
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
}

// CreateTariff создает тариф
// @Summary Создание тарифа
// @Description references: ключ - вид справочника, значение - список ID
// @Tags Tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TariffRequest true "Данные тарифа"
// @Success 201 {object} dto.TariffResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/tariffs [post]
func (h *APIHandler) CreateTariff(c *gin.Context) {
	var req dto.TariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	refs, ok := tariffRefs(c, req.References)
	if !ok {
		return
	}

	tariff := ds.Tariff{IsActive: true}
	applyTariffRequest(&tariff, req)

	ctx := c.Request.Context()
	if err := h.Repository.CreateTariff(ctx, &tariff, refs); err != nil {
		handleError(c, err)
		return
	}
	created, err := h.Repository.GetTariff(ctx, tariff.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tariffResponse(created))
}

// UpdateTariff изменяет тариф
// @Summary Изменение тарифа
// @Description Отсутствующий ключ в references не меняет связь, пустой список очищает её
// @Tags Tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID тарифа"
// @Param request body dto.TariffRequest true "Данные тарифа"
// @Success 200 {object} dto.TariffResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tariffs/{id} [put]
func (h *APIHandler) UpdateTariff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.TariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	refs, ok := tariffRefs(c, req.References)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	tariff, err := h.Repository.GetTariff(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	tariff.Hosting = nil
	applyTariffRequest(tariff, req)

	if err := h.Repository.SaveTariff(ctx, tariff, refs); err != nil {
		handleError(c, err)
		return
	}
	updated, err := h.Repository.GetTariff(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, tariffResponse(updated))
}

// DeleteTariff удаляет тариф
// @Summary Удаление тарифа
// @Description Тариф пропадает и из сохранённых сравнений
// @Tags Tariffs
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID тарифа"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/tariffs/{id} [delete]
func (h *APIHandler) DeleteTariff(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteTariff(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Тариф удалён"})
}

// ============ Справочники ============

// referenceKind читает :kind; при неизвестном виде уже ответил 404.
func referenceKind(c *gin.Context) (ds.ReferenceKind, bool) {
	kind, ok := ds.LookupReferenceKind(c.Param("kind"))
	if !ok {
		errorResponse(c, http.StatusNotFound, "unknown reference kind")
		return ds.ReferenceKind{}, false
	}
	return kind, true
}

// GetReferenceKinds перечень справочников
// @Summary Виды справочников
// @Tags Reference
// @Produce json
// @Success 200 {array} string
// @Router /api/public/reference [get]
func (h *APIHandler) GetReferenceKinds(c *gin.Context) {
	kinds := make([]string, 0, len(ds.ReferenceKinds))
	for _, k := range ds.ReferenceKinds {
		kinds = append(kinds, k.Key)
	}
	c.JSON(http.StatusOK, kinds)
}

// GetReferenceItems значения справочника
// @Summary Значения справочника
// @Tags Reference
// @Produce json
// @Param kind path string true "cms | control-panels | countries | data-stores | operation-systems | programming-languages"
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.ReferenceResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/reference/{kind} [get]
// @Router /api/public/reference/{kind} [get]
func (h *APIHandler) GetReferenceItems(c *gin.Context) {
	kind, ok := referenceKind(c)
	if !ok {
		return
	}
	p := listParams(c)

	items, total, err := h.Repository.ListReference(c.Request.Context(), kind, p)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(referenceItemResponses(items), total, p))
}

// GetReferenceItem значение справочника по ID
// @Summary Получение значения справочника
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид справочника"
// @Param id path int true "ID значения"
// @Success 200 {object} dto.ReferenceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/reference/{kind}/{id} [get]
func (h *APIHandler) GetReferenceItem(c *gin.Context) {
	kind, ok := referenceKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	item, err := h.Repository.GetReference(c.Request.Context(), kind, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReferenceResponse{ID: item.ID, Name: item.Name, Slug: item.Slug})
}

// CreateReferenceItem добавляет значение в справочник
// @Summary Создание значения справочника
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид справочника"
// @Param request body dto.ReferenceRequest true "Название и slug"
// @Success 201 {object} dto.ReferenceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reference/{kind} [post]
func (h *APIHandler) CreateReferenceItem(c *gin.Context) {
	kind, ok := referenceKind(c)
	if !ok {
		return
	}
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	item, err := h.Repository.CreateReference(c.Request.Context(), kind, req.Name, slug)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReferenceResponse{ID: item.ID, Name: item.Name, Slug: item.Slug})
}

// UpdateReferenceItem изменяет значение справочника
// @Summary Изменение значения справочника
// @Tags Reference
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид справочника"
// @Param id path int true "ID значения"
// @Param request body dto.ReferenceRequest true "Название и slug"
// @Success 200 {object} dto.ReferenceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reference/{kind}/{id} [put]
func (h *APIHandler) UpdateReferenceItem(c *gin.Context) {
	kind, ok := referenceKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	item, err := h.Repository.UpdateReference(c.Request.Context(), kind, id, req.Name, slug)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReferenceResponse{ID: item.ID, Name: item.Name, Slug: item.Slug})
}

// DeleteReferenceItem удаляет значение справочника
// @Summary Удаление значения справочника
// @Description Запрещено, пока значение привязано к тарифам
// @Tags Reference
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Вид справочника"
// @Param id path int true "ID значения"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/reference/{kind}/{id} [delete]
func (h *APIHandler) DeleteReferenceItem(c *gin.Context) {
	kind, ok := referenceKind(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteReference(c.Request.Context(), kind, id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Значение удалено"})
}
