package handler

import (
	"net/http"
	"strconv"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/storage"

	"github.com/gin-gonic/gin"
)

// ============ Категории ============

// GetCategories список категорий
// @Summary Список категорий
// @Tags Categories
// @Produce json
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.CategoryResponse]
// @Router /api/categories [get]
// @Router /api/public/categories [get]
func (h *APIHandler) GetCategories(c *gin.Context) {
	p := listParams(c)
	categories, total, err := h.Repository.ListCategories(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(categoryResponses(categories), total, p))
}

// GetCategory категория по ID
// @Summary Получение категории
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/categories/{id} [get]
func (h *APIHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	category, err := h.Repository.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse(category))
}

// CreateCategory создает категорию
// @Summary Создание категории
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CategoryRequest true "Данные категории"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/categories [post]
func (h *APIHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	category := ds.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if err := h.Repository.CreateCategory(c.Request.Context(), &category); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, categoryResponse(&category))
}

// UpdateCategory изменяет категорию
// @Summary Изменение категории
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Param request body dto.CategoryRequest true "Данные категории"
// @Success 200 {object} dto.CategoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/categories/{id} [put]
func (h *APIHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.Repository.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}
	category.Name = req.Name
	category.Slug = slug
	category.Description = req.Description
	category.ParentID = req.ParentID

	if err := h.Repository.SaveCategory(c.Request.Context(), category); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryResponse(category))
}

// DeleteCategory удаляет категорию
// @Summary Удаление категории
// @Description Запрещено, пока в категории есть продукты или подкатегории
// @Tags Categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/categories/{id} [delete]
func (h *APIHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Категория удалена"})
}

// ============ Продукты ============

// GetProducts список продуктов
// @Summary Список продуктов
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "Фильтр по категории"
// @Param active query bool false "Только активные"
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.ProductResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/products [get]
func (h *APIHandler) GetProducts(c *gin.Context) {
	categoryID, ok := optionalUintQuery(c, "category_id")
	if !ok {
		return
	}
	activeOnly, _ := strconv.ParseBool(c.Query("active"))
	p := listParams(c)

	products, total, err := h.Repository.ListProducts(c.Request.Context(), repository.ProductFilter{
		ListParams: p,
		CategoryID: categoryID,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(h.productResponses(products), total, p))
}

// GetProduct продукт по ID
// @Summary Получение продукта
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/products/{id} [get]
func (h *APIHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	product, err := h.Repository.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.productResponse(product))
}

// CreateProduct создает продукт
// @Summary Создание продукта
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProductRequest true "Данные продукта"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/products [post]
func (h *APIHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}

	product := ds.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Price:       req.Price,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	ctx := c.Request.Context()
	if err := h.Repository.CreateProduct(ctx, &product); err != nil {
		handleError(c, err)
		return
	}
	created, err := h.Repository.GetProduct(ctx, product.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.productResponse(created))
}

// UpdateProduct изменяет продукт
// @Summary Изменение продукта
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Param request body dto.ProductRequest true "Данные продукта"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/products/{id} [put]
func (h *APIHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	product, err := h.Repository.GetProduct(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	slug, ok := slugOrName(c, req.Slug, req.Name)
	if !ok {
		return
	}
	product.Category = nil
	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Slug = slug
	product.Description = req.Description
	product.Price = req.Price
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.Repository.SaveProduct(ctx, product); err != nil {
		handleError(c, err)
		return
	}
	updated, err := h.Repository.GetProduct(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.productResponse(updated))
}

// DeleteProduct удаляет продукт
// @Summary Удаление продукта
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/products/{id} [delete]
func (h *APIHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, err := h.Repository.GetProduct(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.Repository.DeleteProduct(ctx, id); err != nil {
		handleError(c, err)
		return
	}
	h.deleteObject(ctx, product.ImageURL)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Продукт удалён"})
}

// UploadProductImage загружает изображение продукта
// @Summary Загрузка изображения продукта
// @Description Загружает картинку в MinIO и удаляет предыдущую
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID продукта"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.ImageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/products/{id}/image [post]
func (h *APIHandler) UploadProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if h.Files == nil {
		handleError(c, ErrStorageDisabled)
		return
	}

	ctx := c.Request.Context()
	product, err := h.Repository.GetProduct(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	name, err := h.Files.UploadFile(ctx, storage.KindProduct, data, filename)
	if err != nil {
		handleError(c, err)
		return
	}
	if err := h.Repository.SetProductImage(ctx, id, &name); err != nil {
		h.deleteObject(ctx, &name)
		handleError(c, err)
		return
	}
	h.deleteObject(ctx, product.ImageURL)

	c.JSON(http.StatusOK, dto.ImageResponse{ObjectName: name, URL: h.Files.FileURL(name)})
}

// ============ Дилеры ============

// GetDealers список дилеров
// @Summary Список дилеров
// @Tags Dealers
// @Produce json
// @Security BearerAuth
// @Param city_id query int false "Фильтр по городу"
// @Param query query string false "Поиск по названию"
// @Param page query int false "Страница"
// @Param limit query int false "Размер страницы"
// @Success 200 {object} dto.Page[dto.DealerResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/dealers [get]
func (h *APIHandler) GetDealers(c *gin.Context) {
	cityID, ok := optionalUintQuery(c, "city_id")
	if !ok {
		return
	}
	p := listParams(c)

	dealers, total, err := h.Repository.ListDealers(c.Request.Context(), repository.DealerFilter{
		ListParams: p,
		CityID:     cityID,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageOf(h.dealerResponses(dealers), total, p))
}

// GetDealer дилер по ID вместе с продуктами
// @Summary Получение дилера
// @Tags Dealers
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID дилера"
// @Success 200 {object} dto.DealerResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/dealers/{id} [get]
func (h *APIHandler) GetDealer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dealer, err := h.Repository.GetDealer(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dealerResponse(dealer))
}

func applyDealerRequest(d *ds.Dealer, req dto.DealerRequest) {
	d.Name = req.Name
	d.Email = req.Email
	d.Phone = req.Phone
	d.WebsiteURL = req.WebsiteURL
	d.CityID = req.CityID
	d.City = nil
}

// CreateDealer создает дилера
// @Summary Создание дилера
// @Tags Dealers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DealerRequest true "Данные дилера"
// @Success 201 {object} dto.DealerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/dealers [post]
func (h *APIHandler) CreateDealer(c *gin.Context) {
	var req dto.DealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var dealer ds.Dealer
	applyDealerRequest(&dealer, req)

	ctx := c.Request.Context()
	if err := h.Repository.CreateDealer(ctx, &dealer, req.ProductIDs); err != nil {
		handleError(c, err)
		return
	}
	created, err := h.Repository.GetDealer(ctx, dealer.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.dealerResponse(created))
}

// UpdateDealer изменяет дилера
// @Summary Изменение дилера
// @Description product_ids: null - не менять, [] - очистить
// @Tags Dealers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID дилера"
// @Param request body dto.DealerRequest true "Данные дилера"
// @Success 200 {object} dto.DealerResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/dealers/{id} [put]
func (h *APIHandler) UpdateDealer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.DealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	dealer, err := h.Repository.GetDealer(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	applyDealerRequest(dealer, req)
	dealer.Products = nil

	if err := h.Repository.SaveDealer(ctx, dealer, req.ProductIDs); err != nil {
		handleError(c, err)
		return
	}
	updated, err := h.Repository.GetDealer(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dealerResponse(updated))
}

// DeleteDealer удаляет дилера
// @Summary Удаление дилера
// @Tags Dealers
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID дилера"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/dealers/{id} [delete]
func (h *APIHandler) DeleteDealer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Repository.DeleteDealer(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Дилер удалён"})
}
