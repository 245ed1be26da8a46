package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/mail"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
)

// ErrStorageDisabled - MinIO не настроен, загрузка файлов недоступна.
var ErrStorageDisabled = errors.New("file storage is not configured")

// FileStore - хранилище картинок (MinIO).
type FileStore interface {
	UploadFile(ctx context.Context, kind string, data []byte, originalFilename string) (string, error)
	DeleteFile(ctx context.Context, name string) error
	FileURL(name string) string
}

// MigrationService запускает перенос данных из MySQL и отдаёт его статус.
type MigrationService interface {
	Start(ctx context.Context, opts migration.Options) (migration.Status, error)
	Status() (migration.Status, error)
}

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	Files       FileStore
	Cache       *redis.Client
	Notifier    *mail.Notifier
	Migration   MigrationService
	AuthHandler *AuthHandler
	Config      *config.Config
}

func NewAPIHandler(
	r *repository.Repository,
	files FileStore,
	cache *redis.Client,
	notifier *mail.Notifier,
	migrationService MigrationService,
	authHandler *AuthHandler,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		Repository:  r,
		Files:       files,
		Cache:       cache,
		Notifier:    notifier,
		Migration:   migrationService,
		AuthHandler: authHandler,
		Config:      cfg,
	}
}

// ============ Вспомогательные функции ============

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// handleError переводит ошибки слоя данных в HTTP-статусы.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		errorResponse(c, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrInvalidState),
		errors.Is(err, migration.ErrAlreadyRunning):
		errorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, repository.ErrInvalidReference),
		errors.Is(err, storage.ErrUnsupportedType):
		errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrStorageDisabled):
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		logrus.WithError(err).WithField("route", c.FullPath()).Error("request failed")
		errorResponse(c, http.StatusInternalServerError, "internal server error")
	}
}

func bindError(c *gin.Context, err error) {
	errorResponse(c, http.StatusBadRequest, err.Error())
}

// parseID читает числовой параметр пути; при ошибке уже ответил 400.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		errorResponse(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// optionalUintQuery - необязательный фильтр ?name=<id>.
func optionalUintQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		errorResponse(c, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	id := uint(v)
	return &id, true
}

func listParams(c *gin.Context) repository.ListParams {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return repository.ListParams{
		Page:  page,
		Limit: limit,
		Query: c.Query("query"),
	}.Normalize()
}

func pageOf[T any](items []T, total int64, p repository.ListParams) dto.Page[T] {
	if items == nil {
		items = []T{}
	}
	return dto.Page[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}
}

// slugOrName возвращает явный slug или строит его из названия (с транслитерацией).
func slugOrName(c *gin.Context, explicit, name string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	s := slug.Make(name)
	if s == "" {
		errorResponse(c, http.StatusBadRequest, "cannot build slug from name")
		return "", false
	}
	return s, true
}

func (h *APIHandler) fileURL(name *string) string {
	if name == nil || *name == "" {
		return ""
	}
	if h.Files == nil {
		return *name
	}
	return h.Files.FileURL(*name)
}

// deleteObject удаляет загруженный ранее объект; внешние ссылки не трогаем.
func (h *APIHandler) deleteObject(ctx context.Context, name *string) {
	if h.Files == nil || name == nil || *name == "" || storage.IsAbsoluteURL(*name) {
		return
	}
	if err := h.Files.DeleteFile(ctx, *name); err != nil {
		logrus.Warnf("Failed to delete old object %s: %v", *name, err)
	}
}

// readUpload читает картинку из поля "image" multipart-формы.
func readUpload(c *gin.Context) ([]byte, string, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "image file is required")
		return nil, "", false
	}
	if file.Size > storage.MaxUploadSize {
		errorResponse(c, http.StatusBadRequest, "image is too large")
		return nil, "", false
	}
	if _, ok := storage.ContentType(file.Filename); !ok {
		errorResponse(c, http.StatusBadRequest, storage.ErrUnsupportedType.Error())
		return nil, "", false
	}

	opened, err := file.Open()
	if err != nil {
		handleError(c, err)
		return nil, "", false
	}
	defer opened.Close()

	data, err := storage.ReadLimited(opened, storage.MaxUploadSize)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return nil, "", false
	}
	return data, file.Filename, true
}

// ============ Кеш публичных страниц ============

func (h *APIHandler) cacheGet(ctx context.Context, key string, dst interface{}) bool {
	if h.Cache == nil {
		return false
	}
	hit, err := h.Cache.CacheGet(ctx, key, dst)
	if err != nil {
		logrus.Warnf("cache get %s: %v", key, err)
		return false
	}
	return hit
}

func (h *APIHandler) cacheSet(ctx context.Context, key string, v interface{}) {
	if h.Cache == nil {
		return
	}
	ttl := 5 * time.Minute
	if h.Config != nil && h.Config.CacheTTL > 0 {
		ttl = h.Config.CacheTTL
	}
	if err := h.Cache.CacheSet(ctx, key, v, ttl); err != nil {
		logrus.Warnf("cache set %s: %v", key, err)
	}
}

// invalidateHosting сбрасывает кеш карточек хостингов с указанными slug.
func (h *APIHandler) invalidateHosting(ctx context.Context, slugs ...string) {
	if h.Cache == nil || len(slugs) == 0 {
		return
	}
	keys := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s = strings.TrimSpace(s); s != "" {
			keys = append(keys, redis.HostingCacheKey(s))
		}
	}
	if err := h.Cache.CacheDel(ctx, keys...); err != nil {
		logrus.Warnf("cache invalidate %v: %v", keys, err)
	}
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Возвращает простой ответ для проверки работы сервера
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /ping [get]
func (h *APIHandler) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
}
