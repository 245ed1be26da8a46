package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler отдаёт HTML-страницы сайта.
type Handler struct {
	Repository *repository.Repository
	Files      FileStore
}

func NewHandler(r *repository.Repository, files FileStore) *Handler {
	return &Handler{Repository: r, Files: files}
}

// Регистрация шаблонов и статики
func (h *Handler) RegisterStatic(router *gin.Engine, templatesGlob string) {
	router.LoadHTMLGlob(templatesGlob)
	router.Static("/static", "./resources")
}

// Регистрация маршрутов
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.IndexPage)
	router.GET("/hostings/:slug", h.HostingPage)
	router.GET("/compare/:id", h.ComparePage)
}

type hostingCard struct {
	Name        string
	Slug        string
	Description string
	WebsiteURL  string
	LogoURL     string
	Holding     string
	Rating      float64
	ReviewCount int
}

type tariffRow struct {
	Name        string
	HostingName string
	HostingSlug string
	Price       float64
	Period      string
	DiskGB      int
	BandwidthGB int
	Websites    int
	Countries   []string
	Panels      []string
}

func (h *Handler) logoURL(name *string) string {
	if name == nil {
		return ""
	}
	if h.Files == nil {
		return *name
	}
	return h.Files.FileURL(*name)
}

func (h *Handler) card(hosting *ds.Hosting) hostingCard {
	card := hostingCard{
		Name:        hosting.Name,
		Slug:        hosting.Slug,
		Description: hosting.Description,
		WebsiteURL:  hosting.WebsiteURL,
		LogoURL:     h.logoURL(hosting.LogoURL),
		Rating:      hosting.Rating,
		ReviewCount: hosting.ReviewCount,
	}
	if hosting.Holding != nil {
		card.Holding = hosting.Holding.Name
	}
	return card
}

func row(t *ds.Tariff) tariffRow {
	r := tariffRow{
		Name:        t.Name,
		Price:       t.Price,
		Period:      t.Period,
		DiskGB:      t.DiskGB,
		BandwidthGB: t.BandwidthGB,
		Websites:    t.Websites,
	}
	if t.Hosting != nil {
		r.HostingName = t.Hosting.Name
		r.HostingSlug = t.Hosting.Slug
	}
	for _, c := range t.Countries {
		r.Countries = append(r.Countries, c.Name)
	}
	for _, p := range t.ControlPanels {
		r.Panels = append(r.Panels, p.Name)
	}
	return r
}

// Централизованная обработка ошибок страниц
func (h *Handler) errorPage(ctx *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Что-то пошло не так"
	if errors.Is(err, repository.ErrNotFound) {
		status, message = http.StatusNotFound, "Страница не найдена"
	} else {
		logrus.WithError(err).Error("page render failed")
	}
	ctx.HTML(status, "error.html", gin.H{"status": status, "message": message})
}

// IndexPage - каталог опубликованных хостингов.
func (h *Handler) IndexPage(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.Query("page"))
	p := repository.ListParams{Page: page, Query: ctx.Query("query")}.Normalize()

	hostings, total, err := h.Repository.ListHostings(ctx.Request.Context(), repository.HostingFilter{
		ListParams:    p,
		PublishedOnly: true,
		Sort:          "rating",
	})
	if err != nil {
		h.errorPage(ctx, err)
		return
	}

	cards := make([]hostingCard, 0, len(hostings))
	for i := range hostings {
		cards = append(cards, h.card(&hostings[i]))
	}

	ctx.HTML(http.StatusOK, "index.html", gin.H{
		"hostings": cards,
		"query":    p.Query,
		"total":    total,
		"page":     p.Page,
		"hasPrev":  p.Page > 1,
		"hasNext":  int64(p.Offset()+len(cards)) < total,
		"prevPage": p.Page - 1,
		"nextPage": p.Page + 1,
	})
}

// HostingPage - карточка хостинга с тарифами и одобренными отзывами.
func (h *Handler) HostingPage(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()
	hosting, err := h.Repository.GetHostingBySlug(reqCtx, ctx.Param("slug"), true)
	if err != nil {
		h.errorPage(ctx, err)
		return
	}

	tariffs, err := h.Repository.ActiveTariffsByHosting(reqCtx, hosting.ID)
	if err != nil {
		h.errorPage(ctx, err)
		return
	}
	rows := make([]tariffRow, 0, len(tariffs))
	for i := range tariffs {
		rows = append(rows, row(&tariffs[i]))
	}

	reviews, _, err := h.Repository.ListReviews(reqCtx, repository.ReviewFilter{
		ListParams: repository.ListParams{Limit: repository.MaxLimit},
		Status:     ds.ReviewApproved,
		HostingID:  &hosting.ID,
	})
	if err != nil {
		h.errorPage(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "hosting.html", gin.H{
		"hosting": h.card(hosting),
		"tariffs": rows,
		"reviews": reviews,
	})
}

// ComparePage - таблица сохранённого сравнения.
func (h *Handler) ComparePage(ctx *gin.Context) {
	comparison, err := h.Repository.GetComparison(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		h.errorPage(ctx, err)
		return
	}

	rows := make([]tariffRow, 0, len(comparison.Tariffs))
	for i := range comparison.Tariffs {
		rows = append(rows, row(&comparison.Tariffs[i]))
	}

	ctx.HTML(http.StatusOK, "compare.html", gin.H{
		"id":      comparison.ID,
		"created": comparison.CreatedAt,
		"tariffs": rows,
	})
}
