package handler

import (
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware, limiter *middleware.IPRateLimiter) {
	RegisterValidators()

	staff := authMiddleware.WithAuthCheck(role.Staff...)
	admin := authMiddleware.WithAuthCheck(role.Admin)
	anyUser := authMiddleware.WithAuthCheck(role.Any...)

	api := router.Group("/api")

	// ============ Публичный API сайта ============
	public := api.Group("/public")
	{
		public.GET("/hostings", h.GetPublicHostings)
		public.GET("/hostings/:slug", h.GetPublicHosting)
		public.GET("/hostings/:slug/tariffs", h.GetPublicHostingTariffs)
		public.GET("/hostings/:slug/reviews", h.GetPublicHostingReviews)
		public.POST("/hostings/:slug/reviews", limiter.Middleware(), authMiddleware.WithOptionalAuth(), h.CreatePublicReview)

		public.GET("/categories", h.GetCategories)
		public.GET("/categories/:slug/products", h.GetPublicCategoryProducts)

		public.GET("/reference", h.GetReferenceKinds)
		public.GET("/reference/:kind", h.GetReferenceItems)

		public.POST("/comparisons", h.ShareComparison)
		public.GET("/comparisons/:id", h.GetComparison)
	}

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		auth.POST("/register", limiter.Middleware(), h.AuthHandler.RegisterUser)
		auth.POST("/login", limiter.Middleware(), h.AuthHandler.LoginUser)

		auth.POST("/logout", anyUser, h.AuthHandler.LogoutUser)
		auth.GET("/profile", anyUser, h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", anyUser, h.AuthHandler.UpdateProfile)
	}

	// ============ CRM (менеджеры и администраторы) ============
	hostings := api.Group("/hostings", staff)
	{
		hostings.GET("", h.GetHostings)
		hostings.GET("/:id", h.GetHosting)
		hostings.POST("", h.CreateHosting)
		hostings.PUT("/:id", h.UpdateHosting)
		hostings.DELETE("/:id", h.DeleteHosting)
		hostings.POST("/:id/logo", h.UploadHostingLogo)
	}

	tariffs := api.Group("/tariffs", staff)
	{
		tariffs.GET("", h.GetTariffs)
		tariffs.GET("/:id", h.GetTariff)
		tariffs.POST("", h.CreateTariff)
		tariffs.PUT("/:id", h.UpdateTariff)
		tariffs.DELETE("/:id", h.DeleteTariff)
	}

	reviews := api.Group("/reviews", staff)
	{
		reviews.GET("", h.GetReviews)
		reviews.GET("/:id", h.GetReview)
		reviews.PUT("/:id", h.UpdateReview)
		reviews.DELETE("/:id", h.DeleteReview)
		reviews.PUT("/:id/approve", h.ApproveReview)
		reviews.PUT("/:id/reject", h.RejectReview)
	}

	categories := api.Group("/categories", staff)
	{
		categories.GET("", h.GetCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	products := api.Group("/products", staff)
	{
		products.GET("", h.GetProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.CreateProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/image", h.UploadProductImage)
	}

	dealers := api.Group("/dealers", staff)
	{
		dealers.GET("", h.GetDealers)
		dealers.GET("/:id", h.GetDealer)
		dealers.POST("", h.CreateDealer)
		dealers.PUT("/:id", h.UpdateDealer)
		dealers.DELETE("/:id", h.DeleteDealer)
	}

	holdings := api.Group("/holdings", staff)
	{
		holdings.GET("", h.GetHoldings)
		holdings.GET("/:id", h.GetHolding)
		holdings.POST("", h.CreateHolding)
		holdings.PUT("/:id", h.UpdateHolding)
		holdings.DELETE("/:id", h.DeleteHolding)
	}

	cities := api.Group("/cities", staff)
	{
		cities.GET("", h.GetCities)
		cities.GET("/:id", h.GetCity)
		cities.POST("", h.CreateCity)
		cities.PUT("/:id", h.UpdateCity)
		cities.DELETE("/:id", h.DeleteCity)
	}

	reference := api.Group("/reference/:kind", staff)
	{
		reference.GET("", h.GetReferenceItems)
		reference.GET("/:id", h.GetReferenceItem)
		reference.POST("", h.CreateReferenceItem)
		reference.PUT("/:id", h.UpdateReferenceItem)
		reference.DELETE("/:id", h.DeleteReferenceItem)
	}

	// ============ Только администратор ============
	users := api.Group("/users", admin)
	{
		users.GET("", h.GetUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id/role", h.UpdateUserRole)
		users.DELETE("/:id", h.DeleteUser)
	}

	migrationGroup := api.Group("/admin/migration", admin)
	{
		migrationGroup.POST("/start", h.StartMigration)
		migrationGroup.GET("/status", h.GetMigrationStatus)
	}

	// Ping эндпоинт для проверки
	router.GET("/ping", h.Ping)
}
