package pkg

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "hostcompare/docs"
	"hostcompare/internal/app/config"
	"hostcompare/internal/app/handler"
	"hostcompare/internal/app/metrics"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/migration"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

type Application struct {
	Config         *config.Config
	Router         *gin.Engine
	Handler        *handler.Handler
	APIHandler     *handler.APIHandler
	AuthMiddleware *middleware.AuthMiddleware
	// Migration может быть nil, если MYSQL_DSN не задан
	Migration *migration.Runner
}

func NewApp(
	c *config.Config,
	r *gin.Engine,
	h *handler.Handler,
	api *handler.APIHandler,
	auth *middleware.AuthMiddleware,
	runner *migration.Runner,
) *Application {
	return &Application{
		Config:         c,
		Router:         r,
		Handler:        h,
		APIHandler:     api,
		AuthMiddleware: auth,
		Migration:      runner,
	}
}

func (a *Application) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if len(a.Config.CORSOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	// cookie сессии уходит только на явно перечисленные origin
	cfg.AllowOrigins = a.Config.CORSOrigins
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes подключает middleware, страницы, REST API, метрики и swagger.
func (a *Application) RegisterRoutes() {
	a.Router.Use(gin.Recovery(), middleware.Logger(), metrics.Middleware(), cors.New(a.corsConfig()))

	a.Router.GET("/metrics", metrics.Handler(metrics.InitRegistry()))
	a.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a.Handler.RegisterStatic(a.Router, a.Config.TemplatesGlob)
	a.Handler.RegisterRoutes(a.Router)

	limiter := middleware.NewIPRateLimiter(a.Config.RateLimit.RPS, a.Config.RateLimit.Burst)
	a.APIHandler.RegisterAPIRoutes(a.Router, a.AuthMiddleware, limiter)
}

// RunApp обслуживает HTTP до отмены ctx, затем завершает запросы и дожидается миграции.
func (a *Application) RunApp(ctx context.Context) error {
	logrus.Info("Server start up")
	a.RegisterRoutes()

	serverAddress := fmt.Sprintf("%s:%d", a.Config.ServiceHost, a.Config.ServicePort)
	srv := &http.Server{
		Addr:              serverAddress,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server on %s", serverAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		logrus.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if a.Migration != nil {
		a.Migration.Stop()
	}
	logrus.Info("Server down")
	return nil
}
