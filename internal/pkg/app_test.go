package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/handler"
	"hostcompare/internal/app/mail"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository/repotest"
	"hostcompare/internal/app/role"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, origins []string) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		TemplatesGlob: "../../templates/*.html",
		SiteURL:       "http://site.test",
		CORSOrigins:   origins,
		CacheTTL:      time.Minute,
		RateLimit:     config.RateLimitConfig{RPS: 10, Burst: 10},
		JWT: config.JWTConfig{
			Token:         "secret",
			ExpiresIn:     time.Hour,
			SigningMethod: jwt.SigningMethodHS256,
		},
	}
	repo := repotest.New(t)
	mr := miniredis.RunT(t)
	cache := redis.NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))

	auth := handler.NewAuthHandler(repo, cache, cfg)
	api := handler.NewAPIHandler(repo, nil, cache, mail.NewNotifier(mail.LogMailer{}, cfg.SiteURL), nil, auth, cfg)

	app := NewApp(cfg, gin.New(), handler.NewHandler(repo, nil), api, middleware.NewAuthMiddleware(cache, repo, cfg), nil)
	app.RegisterRoutes()
	return app
}

func serve(app *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes(t *testing.T) {
	app := newTestApp(t, nil)

	w := serve(app, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(app, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hostcompare_http_requests_total")

	w = serve(app, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/public/comparisons")

	w = serve(app, httptest.NewRequest(http.MethodGet, "/api/admin/migration/status", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// без MYSQL_DSN миграция недоступна
	admin := &ds.User{Email: "admin@example.com", Password: "x", Role: role.Admin}
	require.NoError(t, app.APIHandler.Repository.CreateUser(t.Context(), admin))
	token, err := app.APIHandler.AuthHandler.IssueToken(admin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/migration/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, serve(app, req).Code)
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		app := newTestApp(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://elsewhere.test")

		w := serve(app, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("listed origins", func(t *testing.T) {
		app := newTestApp(t, []string{"http://admin.test"})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://admin.test")
		w := serve(app, req)
		assert.Equal(t, "http://admin.test", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

		req = httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "http://evil.test")
		w = serve(app, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
