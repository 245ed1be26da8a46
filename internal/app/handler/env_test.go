package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/mail"
	"hostcompare/internal/app/middleware"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/repository/repotest"
	"hostcompare/internal/app/role"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	router    *gin.Engine
	repo      *repository.Repository
	mr        *miniredis.Miniredis
	cache     *redis.Client
	cfg       *config.Config
	files     *MockFileStore
	migration *MockMigrationService
	mailer    *recordingMailer
	auth      *AuthHandler
	api       *APIHandler
}

func newTestEnv(t *testing.T) *testEnv {
	return newLimitedTestEnv(t, 1000, 1000)
}

func newLimitedTestEnv(t *testing.T, rps float64, burst int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		repo:      repotest.New(t),
		mr:        miniredis.RunT(t),
		files:     new(MockFileStore),
		migration: new(MockMigrationService),
		mailer:    &recordingMailer{},
		cfg: &config.Config{
			SiteURL:  "http://site.test",
			CacheTTL: time.Minute,
			JWT: config.JWTConfig{
				Token:         "test-secret",
				ExpiresIn:     time.Hour,
				SigningMethod: jwt.SigningMethodHS256,
			},
		},
	}
	env.cache = redis.NewWithClient(goredis.NewClient(&goredis.Options{Addr: env.mr.Addr()}))
	env.auth = NewAuthHandler(env.repo, env.cache, env.cfg)
	env.api = NewAPIHandler(
		env.repo,
		env.files,
		env.cache,
		mail.NewNotifier(env.mailer, env.cfg.SiteURL),
		env.migration,
		env.auth,
		env.cfg,
	)

	env.router = gin.New()
	env.api.RegisterAPIRoutes(
		env.router,
		middleware.NewAuthMiddleware(env.cache, env.repo, env.cfg),
		middleware.NewIPRateLimiter(rps, burst),
	)
	return env
}

// user создаёт пользователя с ролью и возвращает его вместе с токеном.
func (e *testEnv) user(t *testing.T, email string, r role.Role) (*ds.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &ds.User{Email: email, FullName: email, Password: string(hash), Role: r}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))

	token, err := e.auth.IssueToken(u)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var b bytes.Buffer
	writer := multipart.NewWriter(&b)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &b)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) hosting(t *testing.T, name, slug string, published bool) *ds.Hosting {
	t.Helper()
	h := &ds.Hosting{Name: name, Slug: slug, IsPublished: published}
	require.NoError(t, e.repo.CreateHosting(context.Background(), h))
	return h
}

func (e *testEnv) tariff(t *testing.T, hostingID uint, name string, price float64) *ds.Tariff {
	t.Helper()
	tr := &ds.Tariff{HostingID: hostingID, Name: name, Price: price, Period: ds.PeriodMonth, IsActive: true}
	require.NoError(t, e.repo.CreateTariff(context.Background(), tr, nil))
	return tr
}
