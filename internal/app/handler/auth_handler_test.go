package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	register := dto.RegisterRequest{Email: "new@example.com", Password: "secret-pass", FullName: "Новый"}
	w := env.do(t, http.MethodPost, "/api/auth/register", register, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[dto.LoginResponse](t, w)
	assert.Equal(t, "user", resp.User.Role)
	assert.Equal(t, "Bearer", resp.TokenType)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, resp.Token, cookie.Value)

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/register", register, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Email: "x@example.com", Password: "123"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: register.Email, Password: "nope-nope"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "ghost@example.com", Password: "secret-pass"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	// профиль по cookie, без заголовка Authorization
	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: resp.Token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, register.Email, decode[dto.UserResponse](t, rec).Email)

	name := "Переименован"
	password := "another-pass"
	w = env.do(t, http.MethodPut, "/api/auth/profile", dto.UpdateProfileRequest{FullName: &name, Password: &password}, resp.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, name, decode[dto.UserResponse](t, w).FullName)

	w = env.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: register.Email, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[dto.LoginResponse](t, w).Token

	w = env.do(t, http.MethodPost, "/api/auth/logout", nil, fresh)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/profile", nil, fresh).Code)
}

func TestAuthRateLimit(t *testing.T) {
	env := newLimitedTestEnv(t, 0.001, 2)
	login := dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", login, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/auth/login", login, "").Code)

	w := env.do(t, http.MethodPost, "/api/auth/login", login, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"too many requests"}`, w.Body.String())
}
