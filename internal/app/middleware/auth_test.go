package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hostcompare/internal/app/config"
	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/redis"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/role"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{
		Token:         "test-secret",
		ExpiresIn:     time.Hour,
		SigningMethod: jwt.SigningMethodHS256,
	}}
}

func signToken(t *testing.T, secret string, userID uint, r role.Role, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: now.Add(ttl).Unix(), IssuedAt: now.Unix()},
		UserID:         userID,
		Role:           r,
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

// fakeUsers - роли пользователей в "БД".
type fakeUsers struct {
	mu    sync.Mutex
	roles map[uint]role.Role
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*ds.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ds.User{ID: id, Role: r}, nil
}

func (f *fakeUsers) set(id uint, r role.Role) {
	f.mu.Lock()
	f.roles[id] = r
	f.mu.Unlock()
}

func (f *fakeUsers) remove(id uint) {
	f.mu.Lock()
	delete(f.roles, id)
	f.mu.Unlock()
}

func newRouter(t *testing.T) (*gin.Engine, *redis.Client, *fakeUsers) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rc := redis.NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	users := &fakeUsers{roles: map[uint]role.Role{7: role.Manager, 8: role.User}}

	am := NewAuthMiddleware(rc, users, testConfig())
	r := gin.New()
	handler := func(c *gin.Context) {
		u, ok := GetUserFromContext(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "%d:%s", u.ID, u.Role)
	}
	r.GET("/staff", am.WithAuthCheck(role.Staff...), handler)
	r.GET("/any", am.WithAuthCheck(), handler)
	r.GET("/optional", am.WithOptionalAuth(), handler)
	return r, rc, users
}

func do(r *gin.Engine, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestWithAuthCheck(t *testing.T) {
	r, rc, users := newRouter(t)
	manager := signToken(t, "test-secret", 7, role.Manager, time.Hour)
	user := signToken(t, "test-secret", 8, role.User, time.Hour)

	t.Run("no token", func(t *testing.T) {
		rr := do(r, "/staff", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error":"unauthorized"}`, rr.Body.String())
	})

	t.Run("bearer header", func(t *testing.T) {
		rr := do(r, "/staff", bearer(manager))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "7:manager", rr.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		rr := do(r, "/staff", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: manager})
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		rr := do(r, "/staff", bearer(user))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, http.StatusOK, do(r, "/any", bearer(user)).Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		forged := signToken(t, "other-secret", 7, role.Admin, time.Hour)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/any", bearer(forged)).Code)
	})

	t.Run("expired", func(t *testing.T) {
		old := signToken(t, "test-secret", 7, role.Admin, -time.Minute)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/any", bearer(old)).Code)
	})

	t.Run("blacklisted", func(t *testing.T) {
		require.NoError(t, rc.WriteJWTToBlacklist(context.Background(), user, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, do(r, "/any", bearer(user)).Code)
	})

	t.Run("role taken from store", func(t *testing.T) {
		users.set(9, role.User)
		promoted := signToken(t, "test-secret", 9, role.Manager, time.Hour)
		assert.Equal(t, http.StatusForbidden, do(r, "/staff", bearer(promoted)).Code)

		users.set(9, role.Admin)
		rr := do(r, "/staff", bearer(promoted))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "9:admin", rr.Body.String())
	})

	t.Run("demoted staff loses access", func(t *testing.T) {
		users.set(7, role.User)
		defer users.set(7, role.Manager)
		assert.Equal(t, http.StatusForbidden, do(r, "/staff", bearer(manager)).Code)
		assert.Equal(t, http.StatusOK, do(r, "/any", bearer(manager)).Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		users.remove(7)
		defer users.set(7, role.Manager)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/staff", bearer(manager)).Code)
		assert.Equal(t, http.StatusUnauthorized, do(r, "/any", bearer(manager)).Code)
	})
}

func TestWithOptionalAuth(t *testing.T) {
	r, _, _ := newRouter(t)

	assert.Equal(t, "anonymous", do(r, "/optional", nil).Body.String())
	assert.Equal(t, "anonymous", do(r, "/optional", bearer("garbage")).Body.String())

	token := signToken(t, "test-secret", 3, role.User, time.Hour)
	assert.Equal(t, "3:user", do(r, "/optional", bearer(token)).Body.String())
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, ds.JWTClaims{UserID: 1})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken(testConfig().JWT, s)
	assert.Error(t, err)
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewIPRateLimiter(0.001, 2)

	r := gin.New()
	r.POST("/reviews", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	post := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/reviews", nil)
		req.RemoteAddr = ip + ":1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, post("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, post("10.0.0.2"))

	l.cleanup(time.Now().Add(time.Hour))
	assert.Empty(t, l.limiters)
}

func TestWithUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", WithUser(7, role.Manager), func(c *gin.Context) {
		u, ok := GetUserFromContext(c)
		require.True(t, ok)
		assert.True(t, u.IsStaff())
		c.String(http.StatusOK, "%d:%s", u.ID, u.Role)
	})

	assert.Equal(t, "7:manager", do(r, "/me", nil).Body.String())
	assert.False(t, CurrentUser{ID: 1, Role: role.User}.IsStaff())
}
