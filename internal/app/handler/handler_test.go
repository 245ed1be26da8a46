package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPagesRouter(env *testEnv) *gin.Engine {
	router := gin.New()
	pages := NewHandler(env.repo, nil)
	pages.RegisterStatic(router, "../../../templates/*.html")
	pages.RegisterRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)
	hosting := env.hosting(t, "Beget", "beget", true)
	env.hosting(t, "Hidden", "hidden", false)
	a := env.tariff(t, hosting.ID, "Start", 100)
	b := env.tariff(t, hosting.ID, "Pro", 300)
	router := newPagesRouter(env)

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Beget")
	assert.NotContains(t, w.Body.String(), "Hidden")

	w = get(router, "/hostings/beget")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Start")
	assert.Contains(t, w.Body.String(), "Pro")

	assert.Equal(t, http.StatusNotFound, get(router, "/hostings/hidden").Code)

	comparison, err := env.repo.ShareComparison(t.Context(), []uint{a.ID, b.ID}, nil)
	require.NoError(t, err)
	w = get(router, "/compare/"+comparison.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Beget")

	assert.Equal(t, http.StatusNotFound, get(router, "/compare/missing").Code)
}
