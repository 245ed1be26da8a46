package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hostcompare/internal/app/dto"
	"hostcompare/internal/app/migration"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/role"
	"hostcompare/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: duplicate slug", repository.ErrConflict), http.StatusConflict},
		{repository.ErrInvalidState, http.StatusConflict},
		{migration.ErrAlreadyRunning, http.StatusConflict},
		{fmt.Errorf("%w: countries", repository.ErrInvalidReference), http.StatusBadRequest},
		{storage.ErrUnsupportedType, http.StatusBadRequest},
		{ErrStorageDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		handleError(c, tc.err)

		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		body := decode[dto.ErrorResponse](t, w)
		assert.NotEmpty(t, body.Error)
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestRoleChecks(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.user(t, "user@example.com", role.User)
	_, managerToken := env.user(t, "manager@example.com", role.Manager)
	_, adminToken := env.user(t, "admin@example.com", role.Admin)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/hostings", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/hostings", nil, "garbage").Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/hostings", nil, userToken).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/hostings", nil, managerToken).Code)

	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/users", nil, managerToken).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/users", nil, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/admin/migration/status", nil, managerToken).Code)
}

func TestHostingCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "manager@example.com", role.Manager)

	w := env.do(t, http.MethodPost, "/api/hostings", dto.HostingRequest{
		Name:       "Бегет Хостинг",
		WebsiteURL: "https://beget.example",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.HostingResponse](t, w)
	assert.True(t, slug.IsSlug(created.Slug), created.Slug)
	assert.Contains(t, created.Slug, "beget")
	assert.False(t, created.IsPublished)

	t.Run("invalid slug", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/hostings", dto.HostingRequest{Name: "X", Slug: "Not A Slug"}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/hostings", dto.HostingRequest{Name: "Other", Slug: created.Slug}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown holding", func(t *testing.T) {
		missing := uint(999)
		w := env.do(t, http.MethodPost, "/api/hostings", dto.HostingRequest{Name: "Orphan", HoldingID: &missing}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("with holding", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/holdings", dto.HoldingRequest{Name: "Group One"}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		holding := decode[dto.HoldingResponse](t, w)
		assert.Equal(t, "group-one", holding.Slug)

		w = env.do(t, http.MethodPost, "/api/hostings", dto.HostingRequest{Name: "Member", HoldingID: &holding.ID}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		member := decode[dto.HostingResponse](t, w)
		require.NotNil(t, member.Holding)
		assert.Equal(t, "Group One", member.Holding.Name)

		w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/holdings/%d", holding.ID), nil, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	path := fmt.Sprintf("/api/hostings/%d", created.ID)
	w = env.do(t, http.MethodPut, path, dto.HostingRequest{
		Name:        "Beget",
		Slug:        "beget",
		IsPublished: true,
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[dto.HostingResponse](t, w)
	assert.Equal(t, "beget", updated.Slug)
	assert.True(t, updated.IsPublished)

	w = env.do(t, http.MethodGet, "/api/hostings?query=BEG", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.Page[dto.HostingResponse]](t, w)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, repository.DefaultLimit, page.Limit)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/hostings/abc", nil, token).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/hostings?holding_id=x", nil, token).Code)

	tariff := env.tariff(t, created.ID, "Start", 100)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, path, nil, token).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, fmt.Sprintf("/api/tariffs/%d", tariff.ID), nil, token).Code)

	w = env.do(t, http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil, token).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, nil, token).Code)
}

func TestHostingLogoUpload(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "manager@example.com", role.Manager)
	hosting := env.hosting(t, "Timeweb", "timeweb", true)
	path := fmt.Sprintf("/api/hostings/%d/logo", hosting.ID)

	env.files.On("FileURL", mock.Anything).Return("http://cdn.test/object")

	t.Run("unsupported type", func(t *testing.T) {
		w := env.upload(t, path, "logo.exe", []byte("MZ"), token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	env.files.On("UploadFile", mock.Anything, storage.KindLogo, []byte("png-1"), "logo.png").
		Return("logos/first.png", nil).Once()
	w := env.upload(t, path, "logo.png", []byte("png-1"), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "logos/first.png", decode[dto.ImageResponse](t, w).ObjectName)

	// второй логотип заменяет первый, старый объект удаляется
	env.files.On("UploadFile", mock.Anything, storage.KindLogo, []byte("png-2"), "new.png").
		Return("logos/second.png", nil).Once()
	env.files.On("DeleteFile", mock.Anything, "logos/first.png").Return(nil).Once()
	w = env.upload(t, path, "new.png", []byte("png-2"), token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stored, err := env.repo.GetHostingByID(t.Context(), hosting.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LogoURL)
	assert.Equal(t, "logos/second.png", *stored.LogoURL)

	env.files.AssertExpectations(t)
	env.files.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, []byte("MZ"), "logo.exe")
}

func TestUploadWithoutStorage(t *testing.T) {
	env := newTestEnv(t)
	env.api.Files = nil
	_, token := env.user(t, "manager@example.com", role.Manager)
	hosting := env.hosting(t, "Reg", "reg", true)

	w := env.upload(t, fmt.Sprintf("/api/hostings/%d/logo", hosting.ID), "logo.png", []byte("x"), token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUsersAdmin(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.user(t, "admin@example.com", role.Admin)
	other, otherToken := env.user(t, "user@example.com", role.User)

	self := fmt.Sprintf("/api/users/%d", admin.ID)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPut, self+"/role", dto.UpdateRoleRequest{Role: "user"}, adminToken).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodDelete, self, nil, adminToken).Code)

	otherPath := fmt.Sprintf("/api/users/%d", other.ID)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, otherPath+"/role", dto.UpdateRoleRequest{Role: "root"}, adminToken).Code)

	w := env.do(t, http.MethodPut, otherPath+"/role", dto.UpdateRoleRequest{Role: "manager"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "manager", decode[dto.UserResponse](t, w).Role)

	// выданный ранее токен сразу получает новую роль
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/reviews", nil, otherToken).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, otherPath+"/role", dto.UpdateRoleRequest{Role: "user"}, adminToken).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodGet, "/api/reviews", nil, otherToken).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, otherPath, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, otherPath, nil, adminToken).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/auth/profile", nil, otherToken).Code)
}

func TestMigrationEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user(t, "admin@example.com", role.Admin)

	env.migration.On("Start", mock.Anything, migration.Options{DryRun: true}).
		Return(migration.Status{State: migration.StateRunning, DryRun: true}, nil).Once()
	env.migration.On("Start", mock.Anything, migration.Options{DryRun: true}).
		Return(migration.Status{}, migration.ErrAlreadyRunning).Once()
	env.migration.On("Status").Return(migration.Status{State: migration.StateRunning}, nil)

	w := env.do(t, http.MethodPost, "/api/admin/migration/start", dto.StartMigrationRequest{DryRun: true}, adminToken)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, migration.StateRunning, decode[migration.Status](t, w).State)

	w = env.do(t, http.MethodPost, "/api/admin/migration/start", dto.StartMigrationRequest{DryRun: true}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/api/admin/migration/status", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[migration.Status](t, w).Running())

	env.migration.AssertExpectations(t)
}
