package repository_test

import (
	"context"
	"testing"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/repository/repotest"
	"hostcompare/internal/app/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHosting(t *testing.T, repo *repository.Repository, slug string, published bool) *ds.Hosting {
	t.Helper()
	h := &ds.Hosting{Name: "Hosting " + slug, Slug: slug, IsPublished: published}
	require.NoError(t, repo.CreateHosting(context.Background(), h))
	return h
}

func seedTariff(t *testing.T, repo *repository.Repository, hostingID uint, name string, price float64) *ds.Tariff {
	t.Helper()
	tr := &ds.Tariff{HostingID: hostingID, Name: name, Price: price, Period: ds.PeriodMonth, IsActive: true}
	require.NoError(t, repo.CreateTariff(context.Background(), tr, nil))
	return tr
}

func TestListParamsNormalize(t *testing.T) {
	p := repository.ListParams{Page: 0, Limit: 1000, Query: "  beget "}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, repository.MaxLimit, p.Limit)
	assert.Equal(t, "beget", p.Query)
	assert.Equal(t, 0, p.Offset())

	p = repository.ListParams{Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, 20, p.Offset())

	assert.Equal(t, repository.DefaultLimit, repository.ListParams{}.Normalize().Limit)
}

func TestHostings(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)

	seedHosting(t, repo, "beget", true)
	seedHosting(t, repo, "timeweb", true)
	seedHosting(t, repo, "draft", false)

	t.Run("published only", func(t *testing.T) {
		hostings, total, err := repo.ListHostings(ctx, repository.HostingFilter{PublishedOnly: true, Sort: "name"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, hostings, 2)
		assert.Equal(t, "beget", hostings[0].Slug)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		hostings, total, err := repo.ListHostings(ctx, repository.HostingFilter{ListParams: repository.ListParams{Query: "TIMEWEB"}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "timeweb", hostings[0].Slug)
	})

	t.Run("unpublished hidden by slug", func(t *testing.T) {
		_, err := repo.GetHostingBySlug(ctx, "draft", true)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		h, err := repo.GetHostingBySlug(ctx, "draft", false)
		require.NoError(t, err)
		assert.False(t, h.IsPublished)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		err := repo.CreateHosting(ctx, &ds.Hosting{Name: "Copy", Slug: "beget"})
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("unknown holding", func(t *testing.T) {
		missing := uint(999)
		err := repo.CreateHosting(ctx, &ds.Hosting{Name: "X", Slug: "x", HoldingID: &missing})
		assert.ErrorIs(t, err, repository.ErrInvalidReference)
	})
}

func TestDeleteHostingInUse(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)

	h := seedHosting(t, repo, "beget", true)
	country := &ds.Country{Name: "Russia", Slug: "ru"}
	require.NoError(t, repo.DB().Create(country).Error)

	tr := &ds.Tariff{HostingID: h.ID, Name: "Start", Price: 100, Period: ds.PeriodMonth, IsActive: true}
	require.NoError(t, repo.CreateTariff(ctx, tr, repository.TariffRefs{"countries": {country.ID}}))
	assert.ErrorIs(t, repo.DeleteHosting(ctx, h.ID), repository.ErrConflict)

	require.NoError(t, repo.DeleteTariff(ctx, tr.ID))
	review := &ds.Review{HostingID: h.ID, AuthorName: "a", Rating: 5, Content: "ok"}
	require.NoError(t, repo.CreateReview(ctx, review))
	assert.ErrorIs(t, repo.DeleteHosting(ctx, h.ID), repository.ErrConflict)

	var links int64
	repo.DB().Table("tariff_countries").Count(&links)
	assert.Zero(t, links)

	require.NoError(t, repo.DeleteReview(ctx, review.ID))
	require.NoError(t, repo.DeleteHosting(ctx, h.ID))
	assert.ErrorIs(t, repo.DeleteHosting(ctx, h.ID), repository.ErrNotFound)
}

func TestTariffRefs(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)
	h := seedHosting(t, repo, "beget", true)

	cms := []ds.CMS{{Name: "WordPress", Slug: "wordpress"}, {Name: "Joomla", Slug: "joomla"}}
	require.NoError(t, repo.DB().Create(&cms).Error)
	panel := &ds.ControlPanel{Name: "cPanel", Slug: "cpanel"}
	require.NoError(t, repo.DB().Create(panel).Error)

	tr := &ds.Tariff{HostingID: h.ID, Name: "Pro", Price: 300, Period: ds.PeriodMonth, IsActive: true}
	require.NoError(t, repo.CreateTariff(ctx, tr, repository.TariffRefs{
		"cms":            {cms[0].ID, cms[1].ID, cms[0].ID},
		"control-panels": {panel.ID},
	}))

	got, err := repo.GetTariff(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, got.CMS, 2)
	assert.Len(t, got.ControlPanels, 1)
	assert.Equal(t, "beget", got.Hosting.Slug)

	t.Run("missing key keeps association", func(t *testing.T) {
		got.Name = "Pro+"
		require.NoError(t, repo.SaveTariff(ctx, got, repository.TariffRefs{"cms": {}}))

		reloaded, err := repo.GetTariff(ctx, tr.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pro+", reloaded.Name)
		assert.Empty(t, reloaded.CMS)
		assert.Len(t, reloaded.ControlPanels, 1)
	})

	t.Run("unknown reference id", func(t *testing.T) {
		bad := &ds.Tariff{HostingID: h.ID, Name: "Bad", Price: 1, Period: ds.PeriodMonth}
		err := repo.CreateTariff(ctx, bad, repository.TariffRefs{"countries": {42}})
		assert.ErrorIs(t, err, repository.ErrInvalidReference)
	})

	t.Run("reference in use cannot be deleted", func(t *testing.T) {
		kind, _ := ds.LookupReferenceKind("control-panels")
		assert.ErrorIs(t, repo.DeleteReference(ctx, kind, panel.ID), repository.ErrConflict)
	})

	t.Run("delete tariff", func(t *testing.T) {
		require.NoError(t, repo.DeleteTariff(ctx, tr.ID))
		assert.ErrorIs(t, repo.DeleteTariff(ctx, tr.ID), repository.ErrNotFound)

		kind, _ := ds.LookupReferenceKind("control-panels")
		assert.NoError(t, repo.DeleteReference(ctx, kind, panel.ID))
	})
}

func TestReferenceCRUD(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)
	kind, ok := ds.LookupReferenceKind("operation-systems")
	require.True(t, ok)

	item, err := repo.CreateReference(ctx, kind, "Ubuntu", "ubuntu")
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	_, err = repo.CreateReference(ctx, kind, "Ubuntu again", "ubuntu")
	assert.ErrorIs(t, err, repository.ErrConflict)

	updated, err := repo.UpdateReference(ctx, kind, item.ID, "Ubuntu 24.04", "ubuntu-24")
	require.NoError(t, err)
	assert.Equal(t, "ubuntu-24", updated.Slug)

	items, total, err := repo.ListReference(ctx, kind, repository.ListParams{Query: "ubuntu"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Ubuntu 24.04", items[0].Name)

	_, err = repo.UpdateReference(ctx, kind, 999, "x", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.DeleteReference(ctx, kind, item.ID))
	assert.ErrorIs(t, repo.DeleteReference(ctx, kind, item.ID), repository.ErrNotFound)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)

	admin := &ds.User{Email: " Admin@Example.com ", Password: "hash", Role: role.Admin}
	require.NoError(t, repo.CreateUser(ctx, admin))
	assert.Equal(t, "admin@example.com", admin.Email)

	require.NoError(t, repo.CreateUser(ctx, &ds.User{Email: "manager@example.com", Password: "hash", Role: role.Manager}))
	visitor := &ds.User{Email: "visitor@example.com", Password: "hash"}
	require.NoError(t, repo.CreateUser(ctx, visitor))

	err := repo.CreateUser(ctx, &ds.User{Email: "ADMIN@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := repo.GetUserByEmail(ctx, "ADMIN@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, got.ID)

	emails, err := repo.StaffEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@example.com", "manager@example.com"}, emails)

	name := "Visitor"
	require.NoError(t, repo.UpdateUser(ctx, visitor.ID, &name, nil))
	require.NoError(t, repo.UpdateUserRole(ctx, visitor.ID, role.Manager))
	got, err = repo.GetUserByID(ctx, visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visitor", got.FullName)
	assert.Equal(t, role.Manager, got.Role)

	users, total, err := repo.ListUsers(ctx, repository.ListParams{Query: "visitor"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)

	require.NoError(t, repo.DeleteUser(ctx, visitor.ID))
	_, err = repo.GetUserByID(ctx, visitor.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateUserRole(ctx, visitor.ID, role.User), repository.ErrNotFound)
}
