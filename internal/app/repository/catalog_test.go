package repository_test

import (
	"context"
	"testing"

	"hostcompare/internal/app/ds"
	"hostcompare/internal/app/repository"
	"hostcompare/internal/app/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	repo := repotest.New(t)

	root := &ds.Category{Name: "SSL", Slug: "ssl"}
	require.NoError(t, repo.CreateCategory(ctx, root))
	child := &ds.Category{Name: "Wildcard SSL", Slug: "wildcard", ParentID: &root.ID}
	require.NoError(t, repo.CreateCategory(ctx, child))

	product := &ds.Product{CategoryID: child.ID, Name: "Wildcard DV", Slug: "wildcard-dv", Price: 5000, IsActive: true}
	require.NoError(t, repo.CreateProduct(ctx, product))
	hidden := &ds.Product{CategoryID: child.ID, Name: "Legacy", Slug: "legacy"}
	require.NoError(t, repo.CreateProduct(ctx, hidden))
	require.NoError(t, repo.DB().Model(hidden).Update("is_active", false).Error)

	t.Run("active products by category", func(t *testing.T) {
		products, total, err := repo.ListProducts(ctx, repository.ProductFilter{CategoryID: &child.ID, ActiveOnly: true})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "wildcard-dv", products[0].Slug)
		require.NotNil(t, products[0].Category)
	})

	t.Run("category with children or products is protected", func(t *testing.T) {
		assert.ErrorIs(t, repo.DeleteCategory(ctx, root.ID), repository.ErrConflict)
		assert.ErrorIs(t, repo.DeleteCategory(ctx, child.ID), repository.ErrConflict)
	})

	t.Run("category cannot be its own parent", func(t *testing.T) {
		root.ParentID = &root.ID
		assert.ErrorIs(t, repo.SaveCategory(ctx, root), repository.ErrInvalidReference)
		root.ParentID = nil
	})

	t.Run("product needs existing category", func(t *testing.T) {
		err := repo.CreateProduct(ctx, &ds.Product{CategoryID: 999, Name: "x", Slug: "x"})
		assert.ErrorIs(t, err, repository.ErrInvalidReference)
	})

	t.Run("image", func(t *testing.T) {
		name := "products/abc.png"
		require.NoError(t, repo.SetProductImage(ctx, product.ID, &name))
		got, err := repo.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, got.ImageURL)
		assert.Equal(t, name, *got.ImageURL)
		assert.ErrorIs(t, repo.SetProductImage(ctx, 999, &name), repository.ErrNotFound)
	})

	t.Run("dealers", func(t *testing.T) {
		city := &ds.City{Name: "Moscow", Slug: "moscow"}
		require.NoError(t, repo.CreateCity(ctx, city))

		dealer := &ds.Dealer{Name: "SSL Shop", CityID: &city.ID}
		require.NoError(t, repo.CreateDealer(ctx, dealer, []uint{product.ID, hidden.ID}))

		got, err := repo.GetDealer(ctx, dealer.ID)
		require.NoError(t, err)
		assert.Len(t, got.Products, 2)
		assert.Equal(t, "moscow", got.City.Slug)

		require.NoError(t, repo.SaveDealer(ctx, got, []uint{product.ID}))
		got, err = repo.GetDealer(ctx, dealer.ID)
		require.NoError(t, err)
		assert.Len(t, got.Products, 1)

		assert.ErrorIs(t, repo.SaveDealer(ctx, got, []uint{404}), repository.ErrInvalidReference)

		assert.ErrorIs(t, repo.DeleteProduct(ctx, product.ID), repository.ErrConflict)
		assert.ErrorIs(t, repo.DeleteCity(ctx, city.ID), repository.ErrConflict)
		got, err = repo.GetDealer(ctx, dealer.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CityID)
		assert.Len(t, got.Products, 1)

		dealers, total, err := repo.ListDealers(ctx, repository.DealerFilter{ListParams: repository.ListParams{Query: "ssl"}})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Len(t, dealers, 1)

		require.NoError(t, repo.DeleteDealer(ctx, dealer.ID))
		assert.ErrorIs(t, repo.DeleteDealer(ctx, dealer.ID), repository.ErrNotFound)

		var links int64
		repo.DB().Table("dealer_products").Count(&links)
		assert.Zero(t, links)
		require.NoError(t, repo.DeleteProduct(ctx, product.ID))
		require.NoError(t, repo.DeleteCity(ctx, city.ID))
		assert.ErrorIs(t, repo.DeleteCity(ctx, city.ID), repository.ErrNotFound)
	})

	t.Run("holding in use", func(t *testing.T) {
		holding := &ds.Holding{Name: "Group", Slug: "group"}
		require.NoError(t, repo.CreateHolding(ctx, holding))
		require.NoError(t, repo.CreateHosting(ctx, &ds.Hosting{Name: "H", Slug: "h", HoldingID: &holding.ID}))

		assert.ErrorIs(t, repo.DeleteHolding(ctx, holding.ID), repository.ErrConflict)

		hostings, _, err := repo.ListHostings(ctx, repository.HostingFilter{HoldingID: &holding.ID})
		require.NoError(t, err)
		require.Len(t, hostings, 1)
		require.NotNil(t, hostings[0].Holding)
		assert.Equal(t, "group", hostings[0].Holding.Slug)
	})
}
