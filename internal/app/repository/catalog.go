package repository

import (
	"context"

	"hostcompare/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Категории

func (r *Repository) ListCategories(ctx context.Context, p ListParams) ([]ds.Category, int64, error) {
	p = p.Normalize()
	q := searchByName(r.db.WithContext(ctx).Model(&ds.Category{}), "name", p.Query)

	var categories []ds.Category
	total, err := list(q, p, "name ASC, id ASC", &categories)
	return categories, total, err
}

func (r *Repository) GetCategory(ctx context.Context, id uint) (*ds.Category, error) {
	var category ds.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*ds.Category, error) {
	var category ds.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *Repository) CreateCategory(ctx context.Context, category *ds.Category) error {
	if category.ParentID != nil {
		if err := checkExists(r.db.WithContext(ctx), &ds.Category{}, *category.ParentID); err != nil {
			return err
		}
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error)
}

func (r *Repository) SaveCategory(ctx context.Context, category *ds.Category) error {
	if category.ParentID != nil {
		if *category.ParentID == category.ID {
			return ErrInvalidReference
		}
		if err := checkExists(r.db.WithContext(ctx), &ds.Category{}, *category.ParentID); err != nil {
			return err
		}
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(category).Error)
}

// DeleteCategory запрещено, пока в категории есть продукты или подкатегории.
func (r *Repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var used int64
		if err := tx.Model(&ds.Product{}).Where("category_id = ?", id).Count(&used).Error; err != nil {
			return err
		}
		if used == 0 {
			if err := tx.Model(&ds.Category{}).Where("parent_id = ?", id).Count(&used).Error; err != nil {
				return err
			}
		}
		if used > 0 {
			return ErrConflict
		}

		result := tx.Delete(&ds.Category{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Продукты

type ProductFilter struct {
	ListParams
	CategoryID *uint
	ActiveOnly bool
}

func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]ds.Product, int64, error) {
	f.ListParams = f.ListParams.Normalize()

	q := r.db.WithContext(ctx).Model(&ds.Product{}).Preload("Category")
	q = searchByName(q, "name", f.Query)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var products []ds.Product
	total, err := list(q, f.ListParams, "name ASC, id ASC", &products)
	return products, total, err
}

func (r *Repository) GetProduct(ctx context.Context, id uint) (*ds.Product, error) {
	var product ds.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, product *ds.Product) error {
	if err := checkExists(r.db.WithContext(ctx), &ds.Category{}, product.CategoryID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

func (r *Repository) SaveProduct(ctx context.Context, product *ds.Product) error {
	if err := checkExists(r.db.WithContext(ctx), &ds.Category{}, product.CategoryID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(product).Error)
}

func (r *Repository) SetProductImage(ctx context.Context, id uint, image *string) error {
	result := r.db.WithContext(ctx).Model(&ds.Product{}).Where("id = ?", id).Update("image_url", image)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct запрещено, пока продукт есть у дилеров.
func (r *Repository) DeleteProduct(ctx context.Context, id uint) error {
	used, err := countRefs(r.db.WithContext(ctx), "dealer_products", "product_id", id)
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}

	result := r.db.WithContext(ctx).Delete(&ds.Product{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
