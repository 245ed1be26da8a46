package repository

import (
	"context"

	"hostcompare/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Дилеры

type DealerFilter struct {
	ListParams
	CityID *uint
}

func (r *Repository) ListDealers(ctx context.Context, f DealerFilter) ([]ds.Dealer, int64, error) {
	f.ListParams = f.ListParams.Normalize()

	q := r.db.WithContext(ctx).Model(&ds.Dealer{}).Preload("City")
	q = searchByName(q, "name", f.Query)
	if f.CityID != nil {
		q = q.Where("city_id = ?", *f.CityID)
	}

	var dealers []ds.Dealer
	total, err := list(q, f.ListParams, "name ASC, id ASC", &dealers)
	return dealers, total, err
}

func (r *Repository) GetDealer(ctx context.Context, id uint) (*ds.Dealer, error) {
	var dealer ds.Dealer
	err := r.db.WithContext(ctx).Preload("City").Preload("Products").First(&dealer, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dealer, nil
}

// CreateDealer создаёт дилера; productIDs == nil - без продуктов.
func (r *Repository) CreateDealer(ctx context.Context, dealer *ds.Dealer, productIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dealer.CityID != nil {
			if err := checkExists(tx, &ds.City{}, *dealer.CityID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Create(dealer).Error; err != nil {
			return translate(err)
		}
		if productIDs == nil {
			return nil
		}
		return replaceDealerProducts(tx, dealer, productIDs)
	})
}

// SaveDealer сохраняет поля дилера; productIDs == nil - список продуктов не меняется.
func (r *Repository) SaveDealer(ctx context.Context, dealer *ds.Dealer, productIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dealer.CityID != nil {
			if err := checkExists(tx, &ds.City{}, *dealer.CityID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations, "created_at").Save(dealer).Error; err != nil {
			return translate(err)
		}
		if productIDs == nil {
			return nil
		}
		return replaceDealerProducts(tx, dealer, productIDs)
	})
}

func replaceDealerProducts(tx *gorm.DB, dealer *ds.Dealer, productIDs []uint) error {
	ids := uniqueIDs(productIDs)
	assoc := tx.Model(dealer).Association("Products")
	if len(ids) == 0 {
		dealer.Products = nil
		return assoc.Clear()
	}

	var products []ds.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return err
	}
	if len(products) != len(ids) {
		return ErrInvalidReference
	}
	return assoc.Replace(&products)
}

// DeleteDealer удаляет дилера вместе с его списком продуктов.
func (r *Repository) DeleteDealer(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM dealer_products WHERE dealer_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&ds.Dealer{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Холдинги

func (r *Repository) ListHoldings(ctx context.Context, p ListParams) ([]ds.Holding, int64, error) {
	p = p.Normalize()
	q := searchByName(r.db.WithContext(ctx).Model(&ds.Holding{}), "name", p.Query)

	var holdings []ds.Holding
	total, err := list(q, p, "name ASC, id ASC", &holdings)
	return holdings, total, err
}

func (r *Repository) GetHolding(ctx context.Context, id uint) (*ds.Holding, error) {
	var holding ds.Holding
	if err := r.db.WithContext(ctx).First(&holding, id).Error; err != nil {
		return nil, translate(err)
	}
	return &holding, nil
}

func (r *Repository) CreateHolding(ctx context.Context, holding *ds.Holding) error {
	return translate(r.db.WithContext(ctx).Create(holding).Error)
}

func (r *Repository) SaveHolding(ctx context.Context, holding *ds.Holding) error {
	return translate(r.db.WithContext(ctx).Omit("created_at").Save(holding).Error)
}

// DeleteHolding запрещено, пока к холдингу привязаны хостинги.
func (r *Repository) DeleteHolding(ctx context.Context, id uint) error {
	var used int64
	if err := r.db.WithContext(ctx).Model(&ds.Hosting{}).Where("holding_id = ?", id).Count(&used).Error; err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}

	result := r.db.WithContext(ctx).Delete(&ds.Holding{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Города

func (r *Repository) ListCities(ctx context.Context, p ListParams) ([]ds.City, int64, error) {
	p = p.Normalize()
	q := searchByName(r.db.WithContext(ctx).Model(&ds.City{}), "name", p.Query)

	var cities []ds.City
	total, err := list(q, p, "name ASC, id ASC", &cities)
	return cities, total, err
}

func (r *Repository) GetCity(ctx context.Context, id uint) (*ds.City, error) {
	var city ds.City
	if err := r.db.WithContext(ctx).First(&city, id).Error; err != nil {
		return nil, translate(err)
	}
	return &city, nil
}

func (r *Repository) CreateCity(ctx context.Context, city *ds.City) error {
	return translate(r.db.WithContext(ctx).Create(city).Error)
}

func (r *Repository) SaveCity(ctx context.Context, city *ds.City) error {
	return translate(r.db.WithContext(ctx).Omit("created_at").Save(city).Error)
}

// DeleteCity запрещено, пока в городе есть дилеры.
func (r *Repository) DeleteCity(ctx context.Context, id uint) error {
	used, err := countRefs(r.db.WithContext(ctx), "dealers", "city_id", id)
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}

	result := r.db.WithContext(ctx).Delete(&ds.City{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
