package repository

import (
	"context"

	"hostcompare/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HostingFilter struct {
	ListParams
	PublishedOnly bool
	HoldingID     *uint
	Sort          string // rating | name | created
}

func (f HostingFilter) order() string {
	switch f.Sort {
	case "name":
		return "name ASC, id ASC"
	case "created":
		return "created_at DESC, id DESC"
	default:
		return "rating DESC, review_count DESC, id ASC"
	}
}

func (r *Repository) ListHostings(ctx context.Context, f HostingFilter) ([]ds.Hosting, int64, error) {
	f.ListParams = f.ListParams.Normalize()

	q := r.db.WithContext(ctx).Model(&ds.Hosting{}).Preload("Holding")
	q = searchByName(q, "name", f.Query)
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if f.HoldingID != nil {
		q = q.Where("holding_id = ?", *f.HoldingID)
	}

	var hostings []ds.Hosting
	total, err := list(q, f.ListParams, f.order(), &hostings)
	return hostings, total, err
}

func (r *Repository) GetHostingByID(ctx context.Context, id uint) (*ds.Hosting, error) {
	var hosting ds.Hosting
	if err := r.db.WithContext(ctx).Preload("Holding").First(&hosting, id).Error; err != nil {
		return nil, translate(err)
	}
	return &hosting, nil
}

// GetHostingBySlug ищет хостинг по slug; неопубликованные видны только при publishedOnly=false.
func (r *Repository) GetHostingBySlug(ctx context.Context, slug string, publishedOnly bool) (*ds.Hosting, error) {
	q := r.db.WithContext(ctx).Preload("Holding").Where("slug = ?", slug)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}

	var hosting ds.Hosting
	if err := q.First(&hosting).Error; err != nil {
		return nil, translate(err)
	}
	return &hosting, nil
}

func (r *Repository) CreateHosting(ctx context.Context, hosting *ds.Hosting) error {
	if err := r.checkHolding(ctx, hosting.HoldingID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(hosting).Error)
}

// SaveHosting сохраняет все редактируемые поля; рейтинг меняется только через отзывы.
func (r *Repository) SaveHosting(ctx context.Context, hosting *ds.Hosting) error {
	if err := r.checkHolding(ctx, hosting.HoldingID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations, "rating", "review_count", "created_at").
		Save(hosting).Error)
}

func (r *Repository) SetHostingLogo(ctx context.Context, id uint, logo *string) error {
	result := r.db.WithContext(ctx).Model(&ds.Hosting{}).Where("id = ?", id).Update("logo_url", logo)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// HostingSlugsByHolding - slug всех хостингов холдинга.
func (r *Repository) HostingSlugsByHolding(ctx context.Context, holdingID uint) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Model(&ds.Hosting{}).Where("holding_id = ?", holdingID).Pluck("slug", &slugs).Error
	return slugs, err
}

// DeleteHosting запрещено, пока у хостинга есть тарифы или отзывы.
func (r *Repository) DeleteHosting(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"tariffs", "reviews"} {
			used, err := countRefs(tx, table, "hosting_id", id)
			if err != nil {
				return err
			}
			if used > 0 {
				return ErrConflict
			}
		}

		result := tx.Delete(&ds.Hosting{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// RecalculateHostingRating пересчитывает средний рейтинг по одобренным отзывам.
func (r *Repository) RecalculateHostingRating(ctx context.Context, hostingID uint) error {
	return recalculateRating(r.db.WithContext(ctx), hostingID)
}

func recalculateRating(tx *gorm.DB, hostingID uint) error {
	var agg struct {
		Avg   float64
		Count int
	}
	err := tx.Model(&ds.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("hosting_id = ? AND status = ?", hostingID, ds.ReviewApproved).
		Scan(&agg).Error
	if err != nil {
		return err
	}

	return tx.Model(&ds.Hosting{}).Where("id = ?", hostingID).Updates(map[string]interface{}{
		"rating":       roundRating(agg.Avg),
		"review_count": agg.Count,
	}).Error
}

func roundRating(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func (r *Repository) checkHolding(ctx context.Context, holdingID *uint) error {
	if holdingID == nil {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&ds.Holding{}).Where("id = ?", *holdingID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}
