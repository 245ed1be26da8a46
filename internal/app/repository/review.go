package repository

import (
	"context"
	"time"

	"hostcompare/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewFilter struct {
	ListParams
	Status    string
	HostingID *uint
}

func (r *Repository) ListReviews(ctx context.Context, f ReviewFilter) ([]ds.Review, int64, error) {
	f.ListParams = f.ListParams.Normalize()

	q := r.db.WithContext(ctx).Model(&ds.Review{}).Preload("Hosting")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.HostingID != nil {
		q = q.Where("hosting_id = ?", *f.HostingID)
	}
	if f.Query != "" {
		q = searchByName(q, "author_name", f.Query)
	}

	var reviews []ds.Review
	total, err := list(q, f.ListParams, "created_at DESC, id DESC", &reviews)
	return reviews, total, err
}

func (r *Repository) GetReview(ctx context.Context, id uint) (*ds.Review, error) {
	var review ds.Review
	if err := r.db.WithContext(ctx).Preload("Hosting").First(&review, id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// CreateReview сохраняет новый отзыв в статусе pending.
func (r *Repository) CreateReview(ctx context.Context, review *ds.Review) error {
	review.Status = ds.ReviewPending
	review.ModeratorID = nil
	review.ModeratedAt = nil
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error)
}

// SaveReview сохраняет правки модератора (текст, оценка) и пересчитывает рейтинг.
func (r *Repository) SaveReview(ctx context.Context, review *ds.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations, "status", "moderator_id", "moderated_at", "created_at").Save(review).Error
		if err != nil {
			return translate(err)
		}
		return recalculateRating(tx, review.HostingID)
	})
}

func (r *Repository) DeleteReview(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review ds.Review
		if err := tx.First(&review, id).Error; err != nil {
			return translate(err)
		}
		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return recalculateRating(tx, review.HostingID)
	})
}

// ModerateReview переводит отзыв из pending в approved/rejected.
// Любой другой переход - ErrInvalidState.
func (r *Repository) ModerateReview(ctx context.Context, id, moderatorID uint, status, reason string) (*ds.Review, error) {
	if status != ds.ReviewApproved && status != ds.ReviewRejected {
		return nil, ErrInvalidState
	}
	if status == ds.ReviewApproved {
		reason = ""
	}

	var review ds.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&ds.Review{}).
			Where("id = ? AND status = ?", id, ds.ReviewPending).
			Updates(map[string]interface{}{
				"status":           status,
				"moderator_id":     moderatorID,
				"moderated_at":     now,
				"rejection_reason": reason,
			})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Preload("Hosting").First(&review, id).Error; err != nil {
			return translate(err)
		}
		if result.RowsAffected == 0 {
			return ErrInvalidState
		}
		return recalculateRating(tx, review.HostingID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}
