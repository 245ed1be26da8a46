package repository

import (
	"context"

	"hostcompare/internal/app/ds"
)

// Справочники хранятся в отдельных таблицах одинаковой структуры,
// поэтому работаем с ними через имя таблицы.

func (r *Repository) ListReference(ctx context.Context, kind ds.ReferenceKind, p ListParams) ([]ds.ReferenceItem, int64, error) {
	p = p.Normalize()
	q := searchByName(r.db.WithContext(ctx).Table(kind.Table), "name", p.Query)

	var items []ds.ReferenceItem
	total, err := list(q, p, "name ASC, id ASC", &items)
	return items, total, err
}

func (r *Repository) GetReference(ctx context.Context, kind ds.ReferenceKind, id uint) (*ds.ReferenceItem, error) {
	var item ds.ReferenceItem
	if err := r.db.WithContext(ctx).Table(kind.Table).Where("id = ?", id).Take(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository) CreateReference(ctx context.Context, kind ds.ReferenceKind, name, slug string) (*ds.ReferenceItem, error) {
	err := r.db.WithContext(ctx).Table(kind.Table).Create(map[string]interface{}{
		"name": name,
		"slug": slug,
	}).Error
	if err != nil {
		return nil, translate(err)
	}

	// при создании из map gorm не возвращает первичный ключ
	var item ds.ReferenceItem
	if err := r.db.WithContext(ctx).Table(kind.Table).Where("slug = ?", slug).Take(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *Repository) UpdateReference(ctx context.Context, kind ds.ReferenceKind, id uint, name, slug string) (*ds.ReferenceItem, error) {
	if _, err := r.GetReference(ctx, kind, id); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Table(kind.Table).Where("id = ?", id).Updates(map[string]interface{}{
		"name": name,
		"slug": slug,
	}).Error
	if err != nil {
		return nil, translate(err)
	}
	return &ds.ReferenceItem{ID: id, Name: name, Slug: slug}, nil
}

// DeleteReference не даёт удалить значение, к которому привязаны тарифы.
func (r *Repository) DeleteReference(ctx context.Context, kind ds.ReferenceKind, id uint) error {
	var used int64
	err := r.db.WithContext(ctx).Table(kind.JoinTable).Where(kind.JoinColumn+" = ?", id).Count(&used).Error
	if err != nil {
		return err
	}
	if used > 0 {
		return ErrConflict
	}

	result := r.db.WithContext(ctx).Exec("DELETE FROM "+kind.Table+" WHERE id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
