package repository

import (
	"context"
	"fmt"

	"hostcompare/internal/app/ds"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TariffRefs - ID справочников по ключу вида ("cms", "countries", ...).
// Отсутствующий ключ означает "не менять", пустой список - "очистить".
type TariffRefs map[string][]uint

type TariffFilter struct {
	ListParams
	HostingID  *uint
	ActiveOnly bool
}

func preloadTariffRefs(q *gorm.DB) *gorm.DB {
	for _, kind := range ds.ReferenceKinds {
		q = q.Preload(kind.Association, func(db *gorm.DB) *gorm.DB { return db.Order("name") })
	}
	return q
}

func (r *Repository) ListTariffs(ctx context.Context, f TariffFilter) ([]ds.Tariff, int64, error) {
	f.ListParams = f.ListParams.Normalize()

	q := preloadTariffRefs(r.db.WithContext(ctx).Model(&ds.Tariff{}))
	q = searchByName(q, "name", f.Query)
	if f.HostingID != nil {
		q = q.Where("hosting_id = ?", *f.HostingID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var tariffs []ds.Tariff
	total, err := list(q, f.ListParams, "price ASC, id ASC", &tariffs)
	return tariffs, total, err
}

// ActiveTariffsByHosting - все активные тарифы хостинга без пагинации (публичная страница).
func (r *Repository) ActiveTariffsByHosting(ctx context.Context, hostingID uint) ([]ds.Tariff, error) {
	var tariffs []ds.Tariff
	err := preloadTariffRefs(r.db.WithContext(ctx)).
		Where("hosting_id = ? AND is_active = ?", hostingID, true).
		Order("price ASC, id ASC").
		Find(&tariffs).Error
	return tariffs, err
}

func (r *Repository) GetTariff(ctx context.Context, id uint) (*ds.Tariff, error) {
	var tariff ds.Tariff
	if err := preloadTariffRefs(r.db.WithContext(ctx)).Preload("Hosting").First(&tariff, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tariff, nil
}

// TariffsByIDs возвращает тарифы в порядке переданных ID.
func (r *Repository) TariffsByIDs(ctx context.Context, ids []uint) ([]ds.Tariff, error) {
	var found []ds.Tariff
	if err := preloadTariffRefs(r.db.WithContext(ctx)).Preload("Hosting").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]ds.Tariff, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tariffs := make([]ds.Tariff, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			tariffs = append(tariffs, t)
		}
	}
	return tariffs, nil
}

func (r *Repository) CreateTariff(ctx context.Context, tariff *ds.Tariff, refs TariffRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExists(tx, &ds.Hosting{}, tariff.HostingID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(tariff).Error; err != nil {
			return translate(err)
		}
		return replaceTariffRefs(tx, tariff, refs)
	})
}

func (r *Repository) SaveTariff(ctx context.Context, tariff *ds.Tariff, refs TariffRefs) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExists(tx, &ds.Hosting{}, tariff.HostingID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations, "created_at").Save(tariff).Error; err != nil {
			return translate(err)
		}
		return replaceTariffRefs(tx, tariff, refs)
	})
}

func (r *Repository) DeleteTariff(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkExists(tx, &ds.Tariff{}, id); err != nil {
			if err == ErrInvalidReference {
				return ErrNotFound
			}
			return err
		}
		return deleteTariffs(tx, []uint{id})
	})
}

// deleteTariffs удаляет тарифы вместе со строками связующих таблиц.
func deleteTariffs(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	for _, kind := range ds.ReferenceKinds {
		if err := tx.Exec("DELETE FROM "+kind.JoinTable+" WHERE tariff_id IN ?", ids).Error; err != nil {
			return err
		}
	}
	if err := tx.Exec("DELETE FROM shared_comparison_tariffs WHERE tariff_id IN ?", ids).Error; err != nil {
		return err
	}
	return translate(tx.Where("id IN ?", ids).Delete(&ds.Tariff{}).Error)
}

func replaceTariffRefs(tx *gorm.DB, tariff *ds.Tariff, refs TariffRefs) error {
	for key, ids := range refs {
		kind, ok := ds.LookupReferenceKind(key)
		if !ok {
			return fmt.Errorf("%w: unknown reference kind %q", ErrInvalidReference, key)
		}

		ids = uniqueIDs(ids)
		assoc := tx.Model(tariff).Association(kind.Association)
		if len(ids) == 0 {
			if err := assoc.Clear(); err != nil {
				return err
			}
			continue
		}

		target := tariffRefSlice(tariff, key)
		if err := tx.Where("id IN ?", ids).Find(target).Error; err != nil {
			return err
		}
		if n := refLen(tariff, key); n != len(ids) {
			return fmt.Errorf("%w: %s", ErrInvalidReference, key)
		}
		if err := assoc.Replace(target); err != nil {
			return err
		}
	}
	return nil
}

// tariffRefSlice возвращает указатель на поле тарифа для данного справочника.
func tariffRefSlice(t *ds.Tariff, key string) interface{} {
	switch key {
	case "cms":
		t.CMS = nil
		return &t.CMS
	case "control-panels":
		t.ControlPanels = nil
		return &t.ControlPanels
	case "countries":
		t.Countries = nil
		return &t.Countries
	case "data-stores":
		t.DataStores = nil
		return &t.DataStores
	case "operation-systems":
		t.OperationSystems = nil
		return &t.OperationSystems
	case "programming-languages":
		t.ProgrammingLanguages = nil
		return &t.ProgrammingLanguages
	}
	return nil
}

func refLen(t *ds.Tariff, key string) int {
	switch key {
	case "cms":
		return len(t.CMS)
	case "control-panels":
		return len(t.ControlPanels)
	case "countries":
		return len(t.Countries)
	case "data-stores":
		return len(t.DataStores)
	case "operation-systems":
		return len(t.OperationSystems)
	case "programming-languages":
		return len(t.ProgrammingLanguages)
	}
	return 0
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// checkExists возвращает ErrInvalidReference, если строки с таким ID нет.
func checkExists(tx *gorm.DB, model interface{}, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidReference
	}
	return nil
}
