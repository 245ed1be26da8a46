package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"hostcompare/internal/app/ds"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ComparisonIDLength    = 8
	comparisonMaxAttempts = 5
)

// ErrIDSpaceExhausted - не удалось подобрать свободный короткий ID.
var ErrIDSpaceExhausted = errors.New("could not generate unique comparison id")

// IDGenerator выдаёт кандидата на короткий ID сравнения.
type IDGenerator func() string

// NewComparisonID - первые 8 символов случайного UUID.
func NewComparisonID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:ComparisonIDLength]
}

// ComparisonFingerprint - отсортированные уникальные ID через запятую.
func ComparisonFingerprint(ids []uint) string {
	sorted := uniqueIDs(ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// ShareComparison возвращает существующее сравнение с тем же набором тарифов
// или создаёт новое, перебирая ID при коллизии первичного ключа.
func (r *Repository) ShareComparison(ctx context.Context, tariffIDs []uint, gen IDGenerator) (*ds.SharedComparison, error) {
	if gen == nil {
		gen = NewComparisonID
	}
	ids := uniqueIDs(tariffIDs)
	fingerprint := ComparisonFingerprint(ids)

	if existing, err := r.comparisonByFingerprint(ctx, fingerprint); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var tariffs []ds.Tariff
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tariffs).Error; err != nil {
		return nil, err
	}
	if len(tariffs) != len(ids) {
		return nil, ErrInvalidReference
	}

	for attempt := 0; attempt < comparisonMaxAttempts; attempt++ {
		comparison := ds.SharedComparison{
			ID:          gen(),
			Fingerprint: fingerprint,
			Tariffs:     tariffs,
		}

		err := r.db.WithContext(ctx).Omit("Tariffs.*").Create(&comparison).Error
		if err == nil {
			return &comparison, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// дубликат мог возникнуть из-за параллельного запроса с тем же набором
		if existing, ferr := r.comparisonByFingerprint(ctx, fingerprint); ferr == nil {
			return existing, nil
		}
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, comparisonMaxAttempts)
}

func (r *Repository) comparisonByFingerprint(ctx context.Context, fingerprint string) (*ds.SharedComparison, error) {
	var comparison ds.SharedComparison
	err := r.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&comparison).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comparison, nil
}

// GetComparison загружает сравнение с тарифами, их хостингами и справочниками.
func (r *Repository) GetComparison(ctx context.Context, id string) (*ds.SharedComparison, error) {
	q := r.db.WithContext(ctx).
		Preload("Tariffs", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC, id ASC") }).
		Preload("Tariffs.Hosting")
	for _, kind := range ds.ReferenceKinds {
		q = q.Preload("Tariffs." + kind.Association)
	}

	var comparison ds.SharedComparison
	err := q.Where("id = ?", id).First(&comparison).Error
	if err != nil {
		return nil, translate(err)
	}
	return &comparison, nil
}
