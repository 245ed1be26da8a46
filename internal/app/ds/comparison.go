package ds

import "time"

// Сохранённое сравнение тарифов, доступное по короткой ссылке
type SharedComparison struct {
	ID          string `gorm:"type:varchar(16);primaryKey"`
	Fingerprint string `gorm:"type:varchar(255);uniqueIndex;not null"` // отсортированные ID тарифов
	CreatedAt   time.Time

	Tariffs []Tariff `gorm:"many2many:shared_comparison_tariffs"`
}
