package dto

import "time"

// ============ Сравнения ============

type ShareComparisonRequest struct {
	TariffIDs []uint `json:"tariff_ids" binding:"required,min=2,max=10,unique,dive,gt=0"`
}

type ShareComparisonResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type ComparisonResponse struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Tariffs   []TariffResponse `json:"tariffs"`
}

// ============ Миграция ============

type StartMigrationRequest struct {
	DryRun     bool `json:"dry_run"`
	SkipImages bool `json:"skip_images"`
}
