package dto

import "time"

// ============ Общие структуры ============

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Page - страница списка.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type IDResponse struct {
	ID uint `json:"id"`
}

type ImageResponse struct {
	ObjectName string `json:"object_name"`
	URL        string `json:"url"`
}

// ============ Хостинги ============

type HoldingResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type HoldingRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,slug,max=100"`
}

type CityResponse struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Region string `json:"region,omitempty"`
}

type CityRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Slug   string `json:"slug" binding:"omitempty,slug,max=100"`
	Region string `json:"region" binding:"max=100"`
}

type HostingResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	WebsiteURL  string           `json:"website_url"`
	LogoURL     string           `json:"logo_url,omitempty"`
	HoldingID   *uint            `json:"holding_id,omitempty"`
	Holding     *HoldingResponse `json:"holding,omitempty"`
	IsPublished bool             `json:"is_published"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"review_count"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type HostingRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=100"`
	Description string `json:"description"`
	WebsiteURL  string `json:"website_url" binding:"omitempty,url,max=255"`
	HoldingID   *uint  `json:"holding_id"`
	IsPublished bool   `json:"is_published"`
}

// ============ Тарифы ============

type TariffResponse struct {
	ID          uint    `json:"id"`
	HostingID   uint    `json:"hosting_id"`
	HostingName string  `json:"hosting_name,omitempty"`
	HostingSlug string  `json:"hosting_slug,omitempty"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Period      string  `json:"period"`
	DiskGB      int     `json:"disk_gb"`
	BandwidthGB int     `json:"bandwidth_gb"`
	Websites    int     `json:"websites"`
	IsActive    bool    `json:"is_active"`
	// ключ - вид справочника (cms, countries, ...)
	References map[string][]ReferenceResponse `json:"references"`
}

type TariffRequest struct {
	HostingID   uint    `json:"hosting_id" binding:"required"`
	Name        string  `json:"name" binding:"required,max=100"`
	Price       float64 `json:"price" binding:"gte=0"`
	Period      string  `json:"period" binding:"omitempty,oneof=month year"`
	DiskGB      int     `json:"disk_gb" binding:"gte=0"`
	BandwidthGB int     `json:"bandwidth_gb" binding:"gte=0"`
	Websites    int     `json:"websites" binding:"gte=0"`
	IsActive    *bool   `json:"is_active"`
	// отсутствующий ключ - связь не меняется, пустой список - очищается
	References map[string][]uint `json:"references"`
}

// ============ Справочники ============

type ReferenceResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ReferenceRequest struct {
	Name string `json:"name" binding:"required,max=100"`
	Slug string `json:"slug" binding:"omitempty,slug,max=100"`
}

type ReferenceKindResponse struct {
	Kind  string              `json:"kind"`
	Items []ReferenceResponse `json:"items"`
}
