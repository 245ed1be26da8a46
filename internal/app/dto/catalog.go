package dto

// ============ Категории и продукты ============

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	ParentID    *uint  `json:"parent_id,omitempty"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Slug        string `json:"slug" binding:"omitempty,slug,max=100"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
}

type ProductResponse struct {
	ID          uint              `json:"id"`
	CategoryID  uint              `json:"category_id"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Price       float64           `json:"price"`
	ImageURL    string            `json:"image_url,omitempty"`
	IsActive    bool              `json:"is_active"`
}

type ProductRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`
	Name        string  `json:"name" binding:"required,max=150"`
	Slug        string  `json:"slug" binding:"omitempty,slug,max=150"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	IsActive    *bool   `json:"is_active"`
}

// ============ Дилеры ============

type DealerResponse struct {
	ID         uint              `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	WebsiteURL string            `json:"website_url,omitempty"`
	CityID     *uint             `json:"city_id,omitempty"`
	City       *CityResponse     `json:"city,omitempty"`
	Products   []ProductResponse `json:"products,omitempty"`
}

type DealerRequest struct {
	Name       string `json:"name" binding:"required,max=150"`
	Email      string `json:"email" binding:"omitempty,email,max=255"`
	Phone      string `json:"phone" binding:"max=50"`
	WebsiteURL string `json:"website_url" binding:"omitempty,url,max=255"`
	CityID     *uint  `json:"city_id"`
	// nil - список продуктов не меняется
	ProductIDs []uint `json:"product_ids"`
}
