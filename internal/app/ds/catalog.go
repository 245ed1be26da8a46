package ds

import "time"

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	ParentID    *uint  `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Parent *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey"`
	CategoryID  uint    `gorm:"not null;index"`
	Name        string  `gorm:"type:varchar(150);not null"`
	Slug        string  `gorm:"type:varchar(150);uniqueIndex;not null"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"type:decimal(10,2);default:0;not null"`
	ImageURL    *string `gorm:"type:varchar(255)"`
	IsActive    bool    `gorm:"type:boolean;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
}

// Дилер (партнёр, продающий продукты в своём городе)
type Dealer struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:varchar(150);not null"`
	Email      string `gorm:"type:varchar(255)"`
	Phone      string `gorm:"type:varchar(50)"`
	WebsiteURL string `gorm:"type:varchar(255)"`
	CityID     *uint  `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	City     *City     `gorm:"foreignKey:CityID;constraint:OnDelete:SET NULL"`
	Products []Product `gorm:"many2many:dealer_products"`
}
