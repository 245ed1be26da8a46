package ds

import "time"

// Холдинг - группа хостинг-провайдеров одного владельца
type Holding struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Slug      string `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type City struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	Slug      string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Region    string `gorm:"type:varchar(100)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Hosting struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Slug        string  `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string  `gorm:"type:text"`
	WebsiteURL  string  `gorm:"type:varchar(255)"`
	LogoURL     *string `gorm:"type:varchar(255)"` // имя объекта в MinIO
	HoldingID   *uint   `gorm:"index"`
	IsPublished bool    `gorm:"type:boolean;default:false;not null"`
	// Пересчитываются по одобренным отзывам
	Rating      float64 `gorm:"type:decimal(3,2);default:0;not null"`
	ReviewCount int     `gorm:"default:0;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Holding *Holding `gorm:"foreignKey:HoldingID;constraint:OnDelete:RESTRICT"`
	Tariffs []Tariff `gorm:"foreignKey:HostingID"`
}
