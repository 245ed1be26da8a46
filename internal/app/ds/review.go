package ds

import "time"

// Статусы модерации отзыва
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type Review struct {
	ID              uint       `gorm:"primaryKey"`
	HostingID       uint       `gorm:"not null;index"`
	UserID          *uint      `gorm:"index"`
	AuthorName      string     `gorm:"type:varchar(100);not null"`
	AuthorEmail     string     `gorm:"type:varchar(255)"`
	Rating          int        `gorm:"not null"`
	Pros            string     `gorm:"type:text"`
	Cons            string     `gorm:"type:text"`
	Content         string     `gorm:"type:text;not null"`
	Status          string     `gorm:"type:varchar(20);default:'pending';not null;index"`
	ModeratorID     *uint      `gorm:"default:null"`
	ModeratedAt     *time.Time `gorm:"default:null"`
	RejectionReason string     `gorm:"type:text"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Hosting   *Hosting `gorm:"foreignKey:HostingID;constraint:OnDelete:CASCADE"`
	User      *User    `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Moderator *User    `gorm:"foreignKey:ModeratorID;constraint:OnDelete:SET NULL"`
}
