package ds

import (
	"time"

	"hostcompare/internal/app/role"
)

// Пользователи (посетители, менеджеры CRM, администраторы)
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `gorm:"type:varchar(100)"`
	Password  string    `gorm:"type:varchar(255);not null"` // bcrypt
	Role      role.Role `gorm:"type:int;default:0;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
