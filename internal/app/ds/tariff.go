package ds

import "time"

const (
	PeriodMonth = "month"
	PeriodYear  = "year"
)

type Tariff struct {
	ID          uint    `gorm:"primaryKey"`
	HostingID   uint    `gorm:"not null;index"`
	Name        string  `gorm:"type:varchar(100);not null"`
	Price       float64 `gorm:"type:decimal(10,2);not null"`
	Period      string  `gorm:"type:varchar(10);default:'month';not null"`
	DiskGB      int     `gorm:"column:disk_gb;default:0"`
	BandwidthGB int     `gorm:"column:bandwidth_gb;default:0"` // 0 - безлимит
	Websites    int     `gorm:"default:1"`
	IsActive    bool    `gorm:"type:boolean;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Hosting              *Hosting              `gorm:"foreignKey:HostingID;constraint:OnDelete:CASCADE"`
	CMS                  []CMS                 `gorm:"many2many:tariff_cms"`
	ControlPanels        []ControlPanel        `gorm:"many2many:tariff_control_panels"`
	Countries            []Country             `gorm:"many2many:tariff_countries"`
	DataStores           []DataStore           `gorm:"many2many:tariff_data_stores"`
	OperationSystems     []OperationSystem     `gorm:"many2many:tariff_operation_systems"`
	ProgrammingLanguages []ProgrammingLanguage `gorm:"many2many:tariff_programming_languages"`
}
